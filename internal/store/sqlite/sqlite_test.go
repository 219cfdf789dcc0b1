package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/oil-tenders/internal/model"
	"github.com/nurpe/oil-tenders/internal/store"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "tenders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewRequiresPath(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestSavedFilterLifecycle(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.GetFilter(ctx, "default")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.SaveFilter(ctx, model.SavedFilter{Owner: "default", Product: "gasoil", FromDate: "2024-01-01"})
	require.NoError(t, err)
	_, err = s.SaveFilter(ctx, model.SavedFilter{Owner: "default", Product: "crudo", Country: "Chile"})
	require.NoError(t, err)

	saved, err := s.GetFilter(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "crudo", saved.Product)
	assert.Equal(t, "Chile", saved.Country)
	assert.Empty(t, saved.FromDate)
	assert.False(t, saved.UpdatedAt.IsZero())

	require.NoError(t, s.DeleteFilter(ctx, "default"))
	_, err = s.GetFilter(ctx, "default")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSaveFilterRequiresOwner(t *testing.T) {
	_, err := newStore(t).SaveFilter(context.Background(), model.SavedFilter{Product: "x"})
	assert.Error(t, err)
}

func TestOfferSnapshot(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, _, err := s.LoadOffers(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.SaveOffers(ctx, []model.Offer{
		model.NewOffer(map[string]any{"id": 1, "product": "Crudo"}),
	}))
	require.NoError(t, s.SaveOffers(ctx, []model.Offer{
		model.NewOffer(map[string]any{"id": 2, "product": "Gasoil", "volume": "1.234,5"}),
		model.NewOffer(map[string]any{"id": 3, "awarded": true}),
	}))

	offers, fetchedAt, err := s.LoadOffers(ctx)
	require.NoError(t, err)
	require.Len(t, offers, 2)
	assert.False(t, fetchedAt.IsZero())
	assert.Equal(t, model.String("1.234,5"), offers[0].Get("volume"))
	awarded, ok := offers[1].Get("awarded").Flag()
	assert.True(t, ok)
	assert.True(t, awarded)
}
