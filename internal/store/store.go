package store

import (
	"context"
	"errors"
	"time"

	"github.com/nurpe/oil-tenders/internal/model"
)

var ErrNotFound = errors.New("store: not found")

// FilterStore persists one filter state per owner.
type FilterStore interface {
	GetFilter(ctx context.Context, owner string) (*model.SavedFilter, error)
	SaveFilter(ctx context.Context, filter model.SavedFilter) (*model.SavedFilter, error)
	DeleteFilter(ctx context.Context, owner string) error
}

// OfferCache keeps the last fetched offer set between runs.
type OfferCache interface {
	SaveOffers(ctx context.Context, offers []model.Offer) error
	LoadOffers(ctx context.Context) ([]model.Offer, time.Time, error)
}
