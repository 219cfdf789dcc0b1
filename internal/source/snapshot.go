package source

import (
	"context"
	"sync"
	"time"

	"github.com/nurpe/oil-tenders/internal/model"
)

// Fetcher is satisfied by *Client.
type Fetcher interface {
	FetchOffers(ctx context.Context, desired int) ([]model.Offer, error)
}

// Snapshot holds the last fetched offer set. Starting a refresh cancels any
// refresh still in flight, and a stale fetch never overwrites a newer one.
type Snapshot struct {
	fetcher Fetcher
	desired int

	mu        sync.RWMutex
	offers    []model.Offer
	fetchedAt time.Time
	seq       uint64
	cancel    context.CancelFunc
}

func NewSnapshot(fetcher Fetcher, desired int) *Snapshot {
	return &Snapshot{fetcher: fetcher, desired: desired}
}

// Offers returns the current record set. Callers must not modify it.
func (s *Snapshot) Offers() ([]model.Offer, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offers, s.fetchedAt
}

func (s *Snapshot) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.fetchedAt.IsZero()
}

// Refresh fetches a new record set and swaps it in. It returns the number of
// offers loaded.
func (s *Snapshot) Refresh(ctx context.Context) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	seq := s.seq
	s.cancel = cancel
	s.mu.Unlock()

	offers, err := s.fetcher.FetchOffers(ctx, s.desired)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq == seq {
		s.cancel = nil
	}
	if err != nil {
		return 0, err
	}
	if s.seq != seq {
		return 0, context.Canceled
	}
	s.offers = offers
	s.fetchedAt = time.Now().UTC()
	return len(offers), nil
}

// Set replaces the record set directly, superseding any refresh in flight.
func (s *Snapshot) Set(offers []model.Offer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
	s.offers = offers
	s.fetchedAt = time.Now().UTC()
}

// Run refreshes on every tick until ctx is done. onError receives failed
// refreshes.
func (s *Snapshot) Run(ctx context.Context, interval time.Duration, onError func(error)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil && onError != nil {
				onError(err)
			}
		}
	}
}
