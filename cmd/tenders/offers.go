package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/nurpe/oil-tenders/internal/model"
	"github.com/nurpe/oil-tenders/internal/source"
	"github.com/nurpe/oil-tenders/internal/store"
)

// fileFetcher serves offers from a JSON file in either of the API shapes.
type fileFetcher struct {
	path string
}

func (f fileFetcher) FetchOffers(_ context.Context, desired int) ([]model.Offer, error) {
	body, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	offers, err := source.DecodeOffers(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}
	if desired > 0 && len(offers) > desired {
		offers = offers[:desired]
	}
	return offers, nil
}

// cachedFetcher fetches from the API and keeps the result in the local cache.
// With offline set, or when the API fails, it serves the cached set instead.
type cachedFetcher struct {
	upstream source.Fetcher
	cache    store.OfferCache
	offline  bool
	log      zerolog.Logger
}

func (f cachedFetcher) FetchOffers(ctx context.Context, desired int) ([]model.Offer, error) {
	if f.offline {
		offers, fetchedAt, err := f.cache.LoadOffers(ctx)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("no cached offers, run without --offline first")
		}
		if err == nil {
			f.log.Debug().Time("fetched_at", fetchedAt).Int("offers", len(offers)).Msg("using cached offers")
		}
		return offers, err
	}

	offers, err := f.upstream.FetchOffers(ctx, desired)
	if err != nil {
		cached, fetchedAt, cacheErr := f.cache.LoadOffers(ctx)
		if cacheErr != nil {
			return nil, err
		}
		f.log.Warn().Err(err).Time("fetched_at", fetchedAt).Msg("offer API failed, using cached offers")
		return cached, nil
	}
	if err := f.cache.SaveOffers(ctx, offers); err != nil {
		f.log.Warn().Err(err).Msg("failed to cache offers")
	}
	return offers, nil
}
