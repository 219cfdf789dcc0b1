package aggregate

import (
	"github.com/nurpe/oil-tenders/internal/model"
	"github.com/nurpe/oil-tenders/internal/offer"
)

type Summary struct {
	TenderedVolume float64 `json:"tendered_volume"`
	AwardedVolume  float64 `json:"awarded_volume"`
	AvgPrice       float64 `json:"avg_price"`
	ActiveOffers   int     `json:"active_offers"`
	AwardedOffers  int     `json:"awarded_offers"`
	TotalOffers    int     `json:"total_offers"`
	AwardRate      float64 `json:"award_rate"`
}

// Summarize computes the KPI tiles.
func Summarize(offers []model.Offer, opts Options) Summary {
	now := opts.now()

	var (
		tendered, awarded float64
		priceSum          float64
		priceCount        int
		summary           Summary
	)
	for _, o := range offers {
		status := offer.Classify(o)

		tendered += volume(o, offer.SummaryVolumeKeys)
		if status == offer.StatusAwarded {
			awarded += volume(o, offer.AwardedVolumeKeys)
			summary.AwardedOffers++
		}
		if offer.IsLive(o, status, now) {
			summary.ActiveOffers++
		}
		if price, ok := offer.PickNumber(o, offer.PriceKeys); ok {
			priceSum += price
			priceCount++
		}
	}

	summary.TotalOffers = len(offers)
	summary.TenderedVolume = opts.convert(tendered)
	summary.AwardedVolume = opts.convert(awarded)
	if priceCount > 0 {
		summary.AvgPrice = priceSum / float64(priceCount)
	}
	if summary.TotalOffers > 0 {
		summary.AwardRate = float64(summary.AwardedOffers) / float64(summary.TotalOffers)
	}
	return summary
}

type FunnelStage struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

const (
	StageTendered = "Licitado"
	StageActive   = "Activas"
	StageAwarded  = "Adjudicadas"
)

// Funnel counts all offers, live offers and awarded offers.
func Funnel(offers []model.Offer, opts Options) []FunnelStage {
	now := opts.now()
	var live, awarded int
	for _, o := range offers {
		status := offer.Classify(o)
		if status == offer.StatusAwarded {
			awarded++
		}
		if offer.IsLive(o, status, now) {
			live++
		}
	}
	return []FunnelStage{
		{Name: StageTendered, Value: len(offers)},
		{Name: StageActive, Value: live},
		{Name: StageAwarded, Value: awarded},
	}
}
