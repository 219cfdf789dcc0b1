package aggregate

import (
	"github.com/nurpe/oil-tenders/internal/label"
	"github.com/nurpe/oil-tenders/internal/model"
	"github.com/nurpe/oil-tenders/internal/offer"
)

type FlowLink struct {
	Source string           `json:"source"`
	Target string           `json:"target"`
	Value  float64          `json:"value"`
	Group  label.BasinGroup `json:"group"`
	Color  string           `json:"color"`
	Stroke string           `json:"stroke"`
}

type flowKey struct {
	basin    string
	delivery string
}

// FlowLinks sums volume per (basin, delivery location) pair. Links are
// colored by the basin group and capped at 40.
func FlowLinks(offers []model.Offer, opts Options) []FlowLink {
	var order []flowKey
	totals := map[flowKey]float64{}
	for _, o := range offers {
		key := flowKey{
			basin:    stringOr(o, offer.BasinKeys, KeyNotAvailable),
			delivery: KeyNotAvailable,
		}
		if delivery, ok := offer.PickString(o, offer.DeliveryKeys); ok {
			key.delivery = label.ShortenDelivery(delivery)
		}
		if _, ok := totals[key]; !ok {
			order = append(order, key)
		}
		totals[key] += volume(o, offer.VolumeKeys)
	}

	links := make([]FlowLink, 0, len(order))
	for _, key := range order {
		group := label.GroupOf(key.basin)
		links = append(links, FlowLink{
			Source: key.basin,
			Target: key.delivery,
			Value:  opts.convert(totals[key]),
			Group:  group,
			Color:  group.Color(),
			Stroke: group.Color(),
		})
	}
	sortDesc(links, func(l FlowLink) float64 { return l.Value })
	return top(links, TopFlowLinks)
}

type GeoPoint struct {
	Name        string      `json:"name"`
	Coordinates label.Coord `json:"coordinates"`
	Resolved    bool        `json:"resolved"`
	Value       float64     `json:"value"`
}

// GeoPoints places basin totals on the map. Unresolved basins fall back to
// label.DefaultCoord. Not capped.
func GeoPoints(offers []model.Offer, opts Options) []GeoPoint {
	totals := basinTotals(offers)
	points := make([]GeoPoint, 0, len(totals.order))
	for _, basin := range totals.order {
		coord, ok := label.BasinCoords(basin)
		if !ok {
			coord = label.DefaultCoord
		}
		points = append(points, GeoPoint{
			Name:        basin,
			Coordinates: coord,
			Resolved:    ok,
			Value:       opts.convert(totals.get(basin)),
		})
	}
	sortDesc(points, func(p GeoPoint) float64 { return p.Value })
	return points
}
