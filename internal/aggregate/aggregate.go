// Package aggregate reduces a filtered offer set into the dashboard views.
// Every function is pure: volumes are summed in the source unit and converted
// to the display unit only once per output value.
package aggregate

import (
	"sort"
	"time"

	"github.com/nurpe/oil-tenders/internal/model"
	"github.com/nurpe/oil-tenders/internal/offer"
	"github.com/nurpe/oil-tenders/internal/unit"
)

const (
	TopCategories   = 12
	TopCompanies    = 20
	TopFlowLinks    = 40
	TopNearDeadline = 10
	MaxScatter      = 1000
	MaxOptions      = 100
)

// Default group keys for records missing the field.
const (
	KeyNotAvailable = "N/A"
	KeyOther        = "Otro"
	KeyUnknown      = "Desconocida"
	DefaultTitle    = "Oferta"
)

var nowFunc = time.Now

type Options struct {
	// Unit is the display unit. Defaults to m3.
	Unit unit.Unit
	// SourceUnit is the unit offers are recorded in. Defaults to m3.
	SourceUnit unit.Unit
	// Now is compared against deadlines. Defaults to the wall clock.
	Now time.Time
}

func (o Options) displayUnit() unit.Unit {
	if o.Unit == "" {
		return unit.CubicMeter
	}
	return o.Unit
}

func (o Options) sourceUnit() unit.Unit {
	if o.SourceUnit == "" {
		return unit.CubicMeter
	}
	return o.SourceUnit
}

func (o Options) convert(v float64) float64 {
	return unit.Convert(v, o.sourceUnit(), o.displayUnit())
}

func (o Options) now() string {
	if o.Now.IsZero() {
		return offer.Timestamp(nowFunc())
	}
	return offer.Timestamp(o.Now)
}

// WithNow pins the clock so that repeated builds compare deadlines against
// the same instant.
func (o Options) WithNow(now time.Time) Options {
	o.Now = now
	return o
}

// sums accumulates per-key totals and remembers first-seen key order, which
// breaks ties when sorting.
type sums struct {
	order  []string
	values map[string]float64
}

func newSums() *sums {
	return &sums{values: map[string]float64{}}
}

func (s *sums) add(key string, v float64) {
	if _, ok := s.values[key]; !ok {
		s.order = append(s.order, key)
	}
	s.values[key] += v
}

func (s *sums) get(key string) float64 {
	return s.values[key]
}

func volume(o model.Offer, keys []string) float64 {
	v, _ := offer.PickNumber(o, keys)
	return v
}

func stringOr(o model.Offer, keys []string, fallback string) string {
	if s, ok := offer.PickString(o, keys); ok {
		return s
	}
	return fallback
}

func top[T any](rows []T, n int) []T {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}

func sortDesc[T any](rows []T, value func(T) float64) {
	sort.SliceStable(rows, func(i, j int) bool {
		return value(rows[i]) > value(rows[j])
	})
}
