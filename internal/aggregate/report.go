package aggregate

import (
	"time"

	"github.com/nurpe/oil-tenders/internal/filter"
)

// Report is a dashboard together with what it was computed from, as rendered
// into exported files.
type Report struct {
	Dashboard   Dashboard
	Filter      filter.State
	OfferCount  int
	FetchedAt   time.Time
	GeneratedAt time.Time
}
