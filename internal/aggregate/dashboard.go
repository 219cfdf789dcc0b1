package aggregate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/nurpe/oil-tenders/internal/model"
	"github.com/nurpe/oil-tenders/internal/unit"
)

// Dashboard holds every view computed from one filtered offer set.
type Dashboard struct {
	Unit         unit.Unit      `json:"unit"`
	Summary      Summary        `json:"summary"`
	Series       []TimePoint    `json:"series"`
	Calendar     []CalendarDay  `json:"calendar"`
	Products     []ProductItem  `json:"products"`
	Countries    []CountryItem  `json:"countries"`
	Funnel       []FunnelStage  `json:"funnel"`
	Scatter      []ScatterPoint `json:"scatter"`
	Basins       []BasinItem    `json:"basins"`
	Flows        []FlowLink     `json:"flows"`
	Map          []GeoPoint     `json:"map"`
	Companies    []CompanyRow   `json:"companies"`
	NearDeadline []DeadlineItem `json:"near_deadline"`
}

// Build runs every aggregator over the same read-only slice concurrently.
// The clock is pinned once so that the live count of the summary and the
// funnel agree.
func Build(ctx context.Context, offers []model.Offer, opts Options) (Dashboard, error) {
	if opts.Now.IsZero() {
		opts = opts.WithNow(nowFunc())
	}
	d := Dashboard{Unit: opts.displayUnit()}

	g, ctx := errgroup.WithContext(ctx)
	run := func(fn func()) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		})
	}

	run(func() { d.Summary = Summarize(offers, opts) })
	run(func() { d.Series = TimeSeries(offers, opts) })
	run(func() { d.Calendar = Calendar(offers) })
	run(func() { d.Products = ByProduct(offers, opts) })
	run(func() { d.Countries = ByCountry(offers, opts) })
	run(func() { d.Funnel = Funnel(offers, opts) })
	run(func() { d.Scatter = Scatter(offers, opts) })
	run(func() { d.Basins = ByBasin(offers, opts) })
	run(func() { d.Flows = FlowLinks(offers, opts) })
	run(func() { d.Map = GeoPoints(offers, opts) })
	run(func() { d.Companies = Companies(offers, opts) })
	run(func() { d.NearDeadline = NearDeadline(offers) })

	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}
