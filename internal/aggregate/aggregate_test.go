package aggregate

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/oil-tenders/internal/label"
	"github.com/nurpe/oil-tenders/internal/model"
	"github.com/nurpe/oil-tenders/internal/offer"
	"github.com/nurpe/oil-tenders/internal/unit"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func generatedOffers(seed int64, n int) []model.Offer {
	faker := gofakeit.New(seed)
	products := []string{"Crudo Medanito", "Gasoil Grado 3", "Nafta Súper", "Jet A-1", "Fuel Oil"}
	basins := []string{"Neuquina", "Golfo San Jorge", "Austral – Santa Cruz On Shore", "Cuyana", "Plataforma"}
	countries := []string{"Argentina", "Chile", "Uruguay", "Brasil"}
	statuses := []string{"open", "awarded", "tendered", "closed"}
	ports := []string{"Puerto Rosales", "Caleta Córdova", "Terminal Dock Sud", "Punta Loyola"}

	offers := make([]model.Offer, 0, n)
	for i := 0; i < n; i++ {
		fields := map[string]any{
			"id":                faker.UUID(),
			"product":           faker.RandomString(products),
			"basin":             faker.RandomString(basins),
			"country":           faker.RandomString(countries),
			"company":           faker.Company(),
			"status":            faker.RandomString(statuses),
			"delivery_location": faker.RandomString(ports),
			"volume":            faker.Float64Range(10, 5000),
			"price":             faker.Float64Range(40, 90),
			"date":              faker.DateRange(fixedNow.AddDate(-1, 0, 0), fixedNow).Format(time.RFC3339),
			"deadline":          faker.DateRange(fixedNow.AddDate(0, -1, 0), fixedNow.AddDate(0, 2, 0)).Format("2006-01-02"),
		}
		if faker.Bool() {
			fields["destination_country"] = faker.RandomString(countries)
		}
		offers = append(offers, model.NewOffer(fields))
	}
	return offers
}

func TestSummaryEndToEnd(t *testing.T) {
	offers := []model.Offer{
		model.NewOffer(map[string]any{"volume": 100, "status": "tendered"}),
		model.NewOffer(map[string]any{"volume": 50, "awarded_volume": 50, "status": "awarded"}),
	}

	s := Summarize(offers, Options{Unit: unit.Barrel, Now: fixedNow})

	assert.InDelta(t, 943.4715, s.TenderedVolume, 1e-6)
	assert.InDelta(t, 314.4905, s.AwardedVolume, 1e-6)
	assert.Equal(t, 0.5, s.AwardRate)
	assert.Equal(t, 2, s.TotalOffers)
	assert.Equal(t, 1, s.AwardedOffers)
	assert.Equal(t, 0, s.ActiveOffers)
	assert.Equal(t, 0.0, s.AvgPrice)
}

func TestSummaryPricesAndLiveCount(t *testing.T) {
	offers := []model.Offer{
		model.NewOffer(map[string]any{"price": "1.234,50", "status": "Open"}),
		model.NewOffer(map[string]any{"unit_price": 65.5, "deadline": "2024-06-02"}),
		model.NewOffer(map[string]any{"price": "N/A", "deadline": "2024-05-01"}),
	}

	s := Summarize(offers, Options{Now: fixedNow})

	assert.InDelta(t, (1234.5+65.5)/2, s.AvgPrice, 1e-9)
	assert.Equal(t, 2, s.ActiveOffers)
	assert.Equal(t, 0.0, s.AwardRate)
}

func TestSummaryOfEmptySet(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil, Options{Now: fixedNow}))
}

func TestSummaryHonoursSourceUnit(t *testing.T) {
	offers := []model.Offer{model.NewOffer(map[string]any{"bbls": 628.981})}

	s := Summarize(offers, Options{Unit: unit.CubicMeter, SourceUnit: unit.Barrel, Now: fixedNow})

	assert.InDelta(t, 100, s.TenderedVolume, 1e-9)
}

func TestFunnel(t *testing.T) {
	offers := []model.Offer{
		model.NewOffer(map[string]any{"status": "awarded", "deadline": "2025-01-01"}),
		model.NewOffer(map[string]any{"status": "ongoing"}),
		model.NewOffer(map[string]any{"awarded": true}),
		model.NewOffer(map[string]any{"closing_date": "2023-01-01"}),
	}

	assert.Equal(t, []FunnelStage{
		{Name: "Licitado", Value: 4},
		{Name: "Activas", Value: 2},
		{Name: "Adjudicadas", Value: 2},
	}, Funnel(offers, Options{Now: fixedNow}))
}

func TestTimeSeries(t *testing.T) {
	offers := []model.Offer{
		model.NewOffer(map[string]any{"date": "2024-03-02T08:00:00Z", "volume": 10}),
		model.NewOffer(map[string]any{"published_at": "2024-03-01", "qty": "1.000,0", "status": "adjudicada"}),
		model.NewOffer(map[string]any{"created_at": "2024-03-02", "tendered_volume": 5, "status": "awarded", "awarded_volume": 4}),
		model.NewOffer(map[string]any{"volume": 99}),
	}

	assert.Equal(t, []TimePoint{
		{Date: "2024-03-01", Tendered: 1000, Awarded: 1000},
		{Date: "2024-03-02", Tendered: 15, Awarded: 4},
	}, TimeSeries(offers, Options{}))
}

func TestAggregatesAreComplete(t *testing.T) {
	offers := generatedOffers(42, 10)
	offers = append(offers,
		model.NewOffer(map[string]any{"volume": 12.5}),
		model.NewOffer(map[string]any{"qty": "3,5", "basin": "Neuquina"}),
	)

	var direct, basinDirect float64
	for _, o := range offers {
		v, _ := offer.PickNumber(o, offer.VolumeKeys)
		direct += v
		b, _ := offer.PickNumber(o, offer.BasinVolumeKeys)
		basinDirect += b
	}

	var products float64
	for _, it := range ByProduct(offers, Options{}) {
		products += it.Volume
	}
	assert.InDelta(t, direct, products, 1e-6)

	var offering, destination float64
	for _, it := range ByCountry(offers, Options{}) {
		offering += it.Offering
		destination += it.Destination
	}
	assert.InDelta(t, direct, offering, 1e-6)
	assert.InDelta(t, direct, destination, 1e-6)

	var basins float64
	for _, it := range ByBasin(offers, Options{}) {
		basins += it.Volume
	}
	assert.InDelta(t, basinDirect, basins, 1e-6)

	var companies, percent float64
	for _, row := range Companies(offers, Options{}) {
		companies += row.Volume
		percent += row.Percent
	}
	assert.InDelta(t, direct, companies, 1e-6)
	assert.InDelta(t, 1, percent, 1e-9)
}

func TestDefaultBuckets(t *testing.T) {
	offers := []model.Offer{model.NewOffer(map[string]any{"volume": 7})}

	assert.Equal(t, []ProductItem{{Product: "Otro", Label: "Otro", Volume: 7}}, ByProduct(offers, Options{}))
	assert.Equal(t, []CountryItem{{Country: "N/A", Offering: 7, Destination: 7}}, ByCountry(offers, Options{}))
	assert.Equal(t, []BasinItem{{Basin: "Desconocida", Group: label.GroupOther, Volume: 7}}, ByBasin(offers, Options{}))
	assert.Equal(t, []CompanyRow{{Company: "N/A", Volume: 7, Percent: 1, Offers: 1}}, Companies(offers, Options{}))

	flows := FlowLinks(offers, Options{})
	require.Len(t, flows, 1)
	assert.Equal(t, "N/A", flows[0].Source)
	assert.Equal(t, "N/A", flows[0].Target)
	assert.Equal(t, "#94a3b8", flows[0].Color)

	points := GeoPoints(offers, Options{})
	require.Len(t, points, 1)
	assert.Equal(t, label.DefaultCoord, points[0].Coordinates)
	assert.False(t, points[0].Resolved)
}

func TestByCountryDestinationFallback(t *testing.T) {
	offers := []model.Offer{
		model.NewOffer(map[string]any{"country": "Argentina", "destination_country": "Chile", "volume": 10}),
		model.NewOffer(map[string]any{"origin_country": "Argentina", "volume": 5}),
		model.NewOffer(map[string]any{"offering_country": "Uruguay", "destination": "Brasil", "volume": 1}),
	}

	assert.Equal(t, []CountryItem{
		{Country: "Argentina", Offering: 15, Destination: 5},
		{Country: "Chile", Offering: 0, Destination: 10},
		{Country: "Uruguay", Offering: 1, Destination: 0},
		{Country: "Brasil", Offering: 0, Destination: 1},
	}, ByCountry(offers, Options{}))
}

func TestByProductCollisionLabels(t *testing.T) {
	offers := []model.Offer{
		model.NewOffer(map[string]any{"product": "Diesel", "volume": 30}),
		model.NewOffer(map[string]any{"product": "Gas Oil", "volume": 20}),
		model.NewOffer(map[string]any{"product_type": "Nafta", "volume": 10}),
	}

	items := ByProduct(offers, Options{})
	require.Len(t, items, 3)
	assert.Equal(t, ProductItem{Product: "Diesel", Label: "Gasoil (1B8N)", Volume: 30}, items[0])
	assert.Equal(t, ProductItem{Product: "Gas Oil", Label: "Gasoil (1Z13)", Volume: 20}, items[1])
	assert.Equal(t, ProductItem{Product: "Nafta", Label: "Nafta", Volume: 10}, items[2])

	assert.Equal(t, items, ByProduct(offers, Options{}))
}

func TestTopNCaps(t *testing.T) {
	var offers []model.Offer
	for i := 0; i < 30; i++ {
		offers = append(offers, model.NewOffer(map[string]any{
			"product":  fmt.Sprintf("product-%02d", i),
			"company":  fmt.Sprintf("company-%02d", i),
			"basin":    fmt.Sprintf("basin-%02d", i),
			"volume":   float64(i + 1),
			"price":    1,
			"deadline": time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
		}))
	}

	products := ByProduct(offers, Options{})
	require.Len(t, products, TopCategories)
	assert.Equal(t, 30.0, products[0].Volume)
	assert.Equal(t, 19.0, products[11].Volume)

	assert.Len(t, ByBasin(offers, Options{}), TopCategories)
	assert.Len(t, Companies(offers, Options{}), TopCompanies)
	assert.Len(t, GeoPoints(offers, Options{}), 30)

	deadlines := NearDeadline(offers)
	require.Len(t, deadlines, TopNearDeadline)
	assert.Equal(t, "2024-01-01", deadlines[0].Deadline)
	assert.Equal(t, "2024-01-10", deadlines[9].Deadline)
}

func TestTiesKeepFirstSeenOrder(t *testing.T) {
	offers := []model.Offer{
		model.NewOffer(map[string]any{"company": "Beta", "volume": 5}),
		model.NewOffer(map[string]any{"company": "Alpha", "volume": 5}),
		model.NewOffer(map[string]any{"company": "Gamma", "volume": 9}),
	}

	rows := Companies(offers, Options{})
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Gamma", "Beta", "Alpha"}, []string{rows[0].Company, rows[1].Company, rows[2].Company})
}

func TestScatter(t *testing.T) {
	offers := []model.Offer{
		model.NewOffer(map[string]any{"price": 70, "volume": 100, "status": "awarded"}),
		model.NewOffer(map[string]any{"price": 70}),
		model.NewOffer(map[string]any{"volume": 10}),
		model.NewOffer(map[string]any{"tendered_price": "0", "qty": "0,0"}),
	}

	assert.Equal(t, []ScatterPoint{
		{Price: 70, Volume: 100, Status: offer.StatusAwarded},
		{Price: 0, Volume: 0, Status: offer.StatusTendered},
	}, Scatter(offers, Options{}))

	var many []model.Offer
	for i := 0; i < MaxScatter+5; i++ {
		many = append(many, model.NewOffer(map[string]any{"price": i, "volume": i}))
	}
	points := Scatter(many, Options{})
	require.Len(t, points, MaxScatter)
	assert.Equal(t, float64(MaxScatter-1), points[MaxScatter-1].Price)
}

func TestFlowLinks(t *testing.T) {
	offers := []model.Offer{
		model.NewOffer(map[string]any{"basin": "Neuquina", "port": "Puerto Rosales", "volume": 10}),
		model.NewOffer(map[string]any{"basin": "Neuquina", "terminal": "Terminal Puerto Rosales (Oiltanking)", "volume": 15}),
		model.NewOffer(map[string]any{"cuenca": "Golfo San Jorge", "delivery": "Caleta Cordova", "volume": 40}),
		model.NewOffer(map[string]any{"basin_name": "Offshore", "volume": 1}),
	}

	assert.Equal(t, []FlowLink{
		{Source: "Golfo San Jorge", Target: "Caleta Córdova", Value: 40, Group: label.GroupGolfoSanJorge, Color: "#3b82f6", Stroke: "#3b82f6"},
		{Source: "Neuquina", Target: "Pto. Rosales", Value: 25, Group: label.GroupNeuquina, Color: "#22c55e", Stroke: "#22c55e"},
		{Source: "Offshore", Target: "N/A", Value: 1, Group: label.GroupOther, Color: "#94a3b8", Stroke: "#94a3b8"},
	}, FlowLinks(offers, Options{}))
}

func TestGeoPointsResolveSubregions(t *testing.T) {
	offers := []model.Offer{
		model.NewOffer(map[string]any{"basin": "Neuquina Río Negro", "volume": 1}),
		model.NewOffer(map[string]any{"basin": "Cuenca Austral", "bbl": 2}),
	}

	points := GeoPoints(offers, Options{})
	require.Len(t, points, 2)
	assert.Equal(t, "Cuenca Austral", points[0].Name)
	assert.Equal(t, label.Coord{-68.5, -52.0}, points[0].Coordinates)
	assert.Equal(t, label.Coord{-67.385008, -38.956695}, points[1].Coordinates)
	assert.True(t, points[1].Resolved)
}

func TestNearDeadline(t *testing.T) {
	offers := []model.Offer{
		model.NewOffer(map[string]any{"id": 17, "title": "Lote 3", "deadline": "2024-07-01", "product": "Nafta", "destination_country": "Chile"}),
		model.NewOffer(map[string]any{"product": "Crudo", "closing_date": "2024-06-15T12:00:00Z"}),
		model.NewOffer(map[string]any{"title": "Sin fecha"}),
	}

	items := NearDeadline(offers)
	require.Len(t, items, 2)

	assert.Equal(t, "Crudo", items[0].Title)
	assert.Equal(t, "2024-06-15T12:00:00Z", items[0].Deadline)
	assert.Len(t, items[0].ID, 36)
	assert.Equal(t, items[0].ID, NearDeadline(offers)[0].ID)

	assert.Equal(t, DeadlineItem{ID: "17", Title: "Lote 3", Deadline: "2024-07-01", Product: "Nafta", Country: "Chile"}, items[1])

	untitled := NearDeadline([]model.Offer{model.NewOffer(map[string]any{"deadline": "2024-01-01"})})
	require.Len(t, untitled, 1)
	assert.Equal(t, "Oferta", untitled[0].Title)
}

func TestNearDeadlineIDsAreUnique(t *testing.T) {
	offers := []model.Offer{
		model.NewOffer(map[string]any{"title": "Lote", "deadline": "2024-06-01", "product": "Crudo"}),
		model.NewOffer(map[string]any{"title": "Lote", "deadline": "2024-06-01", "product": "Nafta"}),
		model.NewOffer(map[string]any{"title": "Lote", "deadline": "2024-06-01", "product": "Crudo"}),
		model.NewOffer(map[string]any{"title": "Lote", "deadline": "2024-06-01", "product": "Crudo"}),
	}

	items := NearDeadline(offers)
	require.Len(t, items, 4)

	ids := make(map[string]struct{}, len(items))
	for _, it := range items {
		ids[it.ID] = struct{}{}
	}
	assert.Len(t, ids, 4)

	again := NearDeadline(offers)
	for i := range items {
		assert.Equal(t, items[i].ID, again[i].ID)
	}
}

func TestCalendar(t *testing.T) {
	offers := []model.Offer{
		model.NewOffer(map[string]any{"date": "2024-03-02T08:00:00Z"}),
		model.NewOffer(map[string]any{"published_at": "2024-03-01"}),
		model.NewOffer(map[string]any{"created_at": "2024-03-02"}),
		model.NewOffer(map[string]any{"deadline": "2024-03-03"}),
	}

	assert.Equal(t, []CalendarDay{
		{Date: "2024-03-01", Count: 1},
		{Date: "2024-03-02", Count: 2},
	}, Calendar(offers))
	assert.Empty(t, Calendar(nil))
}

func TestFilterChoices(t *testing.T) {
	offers := []model.Offer{
		model.NewOffer(map[string]any{"product": "Ñandú", "country": "Perú", "company": "YPF"}),
		model.NewOffer(map[string]any{"product": "Nafta", "destination": "Chile", "buyer": "ENAP"}),
		model.NewOffer(map[string]any{"product_type": "ávila", "offering_country": "Argentina", "seller": "Axion"}),
		model.NewOffer(map[string]any{"product": "Diesel"}),
		model.NewOffer(map[string]any{"product": "Gas Oil"}),
		model.NewOffer(map[string]any{"product": "Nafta", "country": "Perú"}),
	}

	choices := FilterChoices(offers)

	values := make([]string, 0, len(choices.Products))
	for _, c := range choices.Products {
		values = append(values, c.Value)
	}
	assert.Equal(t, []string{"ávila", "Diesel", "Gas Oil", "Nafta", "Ñandú"}, values)
	assert.Equal(t, Choice{Value: "Diesel", Label: "Gasoil (1B8N)"}, choices.Products[1])
	assert.Equal(t, Choice{Value: "Nafta", Label: "Nafta"}, choices.Products[3])
	assert.Equal(t, []string{"Argentina", "Chile", "Perú"}, choices.Countries)
	assert.Equal(t, []string{"Axion", "ENAP", "YPF"}, choices.Companies)
}

func TestBuildIsIdempotent(t *testing.T) {
	offers := generatedOffers(7, 200)
	opts := Options{Unit: unit.Barrel, Now: fixedNow}

	first, err := Build(context.Background(), offers, opts)
	require.NoError(t, err)
	second, err := Build(context.Background(), offers, opts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, unit.Barrel, first.Unit)
	assert.Equal(t, first.Summary.TotalOffers, first.Funnel[0].Value)
	assert.Equal(t, first.Summary.ActiveOffers, first.Funnel[1].Value)
	assert.Equal(t, Summarize(offers, opts), first.Summary)
	assert.Equal(t, FlowLinks(offers, opts), first.Flows)
}

func TestBuildPinsClock(t *testing.T) {
	calls := 0
	nowFunc = func() time.Time {
		calls++
		return fixedNow.Add(time.Duration(calls) * time.Hour)
	}
	t.Cleanup(func() { nowFunc = time.Now })

	d, err := Build(context.Background(), generatedOffers(1, 20), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, d.Summary.ActiveOffers, d.Funnel[1].Value)
}

func TestBuildStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, generatedOffers(1, 5), Options{Now: fixedNow})
	assert.ErrorIs(t, err, context.Canceled)
}
