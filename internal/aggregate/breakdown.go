package aggregate

import (
	"github.com/nurpe/oil-tenders/internal/label"
	"github.com/nurpe/oil-tenders/internal/model"
	"github.com/nurpe/oil-tenders/internal/offer"
)

type ProductItem struct {
	Product string  `json:"product"`
	Label   string  `json:"label"`
	Volume  float64 `json:"volume"`
}

// ByProduct sums volume per raw product name. Label is the short display name,
// disambiguated among the returned rows.
func ByProduct(offers []model.Offer, opts Options) []ProductItem {
	totals := newSums()
	for _, o := range offers {
		totals.add(stringOr(o, offer.ProductKeys, KeyOther), volume(o, offer.VolumeKeys))
	}

	items := make([]ProductItem, 0, len(totals.order))
	for _, product := range totals.order {
		items = append(items, ProductItem{Product: product, Volume: opts.convert(totals.get(product))})
	}
	sortDesc(items, func(it ProductItem) float64 { return it.Volume })
	items = top(items, TopCategories)

	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Product
	}
	labels := label.DisambiguateProducts(names)
	for i := range items {
		items[i].Label = labels[items[i].Product]
	}
	return items
}

type CountryItem struct {
	Country     string  `json:"country"`
	Offering    float64 `json:"offering"`
	Destination float64 `json:"destination"`
}

// ByCountry sums volume by offering country and by destination country. An
// offer without a destination counts toward its own offering country.
func ByCountry(offers []model.Offer, opts Options) []CountryItem {
	offering := newSums()
	destination := newSums()
	seen := newSums()
	for _, o := range offers {
		from := stringOr(o, offer.OriginCountryKeys, KeyNotAvailable)
		to := stringOr(o, offer.DestinationCountryKeys, from)
		vol := volume(o, offer.VolumeKeys)

		offering.add(from, vol)
		destination.add(to, vol)
		seen.add(from, 0)
		seen.add(to, 0)
	}

	items := make([]CountryItem, 0, len(seen.order))
	for _, country := range seen.order {
		items = append(items, CountryItem{
			Country:     country,
			Offering:    opts.convert(offering.get(country)),
			Destination: opts.convert(destination.get(country)),
		})
	}
	sortDesc(items, func(it CountryItem) float64 { return it.Offering + it.Destination })
	return top(items, TopCategories)
}

type BasinItem struct {
	Basin  string           `json:"basin"`
	Group  label.BasinGroup `json:"group"`
	Volume float64          `json:"volume"`
}

// ByBasin sums volume per basin name, top 12.
func ByBasin(offers []model.Offer, opts Options) []BasinItem {
	totals := basinTotals(offers)
	items := make([]BasinItem, 0, len(totals.order))
	for _, basin := range totals.order {
		items = append(items, BasinItem{
			Basin:  basin,
			Group:  label.GroupOf(basin),
			Volume: opts.convert(totals.get(basin)),
		})
	}
	sortDesc(items, func(it BasinItem) float64 { return it.Volume })
	return top(items, TopCategories)
}

func basinTotals(offers []model.Offer) *sums {
	totals := newSums()
	for _, o := range offers {
		totals.add(stringOr(o, offer.BasinKeys, KeyUnknown), volume(o, offer.BasinVolumeKeys))
	}
	return totals
}

type CompanyRow struct {
	Company string  `json:"company"`
	Volume  float64 `json:"volume"`
	Percent float64 `json:"percent"`
	Offers  int     `json:"offers"`
}

// Companies ranks companies by volume. Percent is the share of the total
// filtered volume, as a fraction.
func Companies(offers []model.Offer, opts Options) []CompanyRow {
	totals := newSums()
	counts := map[string]int{}
	var total float64
	for _, o := range offers {
		company := stringOr(o, offer.CompanyKeys, KeyNotAvailable)
		vol := volume(o, offer.VolumeKeys)
		total += vol
		totals.add(company, vol)
		counts[company]++
	}

	rows := make([]CompanyRow, 0, len(totals.order))
	for _, company := range totals.order {
		row := CompanyRow{
			Company: company,
			Volume:  opts.convert(totals.get(company)),
			Offers:  counts[company],
		}
		if total != 0 {
			row.Percent = totals.get(company) / total
		}
		rows = append(rows, row)
	}
	sortDesc(rows, func(r CompanyRow) float64 { return r.Volume })
	return top(rows, TopCompanies)
}
