package aggregate

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nurpe/oil-tenders/internal/label"
	"github.com/nurpe/oil-tenders/internal/model"
	"github.com/nurpe/oil-tenders/internal/offer"
)

type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Choices are the values offered by the filter dropdowns.
type Choices struct {
	Products  []Choice `json:"products"`
	Countries []string `json:"countries"`
	Companies []string `json:"companies"`
}

// FilterChoices collects distinct products, countries and companies from the
// unfiltered offer set, sorted with Spanish collation and capped at 100 each.
func FilterChoices(offers []model.Offer) Choices {
	products := newSums()
	countries := newSums()
	companies := newSums()
	for _, o := range offers {
		if p, ok := offer.PickString(o, offer.ProductKeys); ok {
			products.add(p, 0)
		}
		if c, ok := offer.PickString(o, offer.OriginCountryKeys); ok {
			countries.add(c, 0)
		}
		if c, ok := offer.PickString(o, offer.DestinationCountryKeys); ok {
			countries.add(c, 0)
		}
		if c, ok := offer.PickString(o, offer.CompanyKeys); ok {
			companies.add(c, 0)
		}
	}

	productNames := sortedCapped(products.order)
	labels := label.DisambiguateProducts(productNames)
	choices := Choices{
		Products:  make([]Choice, 0, len(productNames)),
		Countries: sortedCapped(countries.order),
		Companies: sortedCapped(companies.order),
	}
	for _, p := range productNames {
		choices.Products = append(choices.Products, Choice{Value: p, Label: labels[p]})
	}
	return choices
}

func sortedCapped(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	collate.New(language.Spanish).SortStrings(out)
	return top(out, MaxOptions)
}
