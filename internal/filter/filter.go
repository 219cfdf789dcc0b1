// Package filter holds the dashboard filter state and the predicate that
// applies it to offers.
package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/nurpe/oil-tenders/internal/model"
	"github.com/nurpe/oil-tenders/internal/offer"
)

var ErrInvalidDate = errors.New("invalid date bound")

// Query string and blob field names.
const (
	FieldProduct = "product"
	FieldCountry = "country"
	FieldCompany = "company"
	FieldFrom    = "from"
	FieldTo      = "to"
)

// State is a partial filter. Empty fields put no constraint on offers.
type State struct {
	Product string `json:"product,omitempty"`
	Country string `json:"country,omitempty"`
	Company string `json:"company,omitempty"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
}

func (s State) IsZero() bool {
	return s.normalized() == State{}
}

func (s State) normalized() State {
	return State{
		Product: strings.TrimSpace(s.Product),
		Country: strings.TrimSpace(s.Country),
		Company: strings.TrimSpace(s.Company),
		From:    strings.TrimSpace(s.From),
		To:      strings.TrimSpace(s.To),
	}
}

// Validate checks that date bounds, when set, carry a YYYY-MM-DD date.
func (s State) Validate() error {
	n := s.normalized()
	if n.From != "" {
		if _, ok := offer.Day(n.From); !ok {
			return fmt.Errorf("%w: from=%q", ErrInvalidDate, n.From)
		}
	}
	if n.To != "" {
		if _, ok := offer.Day(n.To); !ok {
			return fmt.Errorf("%w: to=%q", ErrInvalidDate, n.To)
		}
	}
	return nil
}

func (s State) WithProduct(product string) State {
	s.Product = product
	return s
}

func (s State) WithCountry(country string) State {
	s.Country = country
	return s
}

func (s State) WithCompany(company string) State {
	s.Company = company
	return s
}

// Match reports whether o satisfies every active constraint of s. Date bounds
// are inclusive and compare calendar days only, so To "2024-03-05" still
// matches an offer dated "2024-03-05T23:00:00Z". An offer without a date
// fails any active bound.
func Match(o model.Offer, s State) bool {
	n := s.normalized()

	if n.Product != "" && !containsFold(o, offer.ProductKeys, n.Product) {
		return false
	}
	if n.Country != "" && !containsFold(o, offer.FilterCountryKeys, n.Country) {
		return false
	}
	if n.Company != "" && !containsFold(o, offer.CompanyKeys, n.Company) {
		return false
	}
	if n.From == "" && n.To == "" {
		return true
	}

	raw, ok := offer.PickDateISO(o, offer.FilterDateKeys)
	if !ok {
		return false
	}
	day, _ := offer.Day(raw)
	if n.From != "" && day < boundDay(n.From) {
		return false
	}
	if n.To != "" && day > boundDay(n.To) {
		return false
	}
	return true
}

// Apply returns the offers matching s, in input order.
func Apply(offers []model.Offer, s State) []model.Offer {
	out := make([]model.Offer, 0, len(offers))
	for _, o := range offers {
		if Match(o, s) {
			out = append(out, o)
		}
	}
	return out
}

func containsFold(o model.Offer, keys []string, needle string) bool {
	value, _ := offer.PickString(o, keys)
	return strings.Contains(strings.ToLower(value), strings.ToLower(needle))
}

func boundDay(bound string) string {
	if day, ok := offer.Day(bound); ok {
		return day
	}
	return bound
}

// FromQuery reads the filter fields out of a query string.
func FromQuery(values url.Values) State {
	return State{
		Product: values.Get(FieldProduct),
		Country: values.Get(FieldCountry),
		Company: values.Get(FieldCompany),
		From:    values.Get(FieldFrom),
		To:      values.Get(FieldTo),
	}.normalized()
}

// Query encodes the non-empty fields.
func (s State) Query() url.Values {
	n := s.normalized()
	values := url.Values{}
	set := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	set(FieldProduct, n.Product)
	set(FieldCountry, n.Country)
	set(FieldCompany, n.Company)
	set(FieldFrom, n.From)
	set(FieldTo, n.To)
	return values
}

func (s State) Encode() string {
	return s.Query().Encode()
}

// Blob is the persisted key-value form of the state.
func (s State) Blob() ([]byte, error) {
	return json.Marshal(s.normalized())
}

func ParseBlob(data []byte) (State, error) {
	var s State
	if len(strings.TrimSpace(string(data))) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, err
	}
	return s.normalized(), nil
}

// Resolve picks the state a session starts from: the URL state when any of
// its fields is set, the stored state otherwise.
func Resolve(fromURL, stored State) State {
	if !fromURL.IsZero() {
		return fromURL.normalized()
	}
	return stored.normalized()
}

func FromSaved(saved model.SavedFilter) State {
	return State{
		Product: saved.Product,
		Country: saved.Country,
		Company: saved.Company,
		From:    saved.FromDate,
		To:      saved.ToDate,
	}.normalized()
}

func (s State) Saved(owner string) model.SavedFilter {
	n := s.normalized()
	return model.SavedFilter{
		Owner:    owner,
		Product:  n.Product,
		Country:  n.Country,
		Company:  n.Company,
		FromDate: n.From,
		ToDate:   n.To,
	}
}
