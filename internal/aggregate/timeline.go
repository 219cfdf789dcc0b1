package aggregate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/oil-tenders/internal/model"
	"github.com/nurpe/oil-tenders/internal/offer"
)

type TimePoint struct {
	Date     string  `json:"date"`
	Tendered float64 `json:"tendered"`
	Awarded  float64 `json:"awarded"`
}

// TimeSeries buckets volumes by publication day, oldest first. Offers without
// a publication date are left out of the series.
func TimeSeries(offers []model.Offer, opts Options) []TimePoint {
	tendered := newSums()
	awarded := newSums()
	for _, o := range offers {
		raw, ok := offer.PickDateISO(o, offer.PublishDateKeys)
		if !ok {
			continue
		}
		day, _ := offer.Day(raw)
		tendered.add(day, volume(o, offer.VolumeKeys))
		if offer.Classify(o) == offer.StatusAwarded {
			awarded.add(day, volume(o, offer.AwardedVolumeKeys))
		}
	}

	points := make([]TimePoint, 0, len(tendered.order))
	for _, day := range tendered.order {
		points = append(points, TimePoint{
			Date:     day,
			Tendered: opts.convert(tendered.get(day)),
			Awarded:  opts.convert(awarded.get(day)),
		})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

type CalendarDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Calendar counts offers per publication day, oldest first. Days without
// offers are not emitted.
func Calendar(offers []model.Offer) []CalendarDay {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, o := range offers {
		raw, ok := offer.PickDateISO(o, offer.PublishDateKeys)
		if !ok {
			continue
		}
		day, _ := offer.Day(raw)
		if _, seen := counts[day]; !seen {
			order = append(order, day)
		}
		counts[day]++
	}

	days := make([]CalendarDay, 0, len(order))
	for _, day := range order {
		days = append(days, CalendarDay{Date: day, Count: counts[day]})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

type ScatterPoint struct {
	Price  float64      `json:"price"`
	Volume float64      `json:"volume"`
	Status offer.Status `json:"status"`
}

// Scatter emits one point per offer carrying both a price and a volume, in
// input order.
func Scatter(offers []model.Offer, opts Options) []ScatterPoint {
	points := make([]ScatterPoint, 0, min(len(offers), MaxScatter))
	for _, o := range offers {
		if len(points) == MaxScatter {
			break
		}
		price, ok := offer.PickNumber(o, offer.PriceKeys)
		if !ok {
			continue
		}
		vol, ok := offer.PickNumber(o, offer.VolumeKeys)
		if !ok {
			continue
		}
		points = append(points, ScatterPoint{Price: price, Volume: opts.convert(vol), Status: offer.Classify(o)})
	}
	return points
}

type DeadlineItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Deadline string `json:"deadline"`
	Product  string `json:"product,omitempty"`
	Country  string `json:"country,omitempty"`
}

var deadlineNamespace = uuid.MustParse("6f1c2a52-4d8e-4b0a-9a57-3f4c0d2e8b91")

// NearDeadline lists offers with a deadline, soonest first. Offers without an
// id get one derived from title, deadline, product and country; repeats of
// the same combination are numbered by input position.
func NearDeadline(offers []model.Offer) []DeadlineItem {
	items := make([]DeadlineItem, 0)
	repeats := make(map[string]int)
	for _, o := range offers {
		deadline, ok := offer.PickDateISO(o, offer.DeadlineKeys)
		if !ok {
			continue
		}
		title := stringOr(o, offer.TitleKeys, DefaultTitle)
		product, _ := offer.PickString(o, offer.ProductKeys)
		country, _ := offer.PickString(o, offer.ListingCountryKeys)
		id, ok := offer.Text(o, offer.IDKeys)
		if !ok {
			base := strings.Join([]string{title, deadline, product, country}, "|")
			key := base
			if n := repeats[base]; n > 0 {
				key += "|" + strconv.Itoa(n)
			}
			repeats[base]++
			id = uuid.NewSHA1(deadlineNamespace, []byte(key)).String()
		}

		items = append(items, DeadlineItem{
			ID:       id,
			Title:    title,
			Deadline: deadline,
			Product:  product,
			Country:  country,
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Deadline < items[j].Deadline })
	return top(items, TopNearDeadline)
}
