package extract

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/WessleyAI/wessley-autocost/engine/listing"
)

const leboncoinHost = "leboncoin.fr"

// LeBonCoin reads listings from leboncoin.fr ad pages. Structured data is
// preferred; the visible page is used when no vehicle JSON-LD is present.
type LeBonCoin struct {
	now func() time.Time
}

// NewLeBonCoin creates the strategy. A nil clock uses time.Now.
func NewLeBonCoin(now func() time.Time) *LeBonCoin {
	if now == nil {
		now = time.Now
	}
	return &LeBonCoin{now: now}
}

func (*LeBonCoin) Name() string { return "leboncoin" }

func (*LeBonCoin) CanHandle(originURL string) bool {
	u, err := url.Parse(originURL)
	if err != nil || u.Host == "" {
		return strings.Contains(strings.ToLower(originURL), leboncoinHost)
	}
	host := strings.ToLower(u.Hostname())
	return host == leboncoinHost || strings.HasSuffix(host, "."+leboncoinHost)
}

func (l *LeBonCoin) Parse(doc *goquery.Document) (listing.Record, error) {
	currentYear := l.now().Year()
	if obj := findVehicleJSONLD(doc); obj != nil {
		return fromJSONLD(doc, obj, currentYear), nil
	}
	return l.fromPage(doc, currentYear)
}

func fromJSONLD(doc *goquery.Document, obj map[string]any, currentYear int) listing.Record {
	rec := listing.Record{
		Make:     listing.UnknownMake,
		Model:    listing.UnknownModel,
		Year:     currentYear,
		Fuel:     listing.UnknownFuel,
		Title:    nameOf(obj["name"]),
		ImageURL: imageOf(obj["image"]),
	}

	for _, key := range []string{"brand", "manufacturer"} {
		if name := nameOf(obj[key]); name != "" {
			rec.Make = name
			break
		}
	}
	if model := nameOf(obj["model"]); model != "" {
		rec.Model = model
	}
	for _, key := range []string{"productionDate", "vehicleModelDate", "modelDate"} {
		if y, ok := leadingInt(obj[key]); ok {
			if listing.PlausibleYear(y, currentYear) {
				rec.Year = y
			}
			break
		}
	}
	if p, ok := priceOf(obj); ok && p >= 0 {
		rec.Price = p
	}
	if fuel := nameOf(obj["fuelType"]); fuel != "" {
		rec.Fuel = fuel
	}
	if km, ok := mileageOf(obj["mileageFromOdometer"]); ok && km >= 0 {
		rec.Mileage = km
	}
	if rec.Title == "" {
		rec.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	return rec
}

var (
	priceSelectors   = []string{`[data-test-id="price"]`, `[data-qa-id="adview_price"]`}
	mileageSelectors = []string{`[data-test-id="mileage"]`, `[data-qa-id="criteria_item_mileage"]`}
)

func (l *LeBonCoin) fromPage(doc *goquery.Document, currentYear int) (listing.Record, error) {
	title := headingText(doc)
	h, ok := parseHeading(title, currentYear)
	if !ok {
		return listing.Record{}, ErrNotFound
	}

	rec := listing.Record{
		Make:  h.make_,
		Model: h.model,
		Year:  currentYear,
		Fuel:  listing.UnknownFuel,
		Title: title,
	}
	if h.yearOK {
		rec.Year = h.year
	}
	if n, ok := digitsIn(doc, priceSelectors); ok {
		rec.Price = float64(n)
	}
	folded := listing.Fold(title)
	if km, ok := digitsIn(doc, mileageSelectors); ok {
		rec.Mileage = km
	} else if km, ok := findMileage(folded); ok {
		rec.Mileage = km
	}
	if pt := listing.ParsePowertrain(folded); pt != listing.Unknown {
		rec.Fuel = string(pt)
	}
	return rec, nil
}

// digitsIn returns the digits of the first non-empty element matched by any
// of the selectors.
func digitsIn(doc *goquery.Document, selectors []string) (int, bool) {
	for _, sel := range selectors {
		text := strings.TrimSpace(doc.Find(sel).First().Text())
		if text == "" {
			continue
		}
		if n, ok := digitsInt(text); ok {
			return n, true
		}
	}
	return 0, false
}

func headingText(doc *goquery.Document) string {
	return strings.Join(strings.Fields(doc.Find("h1").First().Text()), " ")
}
