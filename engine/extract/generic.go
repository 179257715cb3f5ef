package extract

import (
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/WessleyAI/wessley-autocost/engine/listing"
)

// Generic reads make, model and year from the page heading of any site. It
// accepts every URL and must be the last strategy of a router.
type Generic struct {
	now func() time.Time
}

// NewGeneric creates the fallback strategy. A nil clock uses time.Now.
func NewGeneric(now func() time.Time) *Generic {
	if now == nil {
		now = time.Now
	}
	return &Generic{now: now}
}

func (*Generic) Name() string { return "generic" }

func (*Generic) CanHandle(string) bool { return true }

func (g *Generic) Parse(doc *goquery.Document) (listing.Record, error) {
	currentYear := g.now().Year()
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
	return rec, nil
}
