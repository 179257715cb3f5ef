package refdata

import "github.com/WessleyAI/wessley-autocost/engine/listing"

// Segment is a coarse vehicle category used when no reference entry matches.
type Segment string

const (
	City    Segment = "CITY"
	Compact Segment = "COMPACT"
	SUV     Segment = "SUV"
	Premium Segment = "PREMIUM"
	Luxury  Segment = "LUXURY"
)

// SegmentCost is the yearly base cost and assumed new price for a segment.
type SegmentCost struct {
	Maintenance float64 `json:"maintenance"`
	Insurance   float64 `json:"insurance"`
	NewPrice    float64 `json:"new_price"`
}

var defaultSegments = map[Segment]SegmentCost{
	City:    {Maintenance: 500, Insurance: 600, NewPrice: 20000},
	Compact: {Maintenance: 700, Insurance: 750, NewPrice: 28000},
	SUV:     {Maintenance: 900, Insurance: 900, NewPrice: 35000},
	Premium: {Maintenance: 1200, Insurance: 1300, NewPrice: 45000},
	Luxury:  {Maintenance: 2000, Insurance: 2200, NewPrice: 90000},
}

var suvKeywords = []string{
	"suv", "4x4", "crossover", "3008", "5008", "captur", "kadjar", "koleos",
	"arkana", "austral", "duster", "tiguan", "t-roc", "touareg", "qashqai", "juke",
	"x-trail", "rav4", "c-hr", "sportage", "tucson", "kona", "kuga", "puma",
	"aircross", "ateca", "arona", "karoq", "kodiaq", "mokka", "grandland", "cx-5",
}

var compactKeywords = []string{
	"golf", "308", "megane", "focus", "c4", "astra", "leon", "corolla", "civic",
	"auris", "i30", "ceed", "octavia", "mazda3", "model 3", "id.3", "zoe",
}

// ClassifySegment assigns a segment from the make and model text. Brand rules
// take precedence over model keywords: luxury, premium, SUV, compact, then CITY.
func ClassifySegment(make_, model, title string) Segment {
	switch listing.TierOf(make_) {
	case listing.Luxury:
		return Luxury
	case listing.Premium:
		return Premium
	}
	text := listing.Fold(model + " " + title)
	for _, kw := range suvKeywords {
		if listing.ContainsWord(text, kw) {
			return SUV
		}
	}
	for _, kw := range compactKeywords {
		if listing.ContainsWord(text, kw) {
			return Compact
		}
	}
	return City
}
