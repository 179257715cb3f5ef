// Package listing defines the normalized vehicle listing record shared by the
// extraction and estimation stages, together with the text folding and
// classification helpers both sides rely on.
package listing

// Record is a normalized vehicle classified ad.
//
// A Record handed to the estimation stage is always fully populated; the
// extractor reports "no record" instead of returning a partial one.
type Record struct {
	Make     string  `json:"make"`
	Model    string  `json:"model"`
	Year     int     `json:"year"`
	Price    float64 `json:"price"`
	Fuel     string  `json:"fuel"`
	Mileage  int     `json:"mileage"`
	Title    string  `json:"title"`
	ImageURL string  `json:"image_url,omitempty"`
}

// Placeholder values used by extractors when a field cannot be resolved.
const (
	UnknownMake  = "Unknown"
	UnknownModel = "unknown"
	UnknownFuel  = "unknown"
)

// MinYear is the earliest model year accepted.
const MinYear = 1900

// MaxYear returns the latest acceptable model year (next year's models are
// already on sale).
func MaxYear(currentYear int) int { return currentYear + 1 }

// PlausibleYear reports whether y is a model year worth keeping.
func PlausibleYear(y, currentYear int) bool {
	return y >= MinYear && y <= MaxYear(currentYear)
}

// Age returns the vehicle age in whole years, never negative.
func (r Record) Age(currentYear int) int {
	age := currentYear - r.Year
	if age < 0 {
		return 0
	}
	return age
}
