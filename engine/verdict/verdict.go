// Package verdict gives an instant price-fairness verdict for a listing by
// comparing the asking price with a depreciation-modelled theoretical value.
// It does not depend on the detailed cost estimate.
package verdict

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/WessleyAI/wessley-autocost/engine/listing"
	"github.com/WessleyAI/wessley-autocost/engine/refdata"
)

// Status is the verdict outcome.
type Status string

const (
	Good    Status = "good"
	Fair    Status = "fair"
	Bad     Status = "bad"
	Unknown Status = "unknown"
)

// DealVerdict is the quick verdict for one listing.
type DealVerdict struct {
	Status           Status   `json:"status"`
	Label            string   `json:"label"`
	Color            string   `json:"color"`
	PriceGapPercent  *float64 `json:"price_gap_percent,omitempty"`
	TheoreticalPrice int      `json:"theoretical_price,omitempty"`
}

// MileageClass classifies yearly distance.
type MileageClass string

const (
	MileageLow    MileageClass = "low"
	MileageNormal MileageClass = "normal"
	MileageHigh   MileageClass = "high"
)

const (
	firstYearDepreciation = 0.20
	yearlyDepreciation    = 0.10

	lowKmPerYear  = 10_000
	highKmPerYear = 25_000

	lowMileageBonus    = 1.10
	highMileagePenalty = 0.80

	// Asymmetric on purpose: a good deal is flagged sooner than an overpriced one.
	goodBelowPct = -10.0
	badAbovePct  = 15.0
)

var presentation = map[Status]struct{ label, color string }{
	Good:    {"Good deal", "green"},
	Fair:    {"Fair price", "orange"},
	Bad:     {"Overpriced", "red"},
	Unknown: {"Not enough data", "gray"},
}

// Evaluator computes verdicts against a clock and a segment table.
type Evaluator struct {
	catalog *refdata.Catalog
	now     func() time.Time
}

// NewEvaluator creates an Evaluator. A nil catalog or clock selects the
// built-in table and the wall clock.
func NewEvaluator(c *refdata.Catalog, now func() time.Time) *Evaluator {
	if c == nil {
		c = refdata.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Evaluator{catalog: c, now: now}
}

// Quick evaluates r against the built-in segment table as of now.
func Quick(r listing.Record, now time.Time) DealVerdict {
	return NewEvaluator(nil, func() time.Time { return now }).Evaluate(r)
}

// Evaluate returns the verdict for r.
func (e *Evaluator) Evaluate(r listing.Record) DealVerdict {
	if r.Price <= 0 || math.IsNaN(r.Price) || math.IsInf(r.Price, 0) {
		return newVerdict(Unknown)
	}
	theoretical := e.TheoreticalPrice(r)
	if theoretical <= 0 {
		return newVerdict(Unknown)
	}

	gap := (r.Price - theoretical) / theoretical * 100

	var status Status
	switch {
	case gap < goodBelowPct:
		status = Good
	case gap > badAbovePct:
		status = Bad
	default:
		status = Fair
	}

	v := newVerdict(status)
	rounded, _ := decimal.NewFromFloat(gap).Round(1).Float64()
	v.PriceGapPercent = &rounded
	v.TheoreticalPrice = int(decimal.NewFromFloat(theoretical).Round(0).IntPart())
	return v
}

// TheoreticalPrice models the current value of r: the segment's new price,
// minus 20% the first year and 10% compounded each following year, adjusted
// for yearly mileage.
func (e *Evaluator) TheoreticalPrice(r listing.Record) float64 {
	age := effectiveAge(r, e.now().Year())
	seg := refdata.ClassifySegment(r.Make, r.Model, r.Title)
	value := e.catalog.Segment(seg).NewPrice *
		(1 - firstYearDepreciation) *
		math.Pow(1-yearlyDepreciation, float64(age-1))

	switch ClassifyMileage(r, e.now().Year()) {
	case MileageLow:
		value *= lowMileageBonus
	case MileageHigh:
		value *= highMileagePenalty
	}
	return value
}

// ClassifyMileage buckets the yearly distance driven.
func ClassifyMileage(r listing.Record, currentYear int) MileageClass {
	perYear := float64(r.Mileage) / float64(effectiveAge(r, currentYear))
	switch {
	case perYear < lowKmPerYear:
		return MileageLow
	case perYear > highKmPerYear:
		return MileageHigh
	default:
		return MileageNormal
	}
}

// effectiveAge is floored at 1 so current-year cars never divide by zero.
func effectiveAge(r listing.Record, currentYear int) int {
	return max(1, currentYear-r.Year)
}

func newVerdict(s Status) DealVerdict {
	p := presentation[s]
	return DealVerdict{Status: s, Label: p.label, Color: p.color}
}
