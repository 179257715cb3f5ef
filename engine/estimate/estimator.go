// Package estimate computes a deterministic cost-of-ownership estimate for a
// listing: yearly maintenance and insurance, fuel spend, and a reliability
// score with the issues worth checking before buying.
//
// Every computation is a pure function of the record, the reference catalog
// and the current year, which is injectable for tests.
package estimate

import (
	"time"

	"github.com/WessleyAI/wessley-autocost/engine/listing"
	"github.com/WessleyAI/wessley-autocost/engine/refdata"
)

// Level is a qualitative bucket for a yearly cost.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// BreakdownItem is one line of the maintenance budget.
type BreakdownItem struct {
	Category  string `json:"category"`
	Cost      int    `json:"cost"`
	Frequency string `json:"frequency"`
}

// Maintenance is the yearly maintenance estimate.
type Maintenance struct {
	Min       int             `json:"min"`
	Max       int             `json:"max"`
	Average   int             `json:"average"`
	Level     Level           `json:"level"`
	Breakdown []BreakdownItem `json:"breakdown"`
}

// Insurance is the yearly insurance estimate.
type Insurance struct {
	Min     int   `json:"min"`
	Max     int   `json:"max"`
	Average int   `json:"average"`
	Level   Level `json:"level"`
}

// Fuel is the energy consumption and monthly spend estimate.
type Fuel struct {
	Consumption float64 `json:"consumption"`
	Unit        string  `json:"unit"`
	MonthlyCost int     `json:"monthly_cost"`
}

// CostEstimation is the aggregated output for one listing.
type CostEstimation struct {
	Maintenance      Maintenance     `json:"maintenance"`
	Insurance        Insurance       `json:"insurance"`
	Fuel             Fuel            `json:"fuel"`
	ReliabilityScore float64         `json:"reliability_score"`
	CommonIssues     []string        `json:"common_issues"`
	Advice           string          `json:"advice,omitempty"`
	MatchedID        string          `json:"matched_id,omitempty"`
	Segment          refdata.Segment `json:"segment"`
}

// Estimator computes estimates against a reference catalog.
// It is immutable and safe for concurrent use.
type Estimator struct {
	catalog *refdata.Catalog
	now     func() time.Time
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithCatalog replaces the built-in reference catalog.
func WithCatalog(c *refdata.Catalog) Option {
	return func(e *Estimator) {
		if c != nil {
			e.catalog = c
		}
	}
}

// WithNow sets the clock used to derive the current year.
func WithNow(now func() time.Time) Option {
	return func(e *Estimator) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an Estimator using the built-in catalog and the wall clock
// unless overridden.
func New(opts ...Option) *Estimator {
	e := &Estimator{catalog: refdata.Default(), now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Estimate is a convenience wrapper using the default Estimator.
func Estimate(r listing.Record) CostEstimation {
	return New().Estimate(r)
}

// CurrentYear returns the year the estimator considers "now".
func (e *Estimator) CurrentYear() int { return e.now().Year() }

// Estimate resolves the reference model and composes the cost, fuel and
// reliability figures.
func (e *Estimator) Estimate(r listing.Record) CostEstimation {
	year := e.CurrentYear()
	res := e.Resolve(r)
	costs := e.costs(r, res, year)
	rel := e.reliability(r, res, year, costs.Advisories)

	out := CostEstimation{
		Maintenance:      costs.Maintenance,
		Insurance:        costs.Insurance,
		Fuel:             e.Fuel(r, res),
		ReliabilityScore: rel.Score,
		CommonIssues:     rel.Issues,
		Segment:          res.Segment,
	}
	if res.Vehicle != nil {
		out.MatchedID = res.Vehicle.ID
		out.Advice = res.Vehicle.Advice
	}
	return out
}
