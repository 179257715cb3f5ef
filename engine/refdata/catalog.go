// Package refdata holds the static reference tables the estimator reads:
// curated per-model cost and reliability figures, and per-segment fallbacks.
// A Catalog is immutable once built and safe for concurrent use.
package refdata

import (
	"strings"

	"github.com/WessleyAI/wessley-autocost/engine/listing"
)

// Vehicle is a curated reference entry for one model.
type Vehicle struct {
	ID string `json:"id"`
	// Keywords must all appear in the folded title+model text.
	Keywords    []string                       `json:"keywords"`
	Maintenance float64                        `json:"maintenance"`
	Insurance   float64                        `json:"insurance"`
	Reliability float64                        `json:"reliability"`
	Consumption map[listing.Powertrain]float64 `json:"consumption,omitempty"`
	KnownIssues []string                       `json:"known_issues"`
	Advice      string                         `json:"advice"`
}

// Matches reports whether every keyword is a substring of the folded text.
func (v Vehicle) Matches(folded string) bool {
	if len(v.Keywords) == 0 {
		return false
	}
	for _, kw := range v.Keywords {
		if !strings.Contains(folded, kw) {
			return false
		}
	}
	return true
}

// ConsumptionFor returns the real-world consumption figure for p, if known.
func (v Vehicle) ConsumptionFor(p listing.Powertrain) (float64, bool) {
	c, ok := v.Consumption[p]
	return c, ok && c > 0
}

// Catalog is a read-only set of reference vehicles and segment costs.
type Catalog struct {
	vehicles []Vehicle
	segments map[Segment]SegmentCost
}

// NewCatalog builds a catalog. Vehicle order is the match priority and is
// preserved; missing segments fall back to the built-in table.
func NewCatalog(vehicles []Vehicle, segments map[Segment]SegmentCost) *Catalog {
	c := &Catalog{
		vehicles: make([]Vehicle, len(vehicles)),
		segments: make(map[Segment]SegmentCost, len(defaultSegments)),
	}
	for i, v := range vehicles {
		c.vehicles[i] = cloneVehicle(v)
	}
	for s, cost := range defaultSegments {
		c.segments[s] = cost
	}
	for s, cost := range segments {
		c.segments[s] = cost
	}
	return c
}

var defaultCatalog = NewCatalog(withSpellings(defaultVehicles), defaultSegments)

// Default returns the built-in catalog.
func Default() *Catalog { return defaultCatalog }

// Vehicles returns a copy of the reference entries in match order.
func (c *Catalog) Vehicles() []Vehicle {
	out := make([]Vehicle, len(c.vehicles))
	for i, v := range c.vehicles {
		out[i] = cloneVehicle(v)
	}
	return out
}

// Len returns the number of reference entries.
func (c *Catalog) Len() int { return len(c.vehicles) }

// Match returns the first entry whose keywords all occur in text.
func (c *Catalog) Match(text string) (Vehicle, bool) {
	folded := listing.Fold(text)
	for _, v := range c.vehicles {
		if v.Matches(folded) {
			return cloneVehicle(v), true
		}
	}
	return Vehicle{}, false
}

// Segment returns the fallback costs for s; unknown segments cost as CITY.
func (c *Catalog) Segment(s Segment) SegmentCost {
	if cost, ok := c.segments[s]; ok {
		return cost
	}
	return c.segments[City]
}

func cloneVehicle(v Vehicle) Vehicle {
	out := v
	out.Keywords = make([]string, len(v.Keywords))
	for i, kw := range v.Keywords {
		out.Keywords[i] = listing.Fold(kw)
	}
	out.KnownIssues = append([]string(nil), v.KnownIssues...)
	if v.Consumption != nil {
		out.Consumption = make(map[listing.Powertrain]float64, len(v.Consumption))
		for k, val := range v.Consumption {
			out.Consumption[k] = val
		}
	}
	return out
}
