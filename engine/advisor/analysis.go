// Package advisor talks to the language-model collaborator that produces the
// detailed listing analysis, and gates it behind the daily usage quota.
// Local estimation never depends on it.
package advisor

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/WessleyAI/wessley-autocost/engine/listing"
)

// Analyzer produces a detailed analysis of a listing.
type Analyzer interface {
	Analyze(ctx context.Context, rec listing.Record) (Analysis, error)
}

// DealQuality is the collaborator's verdict on the asking price.
type DealQuality string

const (
	DealGood DealQuality = "good"
	DealFair DealQuality = "fair"
	DealBad  DealQuality = "bad"
)

// MaxWarnings is the number of top warnings kept from a response.
const MaxWarnings = 3

// Analysis is the fixed-shape response of the collaborator.
type Analysis struct {
	DealQuality        DealQuality `json:"dealQuality"`
	DealSummary        string      `json:"dealSummary"`
	EstimatedRealPrice float64     `json:"estimatedRealPrice"`
	AnnualCosts        AnnualCosts `json:"annualCosts"`
	FuelConsumption    float64     `json:"fuelConsumption"`
	FuelUnit           string      `json:"fuelUnit"`
	ReliabilityScore   float64     `json:"reliabilityScore"`
	TopWarnings        []string    `json:"topWarnings"`
	Detailed           Detailed    `json:"detailedAnalysis"`
}

// AnnualCosts is the collaborator's itemized yearly budget.
type AnnualCosts struct {
	Fuel        float64 `json:"fuel"`
	Maintenance float64 `json:"maintenance"`
	Insurance   float64 `json:"insurance"`
	Total       float64 `json:"total"`
}

// Detailed holds the long-form part of the analysis.
type Detailed struct {
	Pros                    []string `json:"pros"`
	Cons                    []string `json:"cons"`
	MaintenanceAdvice       string   `json:"maintenanceAdvice"`
	ModelReliabilityDetails string   `json:"modelReliabilityDetails"`
}

// check rejects responses that do not fit the schema and trims the warning
// list. The collaborator's figures are otherwise taken as given.
func (a *Analysis) check() error {
	switch a.DealQuality {
	case DealGood, DealFair, DealBad:
	default:
		q := DealQuality(strings.ToLower(strings.TrimSpace(string(a.DealQuality))))
		if q != DealGood && q != DealFair && q != DealBad {
			return fmt.Errorf("%w: deal quality %q", ErrMalformedResponse, a.DealQuality)
		}
		a.DealQuality = q
	}
	if math.IsNaN(a.ReliabilityScore) || a.ReliabilityScore < 0 || a.ReliabilityScore > 10 {
		return fmt.Errorf("%w: reliability score %v", ErrMalformedResponse, a.ReliabilityScore)
	}
	if a.EstimatedRealPrice < 0 {
		return fmt.Errorf("%w: negative estimated price", ErrMalformedResponse)
	}
	warnings := a.TopWarnings[:0]
	for _, w := range a.TopWarnings {
		if w = strings.TrimSpace(w); w != "" {
			warnings = append(warnings, w)
		}
	}
	if len(warnings) > MaxWarnings {
		warnings = warnings[:MaxWarnings]
	}
	a.TopWarnings = warnings
	return nil
}
