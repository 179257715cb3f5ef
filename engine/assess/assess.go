// Package assess validates a listing and produces its cost estimate and
// quick deal verdict in one step.
package assess

import (
	"time"

	"github.com/WessleyAI/wessley-autocost/engine/estimate"
	"github.com/WessleyAI/wessley-autocost/engine/listing"
	"github.com/WessleyAI/wessley-autocost/engine/refdata"
	"github.com/WessleyAI/wessley-autocost/engine/verdict"
)

// Report pairs the local estimate with the quick verdict.
type Report struct {
	Estimate estimate.CostEstimation `json:"estimate"`
	Verdict  verdict.DealVerdict     `json:"verdict"`
}

// Assessor is safe for concurrent use.
type Assessor struct {
	estimator *estimate.Estimator
	evaluator *verdict.Evaluator
	now       func() time.Time
}

// New creates an assessor over catalog. A nil catalog uses the built-in
// reference data and a nil clock uses time.Now.
func New(catalog *refdata.Catalog, now func() time.Time) *Assessor {
	if catalog == nil {
		catalog = refdata.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Assessor{
		estimator: estimate.New(estimate.WithCatalog(catalog), estimate.WithNow(now)),
		evaluator: verdict.NewEvaluator(catalog, now),
		now:       now,
	}
}

// Assess returns a *listing.ValidationError for records that cannot be
// estimated.
func (a *Assessor) Assess(rec listing.Record) (Report, error) {
	if err := listing.Validate(rec, a.now().Year()); err != nil {
		return Report{}, err
	}
	return Report{
		Estimate: a.estimator.Estimate(rec),
		Verdict:  a.evaluator.Evaluate(rec),
	}, nil
}

// Verdict returns only the quick verdict. It does not validate rec; records
// without a usable price yield the unknown verdict.
func (a *Assessor) Verdict(rec listing.Record) verdict.DealVerdict {
	return a.evaluator.Evaluate(rec)
}
