package estimate

import (
	"github.com/WessleyAI/wessley-autocost/engine/listing"
	"github.com/WessleyAI/wessley-autocost/engine/refdata"
)

// Resolution is the reference model a listing was classified into. Vehicle
// is nil when no reference entry matched and the segment table applies.
type Resolution struct {
	Vehicle *refdata.Vehicle
	Segment refdata.Segment
}

// Matched reports whether a precise reference entry was found.
func (r Resolution) Matched() bool { return r.Vehicle != nil }

// Resolve looks up an exact reference entry by keyword match over
// title+model, and always classifies the segment so callers have a fallback.
func Resolve(c *refdata.Catalog, make_, model, title string) Resolution {
	res := Resolution{Segment: refdata.ClassifySegment(make_, model, title)}
	if v, ok := c.Match(title + " " + model); ok {
		res.Vehicle = &v
	}
	return res
}

// Resolve classifies r against the estimator's catalog.
func (e *Estimator) Resolve(r listing.Record) Resolution {
	return Resolve(e.catalog, r.Make, r.Model, r.Title)
}

func (e *Estimator) baseCosts(res Resolution) (maintenance, insurance float64) {
	if res.Vehicle != nil {
		return res.Vehicle.Maintenance, res.Vehicle.Insurance
	}
	seg := e.catalog.Segment(res.Segment)
	return seg.Maintenance, seg.Insurance
}
