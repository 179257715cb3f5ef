// Package quota counts analysis calls per calendar day. The counter resets
// implicitly: a stored usage dated before today counts as zero.
package quota

import (
	"context"
	"errors"
	"time"
)

// DefaultDailyLimit is the number of analyses allowed per day.
const DefaultDailyLimit = 10

// DateLayout formats the usage date (UTC).
const DateLayout = "2006-01-02"

// ErrExhausted is returned by Reserve when today's limit is used up.
var ErrExhausted = errors.New("quota: daily limit reached")

// Tracker reports and records daily usage.
//
// Reserve checks and takes one unit in a single step, so concurrent callers
// cannot overrun the limit; Release gives a reserved unit back. Record takes
// a unit unconditionally.
type Tracker interface {
	Remaining(ctx context.Context) (int, error)
	Record(ctx context.Context) error
	Reserve(ctx context.Context) error
	Release(ctx context.Context) error
}

// Usage is the persisted counter.
type Usage struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

func (u Usage) remaining(limit int, day string) int {
	if u.Date != day {
		return limit
	}
	return max(0, limit-u.Count)
}

func (u Usage) next(day string) Usage {
	if u.Date != day {
		return Usage{Date: day, Count: 1}
	}
	return Usage{Date: day, Count: u.Count + 1}
}

func (u Usage) reserve(limit int, day string) (Usage, bool) {
	if u.remaining(limit, day) <= 0 {
		return u, false
	}
	return u.next(day), true
}

// release undoes one unit of today's usage. Units from a previous day are
// already gone.
func (u Usage) release(day string) (Usage, bool) {
	if u.Date != day || u.Count <= 0 {
		return u, false
	}
	return Usage{Date: day, Count: u.Count - 1}, true
}

func dayOf(t time.Time) string { return t.UTC().Format(DateLayout) }

func normalize(limit int, now func() time.Time) (int, func() time.Time) {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	if now == nil {
		now = time.Now
	}
	return limit, now
}
