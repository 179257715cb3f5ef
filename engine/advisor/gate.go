package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/WessleyAI/wessley-autocost/engine/listing"
	"github.com/WessleyAI/wessley-autocost/engine/quota"
)

// Gate runs an Analyzer only while the daily quota lasts. A unit is
// reserved before the analyzer runs and released if it fails, so only
// successful analyses count and concurrent calls cannot exceed the limit.
type Gate struct {
	Quota    quota.Tracker
	Analyzer Analyzer
	Log      *slog.Logger
}

// Analyze implements Analyzer.
func (g *Gate) Analyze(ctx context.Context, rec listing.Record) (Analysis, error) {
	if err := g.Quota.Reserve(ctx); err != nil {
		if errors.Is(err, quota.ErrExhausted) {
			return Analysis{}, ErrQuotaExceeded
		}
		return Analysis{}, fmt.Errorf("advisor: reserve quota: %w", err)
	}

	out, err := g.Analyzer.Analyze(ctx, rec)
	if err != nil {
		// The request may be cancelled; the refund must still land.
		if rerr := g.Quota.Release(context.WithoutCancel(ctx)); rerr != nil {
			g.logger().Warn("quota release failed", "error", rerr)
		}
		return Analysis{}, err
	}
	return out, nil
}

func (g *Gate) logger() *slog.Logger {
	if g.Log != nil {
		return g.Log
	}
	return slog.Default()
}
