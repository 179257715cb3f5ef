package estimate

import (
	"math"

	"github.com/shopspring/decimal"
)

// roundInt rounds half away from zero to whole currency units.
func roundInt(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(decimal.NewFromFloat(v).Round(0).IntPart())
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(1).Float64()
	return f
}

// share returns pct percent of total, rounded.
func share(total, pct int) int {
	return int(decimal.NewFromInt(int64(total)).
		Mul(decimal.NewFromInt(int64(pct))).
		Div(decimal.NewFromInt(100)).
		Round(0).IntPart())
}

// band returns total scaled by (1 ± pct/100), rounded.
func band(total int, pct int) (lo, hi int) {
	return share(total, 100-pct), share(total, 100+pct)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
