package estimate

import (
	"math"

	"github.com/WessleyAI/wessley-autocost/engine/listing"
)

const (
	maintenancePerYear = 0.05 // added to the maintenance multiplier per year of age
	insurancePerYear   = 0.03 // removed from the insurance multiplier per year of age
	insuranceFloor     = 0.40

	mileageThreshold = 100_000
	mileageBlock     = 20_000
	penaltyPerBlock  = 0.08
	highMileage      = 150_000

	// Timing-belt class service, due around 120,000 km.
	majorServiceAt     = 120_000
	majorServiceMargin = 10_000
	majorServiceCost   = 600.0

	dieselMaintenance   = 1.10
	electricMaintenance = 0.6
	electricInsurance   = 1.1
	upmarketMaintenance = 1.3

	lowPriceMin       = 1_500
	lowPriceMax       = 5_000
	lowPriceInsurance = 1.15

	maintenanceBandPct = 10
	insuranceBandPct   = 20
)

// MajorServiceAdvisory is added to the issues when the major service window
// applies and no reference entry already describes the model.
const MajorServiceAdvisory = "Timing belt service due around 120,000 km: ask for proof it was done"

// Costs is the maintenance and insurance estimate plus advisories raised
// while computing it.
type Costs struct {
	Maintenance Maintenance
	Insurance   Insurance
	Advisories  []string
}

// Costs computes maintenance and insurance for r.
func (e *Estimator) Costs(r listing.Record, res Resolution) Costs {
	return e.costs(r, res, e.CurrentYear())
}

func (e *Estimator) costs(r listing.Record, res Resolution, currentYear int) Costs {
	baseMaint, baseInsur := e.baseCosts(res)
	age := float64(r.Age(currentYear))
	pt := r.Powertrain()

	maint := baseMaint * (1 + maintenancePerYear*age)
	insur := baseInsur * math.Max(insuranceFloor, 1-insurancePerYear*age)

	maint *= MileagePenalty(r.Mileage)

	switch pt {
	case listing.Diesel:
		maint *= dieselMaintenance
	case listing.Electric:
		maint *= electricMaintenance
		insur *= electricInsurance
	}
	if listing.TierOf(r.Make).Upmarket() {
		maint *= upmarketMaintenance
	}
	if r.Price >= lowPriceMin && r.Price <= lowPriceMax {
		insur *= lowPriceInsurance
	}

	var advisories []string
	// The service cost applies from the start of the window onward; the
	// advisory only inside it.
	if pt.Combustion() && r.Mileage >= majorServiceAt-majorServiceMargin {
		maint += majorServiceCost
		if r.Mileage <= majorServiceAt+majorServiceMargin && !res.Matched() {
			advisories = append(advisories, MajorServiceAdvisory)
		}
	}

	avgMaint := roundInt(maint)
	avgInsur := roundInt(insur)
	mMin, mMax := band(avgMaint, maintenanceBandPct)
	iMin, iMax := band(avgInsur, insuranceBandPct)

	return Costs{
		Maintenance: Maintenance{
			Min:       mMin,
			Max:       mMax,
			Average:   avgMaint,
			Level:     maintenanceLevel(avgMaint),
			Breakdown: breakdown(avgMaint, pt, r.Mileage),
		},
		Insurance: Insurance{
			Min:     iMin,
			Max:     iMax,
			Average: avgInsur,
			Level:   insuranceLevel(avgInsur),
		},
		Advisories: advisories,
	}
}

// MileagePenalty returns the maintenance multiplier for the odometer
// reading: 1 up to the threshold, then +8% for every started block of
// 20,000 beyond it.
func MileagePenalty(mileage int) float64 {
	if mileage <= mileageThreshold {
		return 1
	}
	excess := mileage - mileageThreshold
	blocks := (excess + mileageBlock - 1) / mileageBlock
	return 1 + penaltyPerBlock*float64(blocks)
}

// Breakdown categories.
const (
	CategoryService     = "Periodic service"
	CategoryWear        = "Wear parts (tyres, brakes, suspension)"
	CategoryContingency = "Unexpected repairs"
)

// breakdown splits the maintenance average into service, wear and
// contingency lines. Contingency absorbs the rounding remainder so the lines
// always sum to total.
func breakdown(total int, pt listing.Powertrain, mileage int) []BreakdownItem {
	service, wear := 50, 30
	if pt == listing.Electric {
		service -= 20
		wear += 20
	}
	if mileage > highMileage {
		service -= 10
	}
	serviceCost := share(total, service)
	wearCost := share(total, wear)
	return []BreakdownItem{
		{Category: CategoryService, Cost: serviceCost, Frequency: "Yearly"},
		{Category: CategoryWear, Cost: wearCost, Frequency: "Every 1-2 years"},
		{Category: CategoryContingency, Cost: total - serviceCost - wearCost, Frequency: "Unpredictable"},
	}
}

func maintenanceLevel(v int) Level {
	return level(v, 500, 1000)
}

func insuranceLevel(v int) Level {
	return level(v, 600, 1200)
}

func level(v, low, high int) Level {
	switch {
	case v < low:
		return LevelLow
	case v > high:
		return LevelHigh
	default:
		return LevelMedium
	}
}
