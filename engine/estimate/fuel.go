package estimate

import "github.com/WessleyAI/wessley-autocost/engine/listing"

const monthlyDistance = 15_000.0 / 12

// Units for Fuel.Unit.
const (
	UnitLitres = "L/100km"
	UnitKWh    = "kWh/100km"
)

var baseConsumption = map[listing.Powertrain]float64{
	listing.Petrol:   6.5,
	listing.Diesel:   5.5,
	listing.Hybrid:   4.8,
	listing.Electric: 17.0,
}

// Price per litre, or per kWh for electric.
var unitPrice = map[listing.Powertrain]float64{
	listing.Petrol:   1.85,
	listing.Diesel:   1.75,
	listing.Hybrid:   1.85,
	listing.Electric: 0.25,
}

var tierConsumption = map[listing.BrandTier]float64{
	listing.Mainstream: 1,
	listing.Premium:    1.15,
	listing.Luxury:     1.35,
}

// Fuel estimates consumption and monthly energy spend over a fixed
// 15,000 km/year. A reference figure for the powertrain, when present,
// replaces the heuristic rate.
func (e *Estimator) Fuel(r listing.Record, res Resolution) Fuel {
	pt := r.Powertrain()
	if pt == listing.Unknown {
		pt = listing.Petrol
	}

	var rate float64
	if res.Vehicle != nil {
		rate, _ = res.Vehicle.ConsumptionFor(pt)
	}
	if rate == 0 {
		rate = heuristicConsumption(r, pt)
	}

	consumption := round1(rate)
	unit := UnitLitres
	if pt == listing.Electric {
		unit = UnitKWh
	}
	return Fuel{
		Consumption: consumption,
		Unit:        unit,
		MonthlyCost: roundInt(consumption / 100 * monthlyDistance * unitPrice[pt]),
	}
}

func heuristicConsumption(r listing.Record, pt listing.Powertrain) float64 {
	rate := baseConsumption[pt] * tierConsumption[listing.TierOf(r.Make)]

	text := listing.Fold(r.Model + " " + r.Title)
	switch {
	case pt == listing.Hybrid && (listing.ContainsWord(text, "yaris") || listing.ContainsWord(text, "prius")):
		rate *= 0.8
	case pt.Combustion() && (listing.ContainsWord(text, "clio") || listing.ContainsWord(text, "twingo")):
		rate *= 0.95
	}
	return rate
}
