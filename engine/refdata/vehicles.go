package refdata

import "github.com/WessleyAI/wessley-autocost/engine/listing"

// defaultVehicles is declared most-specific-first: an entry whose keywords
// are a superset of a later entry's must come before it, since the first
// match wins.
var defaultVehicles = []Vehicle{
	{
		ID:          "renault_clio_5",
		Keywords:    []string{"clio", "5"},
		Maintenance: 550,
		Insurance:   650,
		Reliability: 8,
		Consumption: map[listing.Powertrain]float64{listing.Petrol: 6.2, listing.Diesel: 4.8, listing.Hybrid: 4.5},
		KnownIssues: []string{"EasyLink infotainment freezes (frequent)", "Wind noise at motorway speed"},
		Advice:      "Versatile all-rounder. The E-Tech hybrid is very frugal in town.",
	},
	{
		ID:          "peugeot_e208",
		Keywords:    []string{"e-208"},
		Maintenance: 300,
		Insurance:   780,
		Reliability: 7,
		Consumption: map[listing.Powertrain]float64{listing.Electric: 16.5},
		KnownIssues: []string{"On-board charger faults", "Touchscreen bugs"},
		Advice:      "Cheap to run. Check the charging cable and battery health report.",
	},
	{
		ID:          "peugeot_208_2",
		Keywords:    []string{"208"},
		Maintenance: 680,
		Insurance:   720,
		Reliability: 5,
		Consumption: map[listing.Powertrain]float64{listing.Petrol: 6.5, listing.Diesel: 5.0, listing.Electric: 16.5},
		KnownIssues: []string{
			"1.2 PureTech engine: wet timing belt (check it was replaced)",
			"AdBlue tank (diesel)",
			"Touchscreen bugs",
		},
		Advice: "On PureTech petrol engines, ask for proof the timing belt was changed.",
	},
	{
		ID:          "citroen_c3_aircross",
		Keywords:    []string{"c3", "aircross"},
		Maintenance: 650,
		Insurance:   640,
		Reliability: 6,
		Consumption: map[listing.Powertrain]float64{listing.Petrol: 6.8, listing.Diesel: 5.2},
		KnownIssues: []string{"1.2 PureTech engine (timing belt)", "Rear suspension noises"},
		Advice:      "Roomy small SUV. Same engine caveats as the C3 hatchback.",
	},
	{
		ID:          "citroen_c3",
		Keywords:    []string{"c3"},
		Maintenance: 600,
		Insurance:   600,
		Reliability: 6,
		Consumption: map[listing.Powertrain]float64{listing.Petrol: 6.4, listing.Diesel: 4.9},
		KnownIssues: []string{"1.2 PureTech engine (timing belt)", "Premature front tyre wear"},
		Advice:      "Very comfortable. Same engine caveats as the Peugeot 208.",
	},
	{
		ID:          "dacia_sandero",
		Keywords:    []string{"sandero"},
		Maintenance: 450,
		Insurance:   500,
		Reliability: 8,
		Consumption: map[listing.Powertrain]float64{listing.Petrol: 6.8, listing.Diesel: 5.2, listing.Hybrid: 7.5},
		KnownIssues: []string{"Cabin rattles", "Clutch sometimes fragile"},
		Advice:      "Cheapest car to run in its class. Basic but very dependable.",
	},
	{
		ID:          "tesla_model_3",
		Keywords:    []string{"tesla", "model 3"},
		Maintenance: 250,
		Insurance:   1100,
		Reliability: 9,
		Consumption: map[listing.Powertrain]float64{listing.Electric: 15.5},
		KnownIssues: []string{"Panel gaps", "Fragile paint", "Suspension arm noise"},
		Advice:      "Almost no servicing. Insurance premiums have risen recently.",
	},
	{
		ID:          "vw_golf_7",
		Keywords:    []string{"golf", "7"},
		Maintenance: 850,
		Insurance:   950,
		Reliability: 8,
		Consumption: map[listing.Powertrain]float64{listing.Petrol: 7.0, listing.Diesel: 5.5, listing.Hybrid: 2.0},
		KnownIssues: []string{"DSG gearbox (oil change every 60,000 km)", "Water pump"},
		Advice:      "Safe bet. The DSG gearbox is great but needs strict servicing.",
	},
	{
		ID:          "toyota_yaris",
		Keywords:    []string{"yaris"},
		Maintenance: 500,
		Insurance:   600,
		Reliability: 9.5,
		Consumption: map[listing.Powertrain]float64{listing.Hybrid: 4.2, listing.Petrol: 6.0},
		KnownIssues: []string{"No major issue", "Fragile interior plastics"},
		Advice:      "The benchmark for reliability, especially as a hybrid.",
	},
	{
		ID:          "mg_4",
		Keywords:    []string{"mg4"},
		Maintenance: 350,
		Insurance:   850,
		Reliability: 7,
		Consumption: map[listing.Powertrain]float64{listing.Electric: 17.0},
		KnownIssues: []string{"Differential oil leaks", "Frequent software bugs"},
		Advice:      "Unbeatable value, but the software can be temperamental.",
	},
}

// spellings are extra keyword sets for an entry, matched right after the
// entry's own keywords.
var spellings = map[string][][]string{
	"vw_golf_7": {{"golf", "vii"}},
	"mg_4":      {{"mg 4"}},
}

func withSpellings(vs []Vehicle) []Vehicle {
	out := make([]Vehicle, 0, len(vs))
	for _, v := range vs {
		out = append(out, v)
		for _, kw := range spellings[v.ID] {
			alt := v
			alt.Keywords = kw
			out = append(out, alt)
		}
	}
	return out
}
