package estimate

import (
	"testing"

	"github.com/WessleyAI/wessley-autocost/engine/listing"
)

func TestFuel(t *testing.T) {
	e := newTestEstimator()
	tests := []struct {
		name string
		rec  listing.Record
		want Fuel
	}{
		{
			name: "unknown fuel uses petrol baseline",
			rec:  listing.Record{Make: "Kia", Model: "Picanto", Fuel: ""},
			want: Fuel{Consumption: 6.5, Unit: UnitLitres, MonthlyCost: 150},
		},
		{
			name: "diesel baseline",
			rec:  listing.Record{Make: "Kia", Model: "Ceed", Fuel: "Diesel"},
			want: Fuel{Consumption: 5.5, Unit: UnitLitres, MonthlyCost: 120},
		},
		{
			name: "premium brand consumes more",
			rec:  listing.Record{Make: "BMW", Model: "Serie 1", Fuel: "essence"},
			want: Fuel{Consumption: 7.5, Unit: UnitLitres, MonthlyCost: 173},
		},
		{
			name: "efficient hybrid correction",
			rec:  listing.Record{Make: "Toyota", Model: "Prius", Fuel: "Hybride"},
			want: Fuel{Consumption: 3.8, Unit: UnitLitres, MonthlyCost: 88},
		},
		{
			name: "reference figure overrides heuristic",
			rec:  listing.Record{Make: "Toyota", Model: "Yaris", Fuel: "Hybrid", Title: "Toyota Yaris Hybrid"},
			want: Fuel{Consumption: 4.2, Unit: UnitLitres, MonthlyCost: 97},
		},
		{
			name: "electric uses kWh",
			rec:  listing.Record{Make: "Renault", Model: "Zoe", Fuel: "ELECTRIQUE"},
			want: Fuel{Consumption: 17, Unit: UnitKWh, MonthlyCost: 53},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Fuel(tt.rec, e.Resolve(tt.rec))
			if got != tt.want {
				t.Errorf("Fuel = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFuel_ReferenceWithoutPowertrainFigure(t *testing.T) {
	e := newTestEstimator()
	// The Yaris entry has no diesel figure: the heuristic applies.
	r := listing.Record{Make: "Toyota", Model: "Yaris", Fuel: "Diesel", Title: "Toyota Yaris D-4D"}
	got := e.Fuel(r, e.Resolve(r))
	if got.Consumption != 5.5 {
		t.Errorf("consumption = %v, want diesel baseline 5.5", got.Consumption)
	}
}
