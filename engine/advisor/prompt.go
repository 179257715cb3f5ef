package advisor

import (
	"fmt"
	"strings"

	"github.com/WessleyAI/wessley-autocost/engine/listing"
)

const promptSchema = `{
  "dealQuality": "good" | "fair" | "bad",
  "dealSummary": string,
  "estimatedRealPrice": number,
  "annualCosts": {"fuel": number, "maintenance": number, "insurance": number, "total": number},
  "fuelConsumption": number,
  "fuelUnit": "L/100km" | "kWh/100km",
  "reliabilityScore": number between 0 and 10,
  "topWarnings": [string, at most 3],
  "detailedAnalysis": {"pros": [string], "cons": [string], "maintenanceAdvice": string, "modelReliabilityDetails": string}
}`

// buildPrompt describes the listing and asks for the JSON schema above.
func buildPrompt(rec listing.Record) string {
	var b strings.Builder
	b.WriteString("You are an expert in the French used-car market. Analyze this classified ad ")
	b.WriteString("and estimate its true cost of ownership. Amounts are in euros per year.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", rec.Title)
	fmt.Fprintf(&b, "Make: %s\nModel: %s\nYear: %d\n", rec.Make, rec.Model, rec.Year)
	fmt.Fprintf(&b, "Asking price: %.0f EUR\n", rec.Price)
	fmt.Fprintf(&b, "Mileage: %d km\nFuel: %s\n\n", rec.Mileage, rec.Fuel)
	b.WriteString("Answer with a single JSON object matching exactly:\n")
	b.WriteString(promptSchema)
	b.WriteString("\n")
	return b.String()
}
