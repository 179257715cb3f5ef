package estimate

import "github.com/WessleyAI/wessley-autocost/engine/listing"

const (
	neutralScore    = 7.0
	concerningScore = 5.0

	veryHighMileage = 200_000
	longLifeAge     = 15
	electronicsYear = 2016 // model years before this carry the electronics penalty
)

// Generic issue lines.
const (
	IssueNormalWear  = "Normal wear for this model"
	IssueInjectors   = "Injectors or turbo to verify"
	IssueVeryHighKm  = "Very high mileage: check engine and gearbox wear"
	IssueHighKm      = "High mileage: expect suspension and clutch wear"
	IssueSeals       = "Age: check seals and gaskets for leaks"
	issueElectronics = "Electronics known to be fragile on older models of this brand"
)

var reliableMakes = map[string]bool{
	"toyota": true, "lexus": true, "honda": true, "mazda": true,
	"suzuki": true, "skoda": true, "dacia": true,
}

var electronicsProneMakes = map[string]bool{
	"renault": true, "peugeot": true, "citroen": true, "fiat": true,
	"alfa romeo": true, "land rover": true, "opel": true,
}

// Reliability is a 1-10 score with the issues behind it, most significant
// first.
type Reliability struct {
	Score  float64  `json:"score"`
	Issues []string `json:"issues"`
}

// Reliability scores r. A matched reference entry provides the starting
// score and issues; otherwise a neutral baseline is adjusted by brand
// reputation. Mileage and age downgrades apply in both cases.
func (e *Estimator) Reliability(r listing.Record, res Resolution) Reliability {
	return e.reliability(r, res, e.CurrentYear(), nil)
}

func (e *Estimator) reliability(r listing.Record, res Resolution, currentYear int, advisories []string) Reliability {
	var (
		score  float64
		issues []string
	)

	if res.Vehicle != nil {
		score = res.Vehicle.Reliability
		issues = append(issues, res.Vehicle.KnownIssues...)
	} else {
		score = neutralScore
		m := listing.Fold(r.Make)
		if reliableMakes[m] {
			score++
		}
		if electronicsProneMakes[m] && r.Year < electronicsYear {
			score--
			issues = append(issues, issueElectronics)
		}
	}

	switch {
	case r.Mileage > veryHighMileage:
		score -= 2
		issues = append(issues, IssueVeryHighKm)
	case r.Mileage > highMileage:
		score--
		issues = append(issues, IssueHighKm)
	}

	if r.Age(currentYear) > longLifeAge {
		score--
		issues = append(issues, IssueSeals)
	}

	issues = append(issues, advisories...)
	score = round1(clamp(score, 1, 10))

	if len(issues) == 0 {
		issues = append(issues, IssueNormalWear)
	}
	if len(issues) == 1 && score < concerningScore {
		issues = append(issues, IssueInjectors)
	}
	return Reliability{Score: score, Issues: issues}
}
