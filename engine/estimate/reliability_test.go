package estimate

import (
	"reflect"
	"testing"

	"github.com/WessleyAI/wessley-autocost/engine/listing"
	"github.com/WessleyAI/wessley-autocost/engine/refdata"
)

func TestReliability_Unmatched(t *testing.T) {
	e := newTestEstimator()
	tests := []struct {
		name       string
		rec        listing.Record
		wantScore  float64
		wantIssues []string
	}{
		{
			name:       "reliable brand bonus",
			rec:        listing.Record{Make: "Mazda", Model: "2", Year: 2020, Mileage: 30000},
			wantScore:  8,
			wantIssues: []string{IssueNormalWear},
		},
		{
			name:       "electronics penalty only for older years",
			rec:        listing.Record{Make: "Peugeot", Model: "107", Year: 2018, Mileage: 30000},
			wantScore:  7,
			wantIssues: []string{IssueNormalWear},
		},
		{
			name:       "electronics penalty",
			rec:        listing.Record{Make: "Citroën", Model: "C1", Year: 2012, Mileage: 90000},
			wantScore:  6,
			wantIssues: []string{issueElectronics},
		},
		{
			name:       "high mileage band",
			rec:        listing.Record{Make: "Kia", Model: "Rio", Year: 2015, Mileage: 160000},
			wantScore:  6,
			wantIssues: []string{IssueHighKm},
		},
		{
			name:       "very high mileage band wins",
			rec:        listing.Record{Make: "Kia", Model: "Rio", Year: 2015, Mileage: 210000},
			wantScore:  5,
			wantIssues: []string{IssueVeryHighKm},
		},
		{
			name:       "everything stacks",
			rec:        listing.Record{Make: "Fiat", Model: "Punto", Year: 2005, Mileage: 250000},
			wantScore:  3,
			wantIssues: []string{issueElectronics, IssueVeryHighKm, IssueSeals},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Reliability(tt.rec, e.Resolve(tt.rec))
			if got.Score != tt.wantScore {
				t.Errorf("score = %v, want %v", got.Score, tt.wantScore)
			}
			if !reflect.DeepEqual(got.Issues, tt.wantIssues) {
				t.Errorf("issues = %v, want %v", got.Issues, tt.wantIssues)
			}
		})
	}
}

func lowScoreCatalog(score float64, issues ...string) *refdata.Catalog {
	return refdata.NewCatalog([]refdata.Vehicle{{
		ID:          "lemon",
		Keywords:    []string{"lemon"},
		Maintenance: 900,
		Insurance:   900,
		Reliability: score,
		KnownIssues: issues,
	}}, nil)
}

func TestReliability_SingleIssueLowScoreGetsCaution(t *testing.T) {
	e := newTestEstimator(WithCatalog(lowScoreCatalog(4, "Gearbox")))
	r := listing.Record{Make: "Acme", Model: "Lemon", Year: 2020, Mileage: 10000}
	got := e.Reliability(r, e.Resolve(r))
	want := []string{"Gearbox", IssueInjectors}
	if got.Score != 4 || !reflect.DeepEqual(got.Issues, want) {
		t.Errorf("got %+v, want score 4 issues %v", got, want)
	}
}

func TestReliability_EmptyIssuesLowScore(t *testing.T) {
	e := newTestEstimator(WithCatalog(lowScoreCatalog(3)))
	r := listing.Record{Make: "Acme", Model: "Lemon", Year: 2020}
	got := e.Reliability(r, e.Resolve(r))
	want := []string{IssueNormalWear, IssueInjectors}
	if !reflect.DeepEqual(got.Issues, want) {
		t.Errorf("issues = %v, want %v", got.Issues, want)
	}
}

func TestReliability_ClampedToOne(t *testing.T) {
	e := newTestEstimator(WithCatalog(lowScoreCatalog(1.5, "Everything")))
	r := listing.Record{Make: "Acme", Model: "Lemon", Year: 1990, Mileage: 300000}
	got := e.Reliability(r, e.Resolve(r))
	if got.Score != 1 {
		t.Errorf("score = %v, want clamped 1", got.Score)
	}
}

func TestReliability_DoesNotMutateCatalog(t *testing.T) {
	e := newTestEstimator()
	r := listing.Record{Make: "Toyota", Model: "Yaris", Year: 2000, Mileage: 250000, Title: "Toyota Yaris"}
	_ = e.Reliability(r, e.Resolve(r))
	v, _ := refdata.Default().Match("yaris")
	if len(v.KnownIssues) != 2 {
		t.Fatalf("catalog issues changed: %v", v.KnownIssues)
	}
}
