package resilience

import (
	"gonum.org/v1/gonum/stat"

	"github.com/cohortlab/resilient-aging/errors"
)

// Cohort selectors.
const (
	CohortResilientAger = "resilient_ager"
	CohortAffected      = "affected"
	CohortTypical       = "typical"
)

// Cohort filters classification results down to one group. The
// affected cohort includes late-onset persons; the typical cohort is
// everyone disease-free who is not a resilient ager.
func Cohort(results []Result, kind string) ([]Result, error) {
	var keep func(Result) bool
	switch kind {
	case CohortResilientAger:
		keep = func(r Result) bool { return r.IsResilient }
	case CohortAffected:
		keep = func(r Result) bool { return r.HasCondition }
	case CohortTypical:
		keep = func(r Result) bool { return !r.IsResilient && !r.HasCondition }
	default:
		return nil, errors.NewInvalidRequestError("unknown cohort type: %s", kind)
	}

	var cohort []Result
	for _, r := range results {
		if keep(r) {
			cohort = append(cohort, r)
		}
	}
	return cohort, nil
}

// Comparison summarizes resilient, affected, and typical groups among
// persons old enough for the analysis.
type Comparison struct {
	DiseaseKey         string   `json:"disease_key"`
	MinAge             float64  `json:"min_age"`
	TotalEligible      int      `json:"total_eligible"`
	NResilient         int      `json:"n_resilient"`
	NAffected          int      `json:"n_affected"`
	NTypical           int      `json:"n_typical"`
	PctResilient       float64  `json:"pct_resilient"`
	PctAffected        float64  `json:"pct_affected"`
	AvgAgeResilient    *float64 `json:"avg_age_resilient,omitempty"`
	AvgAgeAffected     *float64 `json:"avg_age_affected,omitempty"`
	AvgResilienceScore float64  `json:"avg_resilience_score"`
	ThresholdAge       float64  `json:"threshold_age"`
	RunID              string   `json:"run_id"`
}

// CompareCohorts restricts results to persons with current age at or
// above minAge, then counts and averages the three groups. A zero
// eligible population yields zero counts and percentages, never a
// division by zero.
func CompareCohorts(diseaseKey string, results []Result, minAge, thresholdAge float64, runID string) Comparison {
	comp := Comparison{
		DiseaseKey:   diseaseKey,
		MinAge:       minAge,
		ThresholdAge: thresholdAge,
		RunID:        runID,
	}

	var resilientAges, affectedAges, scores []float64
	for _, r := range results {
		if r.CurrentAge < minAge {
			continue
		}
		comp.TotalEligible++
		switch {
		case r.IsResilient:
			comp.NResilient++
			resilientAges = append(resilientAges, r.CurrentAge)
			scores = append(scores, r.ResilienceScore)
		case r.HasCondition:
			comp.NAffected++
			affectedAges = append(affectedAges, r.CurrentAge)
		default:
			comp.NTypical++
		}
	}

	if comp.TotalEligible > 0 {
		comp.PctResilient = float64(comp.NResilient) / float64(comp.TotalEligible) * 100
		comp.PctAffected = float64(comp.NAffected) / float64(comp.TotalEligible) * 100
	}
	if len(resilientAges) > 0 {
		avg := stat.Mean(resilientAges, nil)
		comp.AvgAgeResilient = &avg
		comp.AvgResilienceScore = stat.Mean(scores, nil)
	}
	if len(affectedAges) > 0 {
		avg := stat.Mean(affectedAges, nil)
		comp.AvgAgeAffected = &avg
	}
	return comp
}
