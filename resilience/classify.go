// Package resilience identifies resilient agers: individuals who stay
// free of a disease beyond the age by which most affected people have
// been diagnosed. It classifies every person against a population
// onset threshold, aggregates cohorts, and runs the full analysis per
// disease, sequentially or batched across many diseases.
package resilience

import "github.com/cohortlab/resilient-aging/prevalence"

// Classification labels. Every person receives exactly one.
const (
	ClassResilientAger           = "resilient_ager"
	ClassAffected                = "affected"
	ClassLateOnset               = "late_onset"
	ClassDiseaseFreeNotThreshold = "disease_free_not_threshold"
	ClassTooYoung                = "too_young"
)

const (
	// FallbackThresholdAge substitutes for the onset threshold when
	// nobody in the population is affected. It is a real threshold, not
	// a bypass: disease-free persons still need to out-age it.
	FallbackThresholdAge = 100.0

	// DefaultMinAge is the minimum age to be considered for resilience.
	DefaultMinAge = 60.0

	// DefaultPercentile is the onset percentile defining the threshold.
	DefaultPercentile = 75.0
)

// Result is one person's classification for one disease.
type Result struct {
	PersonID        int64    `json:"person_id"`
	CurrentAge      float64  `json:"current_age"`
	HasCondition    bool     `json:"has_condition"`
	AgeAtDiagnosis  *float64 `json:"age_at_diagnosis,omitempty"`
	IsResilient     bool     `json:"is_resilient"`
	ResilienceScore float64  `json:"resilience_score"`
	Classification  string   `json:"classification"`
}

// Classify assigns one of the five labels to a timeline. Affected
// persons can never be resilient for that disease; a diagnosis strictly
// past the threshold age counts as late onset and earns a score for the
// years gained. Disease-free persons become resilient agers once they
// pass both the threshold age and minAge.
func Classify(tl prevalence.Timeline, thresholdAge, minAge float64) Result {
	r := Result{
		PersonID:       tl.PersonID,
		CurrentAge:     tl.CurrentAge,
		HasCondition:   tl.HasCondition(),
		AgeAtDiagnosis: tl.AgeAtDiagnosis,
	}

	if r.HasCondition {
		if *tl.AgeAtDiagnosis > thresholdAge {
			r.Classification = ClassLateOnset
			r.ResilienceScore = *tl.AgeAtDiagnosis - thresholdAge
		} else {
			r.Classification = ClassAffected
		}
		return r
	}

	switch {
	case tl.CurrentAge >= thresholdAge && tl.CurrentAge >= minAge:
		r.Classification = ClassResilientAger
		r.IsResilient = true
		r.ResilienceScore = tl.CurrentAge - thresholdAge
	case tl.CurrentAge >= minAge:
		r.Classification = ClassDiseaseFreeNotThreshold
	default:
		r.Classification = ClassTooYoung
	}
	return r
}

// ClassifyPopulation classifies every timeline, producing exactly one
// result per person.
func ClassifyPopulation(timelines []prevalence.Timeline, thresholdAge, minAge float64) []Result {
	results := make([]Result, 0, len(timelines))
	for _, tl := range timelines {
		results = append(results, Classify(tl, thresholdAge, minAge))
	}
	return results
}
