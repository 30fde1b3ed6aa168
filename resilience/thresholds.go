package resilience

import "github.com/cohortlab/resilient-aging/prevalence"

// Thresholds holds the population-level onset ages for one disease.
// The percentile fields are nil when nobody is affected; callers must
// treat nil as "threshold unreachable", not as zero.
type Thresholds struct {
	DiseaseKey     string   `json:"disease_key"`
	MedianOnsetAge *float64 `json:"median_onset_age,omitempty"`
	P75OnsetAge    *float64 `json:"percentile_75_onset_age,omitempty"`
	P90OnsetAge    *float64 `json:"percentile_90_onset_age,omitempty"`
	NTotal         int      `json:"n_total"`
	NAffected      int      `json:"n_affected"`
	Prevalence     float64  `json:"prevalence"`
}

// ComputeThresholds derives onset thresholds from one pass over the
// timelines. Percentiles are taken over affected persons only.
func ComputeThresholds(diseaseKey string, timelines []prevalence.Timeline) Thresholds {
	t := Thresholds{
		DiseaseKey: diseaseKey,
		NTotal:     len(timelines),
	}
	for _, tl := range timelines {
		if tl.HasCondition() {
			t.NAffected++
		}
	}
	if t.NTotal > 0 {
		t.Prevalence = float64(t.NAffected) / float64(t.NTotal)
	}

	t.MedianOnsetAge = prevalence.PercentileOnsetAge(timelines, 50)
	t.P75OnsetAge = prevalence.PercentileOnsetAge(timelines, 75)
	t.P90OnsetAge = prevalence.PercentileOnsetAge(timelines, 90)
	return t
}

// ResolveThreshold picks the threshold age for a run. The precomputed
// 50/75/90 percentiles are reused; any other percentile is recomputed
// from the raw onset distribution. When the percentile is unreachable
// because nobody is affected, the fallback sentinel applies.
func ResolveThreshold(t Thresholds, timelines []prevalence.Timeline, percentile float64) float64 {
	var age *float64
	switch percentile {
	case 50:
		age = t.MedianOnsetAge
	case 75:
		age = t.P75OnsetAge
	case 90:
		age = t.P90OnsetAge
	default:
		age = prevalence.PercentileOnsetAge(timelines, percentile)
	}

	if age == nil {
		return FallbackThresholdAge
	}
	return *age
}
