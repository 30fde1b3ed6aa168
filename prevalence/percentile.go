package prevalence

import "sort"

// Percentile computes the given percentile (0-100) of values with
// linear interpolation between closest ranks. Returns 0 for an empty
// slice.
func Percentile(values []float64, percentile float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	index := (percentile / 100.0) * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if lower < 0 {
		return sorted[0]
	}
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	fraction := index - float64(lower)
	return sorted[lower] + fraction*(sorted[upper]-sorted[lower])
}

// PercentileOnsetAge returns the onset age at the given percentile of
// affected persons, or nil when nobody in the population is affected.
func PercentileOnsetAge(timelines []Timeline, percentile float64) *float64 {
	var ages []float64
	for _, t := range timelines {
		if t.AgeAtDiagnosis != nil {
			ages = append(ages, *t.AgeAtDiagnosis)
		}
	}
	if len(ages) == 0 {
		return nil
	}

	age := Percentile(ages, percentile)
	return &age
}
