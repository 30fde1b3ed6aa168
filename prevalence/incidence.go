package prevalence

import "fmt"

// gridEpsilon absorbs float drift when stepping the age grid.
const gridEpsilon = 1e-9

// prevalenceMaxAge caps the age bands of PrevalenceByAge.
const prevalenceMaxAge = 100

// avgFollowupYears is the fixed average follow-up assumed by the crude
// incidence rate.
const avgFollowupYears = 5.0

// IncidencePoint is one grid point of a cumulative incidence curve.
type IncidencePoint struct {
	Age                 float64 `json:"age"`
	NAtRisk             int     `json:"n_at_risk"`
	NEvents             int     `json:"n_events"`
	NTotal              int     `json:"n_total"`
	CumulativeIncidence float64 `json:"cumulative_incidence"`
}

// DiseaseFreeSurvival is the complement of cumulative incidence.
func (p IncidencePoint) DiseaseFreeSurvival() float64 {
	return 1 - p.CumulativeIncidence
}

// CumulativeIncidence computes the proportion of the population
// diagnosed by each age on a grid from 0 to maxAge in ageStep
// increments. The denominator is the full population at every point,
// a deliberately crude estimator rather than Kaplan-Meier. An empty
// population yields an empty curve.
func CumulativeIncidence(timelines []Timeline, maxAge, ageStep float64) []IncidencePoint {
	if len(timelines) == 0 || ageStep <= 0 {
		return nil
	}

	n := len(timelines)
	var points []IncidencePoint
	for i := 0; ; i++ {
		age := float64(i) * ageStep
		if age > maxAge+gridEpsilon {
			break
		}

		var atRisk, events int
		for _, t := range timelines {
			diagnosed := t.AgeAtDiagnosis != nil
			if t.CurrentAge >= age || (diagnosed && *t.AgeAtDiagnosis >= age) {
				atRisk++
			}
			if diagnosed && *t.AgeAtDiagnosis <= age {
				events++
			}
		}

		points = append(points, IncidencePoint{
			Age:                 age,
			NAtRisk:             atRisk,
			NEvents:             events,
			NTotal:              n,
			CumulativeIncidence: float64(events) / float64(n),
		})
	}
	return points
}

// AgeAtIncidenceThreshold returns the first grid age whose cumulative
// incidence reaches the threshold, or nil when it never does.
func AgeAtIncidenceThreshold(curve []IncidencePoint, threshold float64) *float64 {
	for _, p := range curve {
		if p.CumulativeIncidence >= threshold {
			age := p.Age
			return &age
		}
	}
	return nil
}

// PrevalenceBin is one age band of a prevalence breakdown.
type PrevalenceBin struct {
	Label          string  `json:"age_bin"`
	NTotal         int     `json:"n_total"`
	NWithCondition int     `json:"n_with_condition"`
	Prevalence     float64 `json:"prevalence"`
}

// PrevalenceByAge groups the population into left-closed age bands of
// binSize years up to 100 and reports the affected share per band.
// Bands are labelled "lower-upper" with an inclusive upper bound, e.g.
// "60-64" for binSize 5. Empty bands stay in the output with zero
// prevalence; persons past the final band edge are excluded.
func PrevalenceByAge(timelines []Timeline, binSize int) []PrevalenceBin {
	if binSize <= 0 {
		return nil
	}

	var bins []PrevalenceBin
	for lower := 0; lower < prevalenceMaxAge; lower += binSize {
		upper := lower + binSize
		bin := PrevalenceBin{Label: fmt.Sprintf("%d-%d", lower, upper-1)}
		for _, t := range timelines {
			if t.CurrentAge < float64(lower) || t.CurrentAge >= float64(upper) {
				continue
			}
			bin.NTotal++
			if t.HasCondition() {
				bin.NWithCondition++
			}
		}
		if bin.NTotal > 0 {
			bin.Prevalence = float64(bin.NWithCondition) / float64(bin.NTotal)
		}
		bins = append(bins, bin)
	}
	return bins
}

// IncidenceRate returns a crude incidence rate per 1000 person-years
// over persons whose current age falls in [ageMin, ageMax], assuming
// a fixed five-year average follow-up.
func IncidenceRate(timelines []Timeline, ageMin, ageMax float64) float64 {
	var persons, cases int
	for _, t := range timelines {
		if t.CurrentAge < ageMin || t.CurrentAge > ageMax {
			continue
		}
		persons++
		if t.HasCondition() {
			cases++
		}
	}

	personYears := float64(persons) * avgFollowupYears
	if personYears == 0 {
		return 0
	}
	return float64(cases) / personYears * 1000
}
