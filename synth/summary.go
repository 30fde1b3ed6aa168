package synth

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cohortlab/resilient-aging/omop"
)

// Summary describes a generated population at its reference date.
type Summary struct {
	NPatients   int     `json:"n_patients"`
	NConditions int     `json:"n_conditions"`
	NDeaths     int     `json:"n_deaths"`
	AgeMean     float64 `json:"age_mean"`
	AgeStd      float64 `json:"age_std"`
	AgeMin      float64 `json:"age_min"`
	AgeMax      float64 `json:"age_max"`
	MalePct     float64 `json:"male_pct"`
}

// Summarize computes population statistics at the reference date. The
// standard deviation is the population form, not the sample form.
func Summarize(pop *omop.Population, refDate time.Time) Summary {
	s := Summary{
		NPatients:   len(pop.Persons),
		NConditions: len(pop.Conditions),
		NDeaths:     len(pop.Deaths),
	}
	if len(pop.Persons) == 0 {
		return s
	}

	ages := make([]float64, 0, len(pop.Persons))
	males := 0
	for _, p := range pop.Persons {
		birth := p.BirthDate()
		if p.BirthDatetime != nil {
			birth = *p.BirthDatetime
		}
		ages = append(ages, omop.AgeBetween(birth, refDate))
		if p.GenderConceptID == omop.GenderMale {
			males++
		}
	}

	s.AgeMean = stat.Mean(ages, nil)
	s.AgeStd = stat.PopStdDev(ages, nil)
	s.AgeMin = floats.Min(ages)
	s.AgeMax = floats.Max(ages)
	s.MalePct = float64(males) / float64(len(pop.Persons)) * 100
	return s
}
