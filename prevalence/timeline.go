// Package prevalence builds per-person age timelines and computes
// age-specific disease measures over them: cumulative incidence curves,
// prevalence by age band, percentile onset ages, and crude incidence
// rates.
package prevalence

import (
	"context"
	"time"

	"github.com/cohortlab/resilient-aging/errors"
	"github.com/cohortlab/resilient-aging/omop"
)

// EventSource supplies the demographics and condition onsets a timeline
// is built from. *store.Store satisfies it.
type EventSource interface {
	Demographics(ctx context.Context) ([]omop.Person, error)
	FirstOnsets(ctx context.Context, conceptIDs []int64) (map[int64]time.Time, error)
}

// Timeline is one person's age history relative to a reference date.
// AgeAtDiagnosis is nil for persons who never had the condition.
type Timeline struct {
	PersonID       int64
	BirthDate      time.Time
	CurrentAge     float64
	AgeAtDiagnosis *float64
	DiagnosisDate  *time.Time
	Deceased       bool
}

// HasCondition reports whether a first diagnosis is recorded.
func (t Timeline) HasCondition() bool {
	return t.AgeAtDiagnosis != nil
}

// BuildTimelines produces one Timeline per person. Persons without a
// matching condition keep a nil AgeAtDiagnosis, so the result covers
// the whole population, affected or not.
func BuildTimelines(ctx context.Context, src EventSource, conceptIDs []int64, refDate time.Time) ([]Timeline, error) {
	persons, err := src.Demographics(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading demographics")
	}
	onsets, err := src.FirstOnsets(ctx, conceptIDs)
	if err != nil {
		return nil, errors.Wrap(err, "loading first onsets")
	}

	timelines := make([]Timeline, 0, len(persons))
	for _, p := range persons {
		birth := p.BirthDate()
		tl := Timeline{
			PersonID:   p.PersonID,
			BirthDate:  birth,
			CurrentAge: omop.AgeBetween(birth, refDate),
			Deceased:   p.IsDeceased(),
		}
		if onset, ok := onsets[p.PersonID]; ok {
			age := omop.AgeBetween(birth, onset)
			tl.AgeAtDiagnosis = &age
			d := onset
			tl.DiagnosisDate = &d
		}
		timelines = append(timelines, tl)
	}
	return timelines, nil
}
