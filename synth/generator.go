// Package synth generates synthetic OMOP populations for exercising
// the resilient aging pipeline. Ages follow a gamma distribution
// skewed toward older adults; disease onsets and deaths follow
// age-banded hazard tables. The same seed always yields the same
// population.
package synth

import (
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cohortlab/resilient-aging/concepts"
	"github.com/cohortlab/resilient-aging/errors"
	"github.com/cohortlab/resilient-aging/internal/util"
	"github.com/cohortlab/resilient-aging/omop"
)

// Generation defaults.
const (
	DefaultPatients  = 10000
	DefaultStartYear = 2010
	DefaultEndYear   = 2023
	DefaultSeed      = 42
)

// Age distribution: Gamma(shape 4, scale 12) shifted by 20 years and
// capped at 100, skewing the population toward older adults.
const (
	gammaShape = 4.0
	gammaScale = 12.0
	ageShift   = 20.0
	ageCap     = 100.0
)

// maxStartOffsetDays bounds the random delay of an observation period
// start past its earliest eligible date.
const maxStartOffsetDays = 365 * 3

// Config parameterizes one generation run.
type Config struct {
	NPatients int   `json:"n_patients"`
	StartYear int   `json:"start_year"`
	EndYear   int   `json:"end_year"`
	Seed      int64 `json:"seed"`
}

// DefaultConfig returns the standard 10k-patient 2010-2023 setup.
func DefaultConfig() Config {
	return Config{
		NPatients: DefaultPatients,
		StartYear: DefaultStartYear,
		EndYear:   DefaultEndYear,
		Seed:      DefaultSeed,
	}
}

// Validate rejects impossible parameter combinations.
func (c Config) Validate() error {
	if c.NPatients <= 0 {
		return errors.NewInvalidRequestError("n_patients must be positive, got %d", c.NPatients)
	}
	if c.StartYear > c.EndYear {
		return errors.NewInvalidRequestError("start_year %d is after end_year %d", c.StartYear, c.EndYear)
	}
	return nil
}

// ReferenceDate is the simulation end: December 31st of the end year.
func (c Config) ReferenceDate() time.Time {
	return time.Date(c.EndYear, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// Generator produces one synthetic population. Each generator owns its
// random state, so generators with different seeds can run concurrently
// without interfering.
type Generator struct {
	cfg           Config
	refDate       time.Time
	rng           *rand.Rand
	ageDist       distuv.Gamma
	firstConcepts map[string]int64
}

// NewGenerator validates the config and seeds the random state.
func NewGenerator(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry := concepts.DefaultRegistry()
	firstConcepts := make(map[string]int64, len(incidenceRates))
	for _, d := range incidenceRates {
		set, err := registry.Get(d.key)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving simulated disease %s", d.key)
		}
		firstConcepts[d.key] = set.ConceptIDs[0]
	}

	src := rand.NewSource(uint64(cfg.Seed))
	return &Generator{
		cfg:           cfg,
		refDate:       cfg.ReferenceDate(),
		rng:           rand.New(src),
		ageDist:       distuv.Gamma{Alpha: gammaShape, Beta: 1 / gammaScale, Src: src},
		firstConcepts: firstConcepts,
	}, nil
}

// ReferenceDate returns the simulation end date.
func (g *Generator) ReferenceDate() time.Time {
	return g.refDate
}

// Generate builds the full population: demographics, observation
// periods, condition onsets, then deaths. Deaths truncate observation
// windows after conditions were drawn, so onsets landing past a
// truncated window are pruned in a final pass rather than shipped.
func (g *Generator) Generate() *omop.Population {
	pop := &omop.Population{}
	g.generatePersons(pop)
	g.generateObservationPeriods(pop)
	g.generateConditions(pop)
	g.generateDeaths(pop)
	g.pruneTruncatedConditions(pop)
	return pop
}

func (g *Generator) generatePersons(pop *omop.Population) {
	ages := make([]float64, g.cfg.NPatients)
	for i := range ages {
		// Gamma draws are non-negative, so only the upper cap can bind
		age := g.ageDist.Rand() + ageShift
		if age > ageCap {
			age = ageCap
		}
		ages[i] = age
	}

	genders := []int64{omop.GenderMale, omop.GenderFemale}
	for i, age := range ages {
		birthYear := g.refDate.Year() - int(age)
		birthMonth := g.rng.Intn(12) + 1
		// Day capped at 28 keeps every month valid
		birthDay := g.rng.Intn(28) + 1
		birth := time.Date(birthYear, time.Month(birthMonth), birthDay, 0, 0, 0, 0, time.UTC)

		pop.Persons = append(pop.Persons, omop.Person{
			PersonID:           int64(i + 1),
			GenderConceptID:    genders[g.rng.Intn(len(genders))],
			YearOfBirth:        birthYear,
			MonthOfBirth:       util.Ptr(birthMonth),
			DayOfBirth:         util.Ptr(birthDay),
			BirthDatetime:      util.Ptr(birth),
			RaceConceptID:      omop.RaceConceptIDs[g.rng.Intn(len(omop.RaceConceptIDs))],
			EthnicityConceptID: omop.EthnicityConceptIDs[g.rng.Intn(len(omop.EthnicityConceptIDs))],
		})
	}
}

func (g *Generator) generateObservationPeriods(pop *omop.Population) {
	for _, p := range pop.Persons {
		birth := p.BirthDate()
		earliest := time.Date(g.cfg.StartYear, time.January, 1, 0, 0, 0, 0, time.UTC)
		if adult := birth.AddDate(18, 0, 0); adult.After(earliest) {
			earliest = adult
		}

		var start time.Time
		switch {
		case earliest.After(g.refDate):
			// Not yet adult within the window; observe from birth
			start = birth
		default:
			daysRange := int(g.refDate.Sub(earliest) / (24 * time.Hour))
			if daysRange > 365 {
				maxOffset := daysRange
				if maxOffset > maxStartOffsetDays {
					maxOffset = maxStartOffsetDays
				}
				start = earliest.AddDate(0, 0, g.rng.Intn(maxOffset+1))
			} else {
				start = earliest
			}
		}

		pop.ObservationPeriods = append(pop.ObservationPeriods, omop.ObservationPeriod{
			ObservationPeriodID: int64(len(pop.ObservationPeriods) + 1),
			PersonID:            p.PersonID,
			StartDate:           start,
			EndDate:             g.refDate,
			PeriodTypeConceptID: omop.PeriodTypeEHR,
		})
	}
}

func (g *Generator) generateConditions(pop *omop.Population) {
	var conditionID int64 = 1
	for i := range pop.Persons {
		p := &pop.Persons[i]
		period := &pop.ObservationPeriods[i]
		birth := p.BirthDate()

		for _, disease := range incidenceRates {
			conceptID := g.firstConcepts[disease.key]
			hasDisease := false

			// Step the window in fixed 365-day years; one uniform trial
			// per year against the age-appropriate annual probability
			for current := period.StartDate; !current.After(period.EndDate) && !hasDisease; current = current.AddDate(0, 0, 365) {
				age := omop.AgeBetween(birth, current)
				annual := rateForAge(disease.bands, age) / 1000
				if g.rng.Float64() >= annual {
					continue
				}

				onset := current.AddDate(0, 0, g.rng.Intn(365))
				if onset.After(period.EndDate) {
					continue
				}
				pop.Conditions = append(pop.Conditions, omop.ConditionOccurrence{
					ConditionOccurrenceID:  conditionID,
					PersonID:               p.PersonID,
					ConditionConceptID:     conceptID,
					ConditionStartDate:     onset,
					ConditionStartDatetime: util.Ptr(onset),
					ConditionTypeConceptID: omop.ConditionTypeEHR,
				})
				conditionID++
				hasDisease = true
			}
		}
	}
}

func (g *Generator) generateDeaths(pop *omop.Population) {
	for i := range pop.Persons {
		p := &pop.Persons[i]
		period := &pop.ObservationPeriods[i]
		birth := p.BirthDate()

		for current := period.StartDate; !current.After(period.EndDate); current = current.AddDate(0, 0, 365) {
			age := omop.AgeBetween(birth, current)
			annual := rateForAge(mortalityRates, age) / 1000
			if g.rng.Float64() >= annual {
				continue
			}

			death := current.AddDate(0, 0, g.rng.Intn(365))
			if death.After(period.EndDate) {
				continue
			}
			p.DeathDatetime = util.Ptr(death)
			pop.Deaths = append(pop.Deaths, omop.Death{
				PersonID:           p.PersonID,
				DeathDate:          death,
				DeathDatetime:      util.Ptr(death),
				DeathTypeConceptID: omop.DeathTypeEHR,
			})
			period.EndDate = death
			break
		}
	}
}

// pruneTruncatedConditions drops condition rows dated after their
// person's final observation window, which death simulation may have
// truncated below onsets already drawn.
func (g *Generator) pruneTruncatedConditions(pop *omop.Population) {
	ends := make(map[int64]time.Time, len(pop.ObservationPeriods))
	for _, op := range pop.ObservationPeriods {
		ends[op.PersonID] = op.EndDate
	}

	kept := pop.Conditions[:0]
	for _, c := range pop.Conditions {
		if end, ok := ends[c.PersonID]; ok && c.ConditionStartDate.After(end) {
			continue
		}
		kept = append(kept, c)
	}
	pop.Conditions = kept
}
