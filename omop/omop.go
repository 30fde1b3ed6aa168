// Package omop defines the subset of the OMOP Common Data Model the
// engine reads and writes: persons, condition occurrences, observation
// periods, deaths, and the concept tables used for descendant expansion.
package omop

import "time"

// DaysPerYear converts day spans to fractional years, matching the
// CDM convention of 365.25-day years.
const DaysPerYear = 365.25

// Standard vocabulary concept IDs used across the engine.
const (
	// Gender
	GenderMale   int64 = 8507
	GenderFemale int64 = 8532

	// Record provenance types
	ConditionTypeEHR int64 = 32817
	DeathTypeEHR     int64 = 32817
	PeriodTypeEHR    int64 = 44814724
)

// Race and ethnicity concept IDs sampled by the synthetic generator.
var (
	RaceConceptIDs      = []int64{8527, 8516, 8515, 8522}
	EthnicityConceptIDs = []int64{38003563, 38003564}
)

// Person is one row of the person table.
type Person struct {
	PersonID           int64      `json:"person_id"`
	GenderConceptID    int64      `json:"gender_concept_id"`
	YearOfBirth        int        `json:"year_of_birth"`
	MonthOfBirth       *int       `json:"month_of_birth,omitempty"`
	DayOfBirth         *int       `json:"day_of_birth,omitempty"`
	BirthDatetime      *time.Time `json:"birth_datetime,omitempty"`
	DeathDatetime      *time.Time `json:"death_datetime,omitempty"`
	RaceConceptID      int64      `json:"race_concept_id"`
	EthnicityConceptID int64      `json:"ethnicity_concept_id"`
	PersonSourceValue  string     `json:"person_source_value,omitempty"`
	GenderSourceValue  string     `json:"gender_source_value,omitempty"`
}

// BirthDate assembles a birth date from the year/month/day columns.
// Missing month defaults to July, missing day to the 1st, the usual
// imputation for de-identified CDM extracts.
func (p Person) BirthDate() time.Time {
	month := 7
	if p.MonthOfBirth != nil && *p.MonthOfBirth != 0 {
		month = *p.MonthOfBirth
	}
	day := 1
	if p.DayOfBirth != nil && *p.DayOfBirth != 0 {
		day = *p.DayOfBirth
	}
	return time.Date(p.YearOfBirth, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// AgeAt returns the person's age in fractional years at the given date.
func (p Person) AgeAt(at time.Time) float64 {
	return AgeBetween(p.BirthDate(), at)
}

// IsDeceased reports whether a death datetime is recorded.
func (p Person) IsDeceased() bool {
	return p.DeathDatetime != nil
}

// AgeBetween returns the span from birth to at in fractional years,
// truncating to whole days first.
func AgeBetween(birth, at time.Time) float64 {
	days := int(at.Sub(birth) / (24 * time.Hour))
	return float64(days) / DaysPerYear
}

// ConditionOccurrence is one row of the condition_occurrence table.
type ConditionOccurrence struct {
	ConditionOccurrenceID  int64      `json:"condition_occurrence_id"`
	PersonID               int64      `json:"person_id"`
	ConditionConceptID     int64      `json:"condition_concept_id"`
	ConditionStartDate     time.Time  `json:"condition_start_date"`
	ConditionStartDatetime *time.Time `json:"condition_start_datetime,omitempty"`
	ConditionTypeConceptID int64      `json:"condition_type_concept_id"`
}

// ObservationPeriod is one row of the observation_period table.
type ObservationPeriod struct {
	ObservationPeriodID int64     `json:"observation_period_id"`
	PersonID            int64     `json:"person_id"`
	StartDate           time.Time `json:"observation_period_start_date"`
	EndDate             time.Time `json:"observation_period_end_date"`
	PeriodTypeConceptID int64     `json:"period_type_concept_id"`
}

// Death is one row of the death table.
type Death struct {
	PersonID           int64      `json:"person_id"`
	DeathDate          time.Time  `json:"death_date"`
	DeathDatetime      *time.Time `json:"death_datetime,omitempty"`
	DeathTypeConceptID int64      `json:"death_type_concept_id"`
}

// Population bundles the rows of one generated dataset for persistence.
type Population struct {
	Persons            []Person
	ObservationPeriods []ObservationPeriod
	Conditions         []ConditionOccurrence
	Deaths             []Death
}

// Concept is the subset of the concept table the engine touches.
type Concept struct {
	ConceptID    int64  `json:"concept_id"`
	ConceptName  string `json:"concept_name"`
	VocabularyID string `json:"vocabulary_id"`
	ConceptCode  string `json:"concept_code"`
}

// ConceptAncestor is one row of the concept_ancestor table, used to
// expand a concept set to its descendants.
type ConceptAncestor struct {
	AncestorConceptID     int64 `json:"ancestor_concept_id"`
	DescendantConceptID   int64 `json:"descendant_concept_id"`
	MinLevelsOfSeparation int   `json:"min_levels_of_separation"`
	MaxLevelsOfSeparation int   `json:"max_levels_of_separation"`
}
