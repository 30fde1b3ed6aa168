package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/cohortlab/resilient-aging/db"
	"github.com/cohortlab/resilient-aging/errors"
	ratest "github.com/cohortlab/resilient-aging/internal/testing"
	"github.com/cohortlab/resilient-aging/internal/util"
	"github.com/cohortlab/resilient-aging/omop"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// testPopulation builds a small two-person population with one
// condition, one observation period each, and one death.
func testPopulation() *omop.Population {
	death := date(2020, time.March, 15)
	return &omop.Population{
		Persons: []omop.Person{
			{
				PersonID:           1,
				GenderConceptID:    omop.GenderFemale,
				YearOfBirth:        1950,
				MonthOfBirth:       util.Ptr(4),
				DayOfBirth:         util.Ptr(12),
				BirthDatetime:      util.Ptr(date(1950, time.April, 12)),
				RaceConceptID:      8527,
				EthnicityConceptID: 38003564,
				PersonSourceValue:  "SYN-1",
				GenderSourceValue:  "F",
			},
			{
				PersonID:           2,
				GenderConceptID:    omop.GenderMale,
				YearOfBirth:        1945,
				MonthOfBirth:       util.Ptr(9),
				DayOfBirth:         util.Ptr(3),
				BirthDatetime:      util.Ptr(date(1945, time.September, 3)),
				DeathDatetime:      &death,
				RaceConceptID:      8516,
				EthnicityConceptID: 38003563,
				PersonSourceValue:  "SYN-2",
				GenderSourceValue:  "M",
			},
		},
		ObservationPeriods: []omop.ObservationPeriod{
			{ObservationPeriodID: 1, PersonID: 1, StartDate: date(2010, time.January, 1), EndDate: date(2023, time.December, 31), PeriodTypeConceptID: omop.PeriodTypeEHR},
			{ObservationPeriodID: 2, PersonID: 2, StartDate: date(2010, time.January, 1), EndDate: death, PeriodTypeConceptID: omop.PeriodTypeEHR},
		},
		Conditions: []omop.ConditionOccurrence{
			{ConditionOccurrenceID: 1, PersonID: 2, ConditionConceptID: 201826, ConditionStartDate: date(2015, time.June, 1), ConditionTypeConceptID: omop.ConditionTypeEHR},
		},
		Deaths: []omop.Death{
			{PersonID: 2, DeathDate: death, DeathDatetime: &death, DeathTypeConceptID: omop.DeathTypeEHR},
		},
	}
}

// TestPersistPopulation_RoundTrip tests that a persisted population
// reads back intact through Demographics and TableCounts.
func TestPersistPopulation_RoundTrip(t *testing.T) {
	conn := ratest.CreateTestDB(t)
	s := New(conn, db.DriverSQLite, nil)
	ctx := context.Background()

	counts, err := s.PersistPopulation(ctx, testPopulation())
	if err != nil {
		t.Fatalf("PersistPopulation() error: %v", err)
	}
	want := Counts{Persons: 2, ObservationPeriods: 2, Conditions: 1, Deaths: 1}
	if counts != want {
		t.Errorf("PersistPopulation() counts = %+v, want %+v", counts, want)
	}

	persons, err := s.Demographics(ctx)
	if err != nil {
		t.Fatalf("Demographics() error: %v", err)
	}
	if len(persons) != 2 {
		t.Fatalf("Demographics() returned %d persons, want 2", len(persons))
	}
	if persons[0].PersonID != 1 || persons[1].PersonID != 2 {
		t.Errorf("Demographics() not ordered by person_id: %d, %d", persons[0].PersonID, persons[1].PersonID)
	}
	if persons[0].MonthOfBirth == nil || *persons[0].MonthOfBirth != 4 {
		t.Errorf("person 1 month_of_birth = %v, want 4", persons[0].MonthOfBirth)
	}
	if persons[0].DeathDatetime != nil {
		t.Errorf("person 1 death_datetime = %v, want nil", persons[0].DeathDatetime)
	}
	if persons[1].DeathDatetime == nil {
		t.Fatal("person 2 death_datetime = nil, want recorded death")
	}
	if !persons[1].DeathDatetime.Equal(date(2020, time.March, 15)) {
		t.Errorf("person 2 death_datetime = %v, want 2020-03-15", persons[1].DeathDatetime)
	}

	tableCounts, err := s.TableCounts(ctx)
	if err != nil {
		t.Fatalf("TableCounts() error: %v", err)
	}
	if tableCounts["person"] != 2 || tableCounts["condition_occurrence"] != 1 ||
		tableCounts["observation_period"] != 2 || tableCounts["death"] != 1 {
		t.Errorf("TableCounts() = %v", tableCounts)
	}
}

// TestPersistPopulation_Empty tests that empty populations are rejected.
func TestPersistPopulation_Empty(t *testing.T) {
	conn := ratest.CreateTestDB(t)
	s := New(conn, db.DriverSQLite, nil)

	_, err := s.PersistPopulation(context.Background(), &omop.Population{})
	if !errors.Is(err, errors.ErrEmptyPopulation) {
		t.Errorf("PersistPopulation(empty) error = %v, want ErrEmptyPopulation", err)
	}

	_, err = s.PersistPopulation(context.Background(), nil)
	if !errors.Is(err, errors.ErrEmptyPopulation) {
		t.Errorf("PersistPopulation(nil) error = %v, want ErrEmptyPopulation", err)
	}
}

// TestPersistPopulation_Rollback tests that a failed insert leaves no
// partial rows behind.
func TestPersistPopulation_Rollback(t *testing.T) {
	conn := ratest.CreateTestDB(t)
	s := New(conn, db.DriverSQLite, nil)
	ctx := context.Background()

	pop := testPopulation()
	// Condition for a person that does not exist violates the FK
	pop.Conditions = append(pop.Conditions, omop.ConditionOccurrence{
		ConditionOccurrenceID: 99, PersonID: 999, ConditionConceptID: 201826,
		ConditionStartDate: date(2015, time.June, 1), ConditionTypeConceptID: omop.ConditionTypeEHR,
	})

	if _, err := s.PersistPopulation(ctx, pop); err == nil {
		t.Fatal("PersistPopulation() expected FK violation, got nil error")
	}

	tableCounts, err := s.TableCounts(ctx)
	if err != nil {
		t.Fatalf("TableCounts() error: %v", err)
	}
	for table, n := range tableCounts {
		if n != 0 {
			t.Errorf("table %s has %d rows after rollback, want 0", table, n)
		}
	}
}

// TestDemographics_Empty tests reading from an empty database.
func TestDemographics_Empty(t *testing.T) {
	conn := ratest.CreateTestDB(t)
	s := New(conn, db.DriverSQLite, nil)

	persons, err := s.Demographics(context.Background())
	if err != nil {
		t.Fatalf("Demographics() error: %v", err)
	}
	if len(persons) != 0 {
		t.Errorf("Demographics() returned %d persons, want 0", len(persons))
	}
}

// TestDemographics_NullableColumns tests that NULL month, day, and
// death columns come back as nil pointers.
func TestDemographics_NullableColumns(t *testing.T) {
	conn := ratest.CreateTestDB(t)
	s := New(conn, db.DriverSQLite, nil)

	_, err := conn.Exec(`INSERT INTO person (person_id, gender_concept_id, year_of_birth) VALUES (7, 8507, 1960)`)
	if err != nil {
		t.Fatalf("seeding person: %v", err)
	}

	persons, err := s.Demographics(context.Background())
	if err != nil {
		t.Fatalf("Demographics() error: %v", err)
	}
	if len(persons) != 1 {
		t.Fatalf("Demographics() returned %d persons, want 1", len(persons))
	}
	p := persons[0]
	if p.MonthOfBirth != nil || p.DayOfBirth != nil || p.DeathDatetime != nil {
		t.Errorf("nullable columns not nil: month=%v day=%v death=%v", p.MonthOfBirth, p.DayOfBirth, p.DeathDatetime)
	}
	// Imputation picks mid-year for the missing month
	birth := p.BirthDate()
	if birth.Month() != time.July || birth.Day() != 1 {
		t.Errorf("BirthDate() = %v, want 1960-07-01", birth)
	}
}

// TestFirstOnsets tests earliest-onset selection per person.
func TestFirstOnsets(t *testing.T) {
	conn := ratest.CreateTestDB(t)
	s := New(conn, db.DriverSQLite, nil)
	ctx := context.Background()

	seed := []string{
		`INSERT INTO person (person_id, gender_concept_id, year_of_birth) VALUES (1, 8507, 1950)`,
		`INSERT INTO person (person_id, gender_concept_id, year_of_birth) VALUES (2, 8532, 1955)`,
		`INSERT INTO person (person_id, gender_concept_id, year_of_birth) VALUES (3, 8507, 1960)`,
		// Person 1: two matching conditions, the earlier one wins
		`INSERT INTO condition_occurrence (condition_occurrence_id, person_id, condition_concept_id, condition_start_date, condition_type_concept_id)
		 VALUES (1, 1, 201826, '2018-02-10', 32817)`,
		`INSERT INTO condition_occurrence (condition_occurrence_id, person_id, condition_concept_id, condition_start_date, condition_type_concept_id)
		 VALUES (2, 1, 443238, '2012-07-04', 32817)`,
		// Person 2: condition outside the concept set
		`INSERT INTO condition_occurrence (condition_occurrence_id, person_id, condition_concept_id, condition_start_date, condition_type_concept_id)
		 VALUES (3, 2, 316866, '2015-01-01', 32817)`,
	}
	for _, q := range seed {
		if _, err := conn.Exec(q); err != nil {
			t.Fatalf("seeding: %v", err)
		}
	}

	onsets, err := s.FirstOnsets(ctx, []int64{201826, 443238, 4193704})
	if err != nil {
		t.Fatalf("FirstOnsets() error: %v", err)
	}
	if len(onsets) != 1 {
		t.Fatalf("FirstOnsets() returned %d persons, want 1", len(onsets))
	}
	onset, ok := onsets[1]
	if !ok {
		t.Fatal("person 1 missing from onsets")
	}
	if !onset.Equal(date(2012, time.July, 4)) {
		t.Errorf("person 1 onset = %v, want 2012-07-04", onset)
	}

	// Empty concept set short-circuits without touching the database
	empty, err := s.FirstOnsets(ctx, nil)
	if err != nil {
		t.Fatalf("FirstOnsets(nil) error: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("FirstOnsets(nil) returned %d entries, want 0", len(empty))
	}
}

// TestExpandConceptIDs tests descendant expansion through concept_ancestor.
func TestExpandConceptIDs(t *testing.T) {
	conn := ratest.CreateTestDB(t)
	s := New(conn, db.DriverSQLite, nil)
	ctx := context.Background()

	seed := []string{
		`INSERT INTO concept_ancestor (ancestor_concept_id, descendant_concept_id, min_levels_of_separation, max_levels_of_separation)
		 VALUES (201826, 201826, 0, 0)`,
		`INSERT INTO concept_ancestor (ancestor_concept_id, descendant_concept_id, min_levels_of_separation, max_levels_of_separation)
		 VALUES (201826, 4230254, 1, 1)`,
		`INSERT INTO concept_ancestor (ancestor_concept_id, descendant_concept_id, min_levels_of_separation, max_levels_of_separation)
		 VALUES (201826, 40482801, 1, 2)`,
		`INSERT INTO concept_ancestor (ancestor_concept_id, descendant_concept_id, min_levels_of_separation, max_levels_of_separation)
		 VALUES (443238, 4230254, 1, 1)`,
	}
	for _, q := range seed {
		if _, err := conn.Exec(q); err != nil {
			t.Fatalf("seeding: %v", err)
		}
	}

	expanded, err := s.ExpandConceptIDs(ctx, []int64{201826, 443238})
	if err != nil {
		t.Fatalf("ExpandConceptIDs() error: %v", err)
	}
	// Seeds plus descendants, deduplicated and sorted
	want := []int64{201826, 443238, 4230254, 40482801}
	if len(expanded) != len(want) {
		t.Fatalf("ExpandConceptIDs() = %v, want %v", expanded, want)
	}
	for i := range want {
		if expanded[i] != want[i] {
			t.Errorf("ExpandConceptIDs()[%d] = %d, want %d", i, expanded[i], want[i])
		}
	}

	// Concepts absent from concept_ancestor still pass through
	passthrough, err := s.ExpandConceptIDs(ctx, []int64{999999})
	if err != nil {
		t.Fatalf("ExpandConceptIDs() error: %v", err)
	}
	if len(passthrough) != 1 || passthrough[0] != 999999 {
		t.Errorf("ExpandConceptIDs(unknown) = %v, want [999999]", passthrough)
	}

	none, err := s.ExpandConceptIDs(ctx, nil)
	if err != nil {
		t.Fatalf("ExpandConceptIDs(nil) error: %v", err)
	}
	if none != nil {
		t.Errorf("ExpandConceptIDs(nil) = %v, want nil", none)
	}
}

// TestDemographics_QueryError tests error wrapping when the query fails.
func TestDemographics_QueryError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer mockDB.Close()

	mock.ExpectQuery("SELECT person_id, gender_concept_id").
		WillReturnError(errors.New("connection reset"))

	s := New(mockDB, db.DriverSQLite, nil)
	_, err = s.Demographics(context.Background())
	if err == nil {
		t.Fatal("Demographics() expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// TestPersistPopulation_BeginError tests error wrapping when the
// transaction cannot start.
func TestPersistPopulation_BeginError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer mockDB.Close()

	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

	s := New(mockDB, db.DriverSQLite, nil)
	_, err = s.PersistPopulation(context.Background(), testPopulation())
	if err == nil {
		t.Fatal("PersistPopulation() expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// TestPlaceholders tests IN-clause placeholder rendering.
func TestPlaceholders(t *testing.T) {
	cases := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "?"},
		{3, "?, ?, ?"},
	}
	for _, tc := range cases {
		if got := placeholders(tc.n); got != tc.want {
			t.Errorf("placeholders(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}
