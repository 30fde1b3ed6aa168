// Package store provides SQL persistence and retrieval for the OMOP
// subset the engine works with. It is driver-agnostic across SQLite and
// PostgreSQL; queries are written with ? placeholders and rebound at
// execution time.
package store

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cohortlab/resilient-aging/db"
	"github.com/cohortlab/resilient-aging/errors"
	"github.com/cohortlab/resilient-aging/omop"
)

// Query constants
const (
	demographicsQuery = `
		SELECT person_id, gender_concept_id, year_of_birth, month_of_birth, day_of_birth,
		       birth_datetime, death_datetime, race_concept_id, ethnicity_concept_id,
		       person_source_value, gender_source_value
		FROM person
		ORDER BY person_id`

	onsetDatesQuery = `
		SELECT person_id, condition_start_date
		FROM condition_occurrence
		WHERE condition_concept_id IN (%s)`

	descendantsQuery = `
		SELECT DISTINCT descendant_concept_id
		FROM concept_ancestor
		WHERE ancestor_concept_id IN (%s)`

	insertPersonQuery = `
		INSERT INTO person (person_id, gender_concept_id, year_of_birth, month_of_birth, day_of_birth,
		                    birth_datetime, death_datetime, race_concept_id, ethnicity_concept_id,
		                    person_source_value, gender_source_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	insertObservationPeriodQuery = `
		INSERT INTO observation_period (observation_period_id, person_id,
		                                observation_period_start_date, observation_period_end_date,
		                                period_type_concept_id)
		VALUES (?, ?, ?, ?, ?)`

	insertConditionQuery = `
		INSERT INTO condition_occurrence (condition_occurrence_id, person_id, condition_concept_id,
		                                  condition_start_date, condition_start_datetime,
		                                  condition_type_concept_id)
		VALUES (?, ?, ?, ?, ?, ?)`

	insertDeathQuery = `
		INSERT INTO death (person_id, death_date, death_datetime, death_type_concept_id)
		VALUES (?, ?, ?, ?)`
)

// dataTables lists the OMOP data tables in reporting order.
var dataTables = []string{"person", "condition_occurrence", "observation_period", "death"}

// Counts reports rows written by PersistPopulation.
type Counts struct {
	Persons            int `json:"persons"`
	ObservationPeriods int `json:"observation_periods"`
	Conditions         int `json:"conditions"`
	Deaths             int `json:"deaths"`
}

// Store reads and writes the OMOP subset over database/sql.
type Store struct {
	db     *sql.DB
	driver string
	logger *zap.SugaredLogger
}

// New creates a store over an open database handle.
func New(database *sql.DB, driver string, logger *zap.SugaredLogger) *Store {
	return &Store{
		db:     database,
		driver: driver,
		logger: logger,
	}
}

// DB exposes the underlying handle for maintenance commands.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) rebind(query string) string {
	return db.Rebind(s.driver, query)
}

// Demographics returns every person row ordered by person_id.
func (s *Store) Demographics(ctx context.Context) ([]omop.Person, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(demographicsQuery))
	if err != nil {
		return nil, errors.Wrap(err, "querying demographics")
	}
	defer rows.Close()

	var persons []omop.Person
	for rows.Next() {
		var (
			p          omop.Person
			month, day sql.NullInt64
			race, eth  sql.NullInt64
			birth      sql.NullTime
			death      sql.NullTime
			psv, gsv   sql.NullString
		)
		if err := rows.Scan(&p.PersonID, &p.GenderConceptID, &p.YearOfBirth, &month, &day,
			&birth, &death, &race, &eth, &psv, &gsv); err != nil {
			return nil, errors.Wrap(err, "scanning person row")
		}
		if month.Valid {
			m := int(month.Int64)
			p.MonthOfBirth = &m
		}
		if day.Valid {
			d := int(day.Int64)
			p.DayOfBirth = &d
		}
		if birth.Valid {
			t := birth.Time
			p.BirthDatetime = &t
		}
		if death.Valid {
			t := death.Time
			p.DeathDatetime = &t
		}
		if race.Valid {
			p.RaceConceptID = race.Int64
		}
		if eth.Valid {
			p.EthnicityConceptID = eth.Int64
		}
		p.PersonSourceValue = psv.String
		p.GenderSourceValue = gsv.String
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating person rows")
	}

	if s.logger != nil {
		s.logger.Debugw("Loaded demographics", "count", len(persons))
	}
	return persons, nil
}

// FirstOnsets returns the earliest condition start date per person,
// restricted to the given concept IDs. Persons without a matching
// condition are absent from the map. The minimum is taken here rather
// than with SQL MIN so date values keep their declared column type on
// both drivers.
func (s *Store) FirstOnsets(ctx context.Context, conceptIDs []int64) (map[int64]time.Time, error) {
	onsets := make(map[int64]time.Time)
	if len(conceptIDs) == 0 {
		return onsets, nil
	}

	query := strings.Replace(onsetDatesQuery, "%s", placeholders(len(conceptIDs)), 1)
	rows, err := s.db.QueryContext(ctx, s.rebind(query), int64Args(conceptIDs)...)
	if err != nil {
		return nil, errors.Wrap(err, "querying condition onsets")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			personID int64
			onset    time.Time
		)
		if err := rows.Scan(&personID, &onset); err != nil {
			return nil, errors.Wrap(err, "scanning onset row")
		}
		if existing, ok := onsets[personID]; !ok || onset.Before(existing) {
			onsets[personID] = onset
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating onset rows")
	}

	if s.logger != nil {
		s.logger.Debugw("Loaded first onsets",
			"concepts", len(conceptIDs),
			"persons_with_onset", len(onsets),
		)
	}
	return onsets, nil
}

// ExpandConceptIDs returns the union of the given concept IDs and all
// their descendants from concept_ancestor, sorted and deduplicated.
func (s *Store) ExpandConceptIDs(ctx context.Context, conceptIDs []int64) ([]int64, error) {
	if len(conceptIDs) == 0 {
		return nil, nil
	}

	all := make(map[int64]struct{}, len(conceptIDs))
	for _, id := range conceptIDs {
		all[id] = struct{}{}
	}

	query := strings.Replace(descendantsQuery, "%s", placeholders(len(conceptIDs)), 1)
	rows, err := s.db.QueryContext(ctx, s.rebind(query), int64Args(conceptIDs)...)
	if err != nil {
		return nil, errors.Wrap(err, "querying concept descendants")
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scanning descendant row")
		}
		all[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating descendant rows")
	}

	expanded := make([]int64, 0, len(all))
	for id := range all {
		expanded = append(expanded, id)
	}
	sort.Slice(expanded, func(i, j int) bool { return expanded[i] < expanded[j] })

	if s.logger != nil {
		s.logger.Debugw("Expanded concept set",
			"seed_concepts", len(conceptIDs),
			"total_concepts", len(expanded),
		)
	}
	return expanded, nil
}

// PersistPopulation writes a generated population in a single transaction
// and returns per-table row counts.
func (s *Store) PersistPopulation(ctx context.Context, pop *omop.Population) (Counts, error) {
	var counts Counts
	if pop == nil || len(pop.Persons) == 0 {
		return counts, errors.Wrap(errors.ErrEmptyPopulation, "persisting population")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return counts, errors.Wrap(err, "beginning persist transaction")
	}
	defer tx.Rollback()

	personStmt, err := tx.PrepareContext(ctx, s.rebind(insertPersonQuery))
	if err != nil {
		return counts, errors.Wrap(err, "preparing person insert")
	}
	defer personStmt.Close()
	for _, p := range pop.Persons {
		if _, err := personStmt.ExecContext(ctx,
			p.PersonID, p.GenderConceptID, p.YearOfBirth,
			nullableInt(p.MonthOfBirth), nullableInt(p.DayOfBirth),
			nullableTime(p.BirthDatetime), nullableTime(p.DeathDatetime),
			p.RaceConceptID, p.EthnicityConceptID,
			p.PersonSourceValue, p.GenderSourceValue,
		); err != nil {
			return counts, errors.Wrapf(err, "inserting person %d", p.PersonID)
		}
		counts.Persons++
	}

	periodStmt, err := tx.PrepareContext(ctx, s.rebind(insertObservationPeriodQuery))
	if err != nil {
		return counts, errors.Wrap(err, "preparing observation period insert")
	}
	defer periodStmt.Close()
	for _, op := range pop.ObservationPeriods {
		if _, err := periodStmt.ExecContext(ctx,
			op.ObservationPeriodID, op.PersonID, op.StartDate, op.EndDate, op.PeriodTypeConceptID,
		); err != nil {
			return counts, errors.Wrapf(err, "inserting observation period %d", op.ObservationPeriodID)
		}
		counts.ObservationPeriods++
	}

	condStmt, err := tx.PrepareContext(ctx, s.rebind(insertConditionQuery))
	if err != nil {
		return counts, errors.Wrap(err, "preparing condition insert")
	}
	defer condStmt.Close()
	for _, c := range pop.Conditions {
		if _, err := condStmt.ExecContext(ctx,
			c.ConditionOccurrenceID, c.PersonID, c.ConditionConceptID,
			c.ConditionStartDate, nullableTime(c.ConditionStartDatetime), c.ConditionTypeConceptID,
		); err != nil {
			return counts, errors.Wrapf(err, "inserting condition %d", c.ConditionOccurrenceID)
		}
		counts.Conditions++
	}

	deathStmt, err := tx.PrepareContext(ctx, s.rebind(insertDeathQuery))
	if err != nil {
		return counts, errors.Wrap(err, "preparing death insert")
	}
	defer deathStmt.Close()
	for _, d := range pop.Deaths {
		if _, err := deathStmt.ExecContext(ctx,
			d.PersonID, d.DeathDate, nullableTime(d.DeathDatetime), d.DeathTypeConceptID,
		); err != nil {
			return counts, errors.Wrapf(err, "inserting death for person %d", d.PersonID)
		}
		counts.Deaths++
	}

	if err := tx.Commit(); err != nil {
		return counts, errors.Wrap(err, "committing persist transaction")
	}

	if s.logger != nil {
		s.logger.Infow("Persisted population",
			"persons", counts.Persons,
			"observation_periods", counts.ObservationPeriods,
			"conditions", counts.Conditions,
			"deaths", counts.Deaths,
		)
	}
	return counts, nil
}

// TableCounts returns row counts of the OMOP data tables.
func (s *Store) TableCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(dataTables))
	for _, table := range dataTables {
		var n int64
		// Table names come from the fixed list above, never from input
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, errors.Wrapf(err, "counting %s", table)
		}
		counts[table] = n
	}
	return counts, nil
}

// Tables returns the data table names in reporting order.
func Tables() []string {
	out := make([]string, len(dataTables))
	copy(out, dataTables)
	return out
}

// placeholders renders n comma-separated ? marks for an IN clause.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableTime(v *time.Time) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
