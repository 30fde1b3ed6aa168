package commands

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cohortlab/resilient-aging/concepts"
	"github.com/cohortlab/resilient-aging/db"
	ratest "github.com/cohortlab/resilient-aging/internal/testing"
	"github.com/cohortlab/resilient-aging/internal/util"
	"github.com/cohortlab/resilient-aging/resilience"
	"github.com/cohortlab/resilient-aging/store"
)

func TestFormatAge(t *testing.T) {
	assert.Equal(t, "N/A", formatAge(nil))
	assert.Equal(t, "67.5 years", formatAge(util.Ptr(67.5)))
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "-", formatCell(nil))
	assert.Equal(t, "63.2", formatCell(util.Ptr(63.25)))
}

// TestAnalyzeCommand_Integration drives the analyze pipeline end to end
// against a migrated database: persons and conditions in, thresholds,
// classifications, and the cohort comparison out.
func TestAnalyzeCommand_Integration(t *testing.T) {
	conn := ratest.CreateTestDB(t)

	// Six-person population. Missing birth month/day is imputed to July 1,
	// so a 2025-07-01 reference date lands everyone on a round age. Onsets
	// sit near 55, 75, and 70; person 3 is recorded under a descendant
	// concept to exercise hierarchy expansion.
	seed := []string{
		`INSERT INTO person (person_id, gender_concept_id, year_of_birth) VALUES
		 (1, 8507, 1945), (2, 8532, 1940), (3, 8507, 1950),
		 (4, 8532, 1945), (5, 8507, 1990), (6, 8532, 1960)`,
		`INSERT INTO condition_occurrence (condition_occurrence_id, person_id, condition_concept_id, condition_start_date, condition_type_concept_id) VALUES
		 (1, 1, 201826, '2000-07-01', 32817),
		 (2, 2, 443238, '2015-07-01', 32817),
		 (3, 3, 4230254, '2020-07-01', 32817)`,
		`INSERT INTO concept_ancestor (ancestor_concept_id, descendant_concept_id, min_levels_of_separation, max_levels_of_separation) VALUES
		 (201826, 4230254, 1, 1)`,
	}
	for _, q := range seed {
		_, err := conn.Exec(q)
		require.NoError(t, err)
	}

	st := store.New(conn, db.DriverSQLite, nil)
	analyzer := resilience.NewAnalyzer(st, concepts.DefaultRegistry(), nil)

	analysis, err := analyzer.AnalyzeDisease(context.Background(), "type2_diabetes", resilience.Options{
		ReferenceDate: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "Type 2 Diabetes Mellitus", analysis.DiseaseName)
	assert.NotEmpty(t, analysis.RunID)
	assert.Equal(t, 6, analysis.Thresholds.NTotal)
	assert.Equal(t, 3, analysis.Thresholds.NAffected, "descendant concept must count as affected")

	// Onsets near 55, 70, and 75 interpolate the 75th percentile to ~72.5
	assert.InDelta(t, 72.5, analysis.ThresholdAge, 0.05)
	require.NotNil(t, analysis.Thresholds.MedianOnsetAge)
	assert.InDelta(t, 70.0, *analysis.Thresholds.MedianOnsetAge, 0.05)

	byClass := make(map[string]int)
	for _, r := range analysis.Results {
		byClass[r.Classification]++
	}
	assert.Equal(t, 2, byClass[resilience.ClassAffected])
	assert.Equal(t, 1, byClass[resilience.ClassLateOnset], "onset at 75 clears the threshold")
	assert.Equal(t, 1, byClass[resilience.ClassResilientAger])
	assert.Equal(t, 1, byClass[resilience.ClassDiseaseFreeNotThreshold])
	assert.Equal(t, 1, byClass[resilience.ClassTooYoung])

	cmp := analysis.Comparison
	assert.Equal(t, 5, cmp.TotalEligible)
	assert.Equal(t, 1, cmp.NResilient)
	assert.Equal(t, 3, cmp.NAffected, "late onset still counts as affected in the cohort split")
	assert.Equal(t, 1, cmp.NTypical)

	// The resilient ager is the disease-free 80-year-old
	var resilient *resilience.Result
	for i := range analysis.Results {
		if analysis.Results[i].IsResilient {
			resilient = &analysis.Results[i]
		}
	}
	require.NotNil(t, resilient)
	assert.Equal(t, int64(4), resilient.PersonID)
	assert.InDelta(t, 7.5, resilient.ResilienceScore, 0.05)

	// Crude cumulative incidence keeps the full-population denominator
	require.NotEmpty(t, analysis.Curve)
	last := analysis.Curve[len(analysis.Curve)-1]
	assert.Equal(t, 100.0, last.Age)
	assert.InDelta(t, 0.5, last.CumulativeIncidence, 1e-9)
}
