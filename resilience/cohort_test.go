package resilience

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cohortlab/resilient-aging/errors"
	"github.com/cohortlab/resilient-aging/prevalence"
)

func classifiedFixture() []Result {
	timelines := []prevalence.Timeline{
		freeTimeline(1, 85),          // resilient
		freeTimeline(2, 78),          // resilient
		affectedTimeline(3, 80, 55),  // affected
		affectedTimeline(4, 90, 76),  // late onset, still "affected" cohort
		freeTimeline(5, 65),          // disease-free below threshold
		freeTimeline(6, 40),          // too young
	}
	return ClassifyPopulation(timelines, 70.0, 60.0)
}

func TestCohort(t *testing.T) {
	results := classifiedFixture()

	resilient, err := Cohort(results, CohortResilientAger)
	require.NoError(t, err)
	require.Len(t, resilient, 2)
	for _, r := range resilient {
		assert.True(t, r.IsResilient)
	}

	affected, err := Cohort(results, CohortAffected)
	require.NoError(t, err)
	require.Len(t, affected, 2)
	for _, r := range affected {
		assert.True(t, r.HasCondition)
	}

	typical, err := Cohort(results, CohortTypical)
	require.NoError(t, err)
	require.Len(t, typical, 2)
	for _, r := range typical {
		assert.False(t, r.IsResilient)
		assert.False(t, r.HasCondition)
	}
}

func TestCohort_UnknownKind(t *testing.T) {
	_, err := Cohort(classifiedFixture(), "super_ager")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestCompareCohorts(t *testing.T) {
	results := classifiedFixture()

	comp := CompareCohorts("type2_diabetes", results, 60.0, 70.0, "run-1")
	assert.Equal(t, "type2_diabetes", comp.DiseaseKey)
	assert.Equal(t, "run-1", comp.RunID)
	assert.Equal(t, 70.0, comp.ThresholdAge)

	// Person 6 (age 40) is not eligible
	assert.Equal(t, 5, comp.TotalEligible)
	assert.Equal(t, 2, comp.NResilient)
	assert.Equal(t, 2, comp.NAffected)
	assert.Equal(t, 1, comp.NTypical)
	assert.InDelta(t, 40.0, comp.PctResilient, 1e-9)
	assert.InDelta(t, 40.0, comp.PctAffected, 1e-9)

	require.NotNil(t, comp.AvgAgeResilient)
	assert.InDelta(t, 81.5, *comp.AvgAgeResilient, 1e-9)
	require.NotNil(t, comp.AvgAgeAffected)
	assert.InDelta(t, 85.0, *comp.AvgAgeAffected, 1e-9)

	// Scores: 85-70=15 and 78-70=8, mean 11.5
	assert.InDelta(t, 11.5, comp.AvgResilienceScore, 1e-9)
}

func TestCompareCohorts_NoEligible(t *testing.T) {
	results := ClassifyPopulation([]prevalence.Timeline{
		freeTimeline(1, 30),
		freeTimeline(2, 45),
	}, 70.0, 60.0)

	comp := CompareCohorts("stroke", results, 60.0, 70.0, "run-2")
	assert.Equal(t, 0, comp.TotalEligible)
	assert.Equal(t, 0, comp.NResilient)
	assert.Equal(t, 0.0, comp.PctResilient)
	assert.Equal(t, 0.0, comp.PctAffected)
	assert.Nil(t, comp.AvgAgeResilient)
	assert.Nil(t, comp.AvgAgeAffected)
	assert.Equal(t, 0.0, comp.AvgResilienceScore)
}

func TestCompareCohorts_EmptyResults(t *testing.T) {
	comp := CompareCohorts("stroke", nil, 60.0, 70.0, "run-3")
	assert.Equal(t, 0, comp.TotalEligible)
	assert.Equal(t, 0.0, comp.PctResilient)
}
