package omop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cohortlab/resilient-aging/internal/util"
)

func TestBirthDateFullColumns(t *testing.T) {
	p := Person{
		PersonID:     1,
		YearOfBirth:  1950,
		MonthOfBirth: util.Ptr(3),
		DayOfBirth:   util.Ptr(15),
	}

	assert.Equal(t, time.Date(1950, 3, 15, 0, 0, 0, 0, time.UTC), p.BirthDate())
}

func TestBirthDateImputesMissingMonthAndDay(t *testing.T) {
	p := Person{PersonID: 2, YearOfBirth: 1960}

	// Unknown month falls to July, unknown day to the 1st
	assert.Equal(t, time.Date(1960, 7, 1, 0, 0, 0, 0, time.UTC), p.BirthDate())

	p.MonthOfBirth = util.Ptr(0)
	p.DayOfBirth = util.Ptr(0)
	assert.Equal(t, time.Date(1960, 7, 1, 0, 0, 0, 0, time.UTC), p.BirthDate())
}

func TestAgeBetween(t *testing.T) {
	birth := time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)

	// 2020-01-01 is 70 years later: 70*365.25 days would land mid-day,
	// the truncated day count gives just under 70
	age := AgeBetween(birth, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.InDelta(t, 70.0, age, 0.05)

	// Same day is age zero
	assert.Equal(t, 0.0, AgeBetween(birth, birth))

	// One year exactly
	age = AgeBetween(birth, time.Date(1951, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.InDelta(t, 1.0, age, 0.01)
}

func TestAgeAtUsesImputedBirthDate(t *testing.T) {
	p := Person{PersonID: 3, YearOfBirth: 1940}

	// Born 1940-07-01 by imputation
	age := p.AgeAt(time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC))
	assert.InDelta(t, 80.0, age, 0.05)
}

func TestIsDeceased(t *testing.T) {
	alive := Person{PersonID: 4, YearOfBirth: 1970}
	assert.False(t, alive.IsDeceased())

	died := time.Date(2010, 5, 20, 0, 0, 0, 0, time.UTC)
	dead := Person{PersonID: 5, YearOfBirth: 1930, DeathDatetime: &died}
	assert.True(t, dead.IsDeceased())
}
