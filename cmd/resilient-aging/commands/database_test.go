package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cohortlab/resilient-aging/config"
)

func TestDescribeDatabase_SQLite(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{
		Type: config.DriverSQLite,
		Path: "./cohort_test.db",
	}}
	assert.Equal(t, "./cohort_test.db (sqlite)", describeDatabase(cfg))
}

func TestDescribeDatabase_SQLiteDefaultPath(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Type: config.DriverSQLite}}
	assert.Equal(t, "resilient_aging.db (sqlite)", describeDatabase(cfg))
}

// Postgres credentials never appear in display output.
func TestDescribeDatabase_Postgres(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{
		Type:     config.DriverPostgres,
		Host:     "omop.internal",
		Port:     5432,
		Name:     "cdm",
		User:     "analyst",
		Password: "hunter2",
	}}

	out := describeDatabase(cfg)
	assert.Equal(t, "omop.internal:5432/cdm (postgresql)", out)
	assert.NotContains(t, out, "hunter2")
}
