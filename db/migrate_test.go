package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenWithMigrations(t *testing.T) {
	t.Run("successfully opens database and runs migrations", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "test.db")

		db, driver, err := OpenWithMigrations(sqliteConfig(dbPath), nil)
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		assert.Equal(t, DriverSQLite, driver)

		// Verify schema_migrations table exists (created by migrations)
		var exists int
		err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_migrations'").Scan(&exists)
		require.NoError(t, err)
		assert.Equal(t, 1, exists, "schema_migrations table should exist after migrations")

		// Verify the OMOP tables exist
		for _, table := range []string{"person", "condition_occurrence", "observation_period", "death", "concept", "concept_ancestor"} {
			var n int
			err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&n)
			require.NoError(t, err)
			assert.Equal(t, 1, n, "table %s should exist", table)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "test.db")

		db, driver, err := OpenWithMigrations(sqliteConfig(dbPath), nil)
		require.NoError(t, err)
		db.Close()

		// Re-opening the same file must skip already-applied migrations
		db, driver, err = OpenWithMigrations(sqliteConfig(dbPath), nil)
		require.NoError(t, err)
		defer db.Close()
		assert.Equal(t, DriverSQLite, driver)

		// Each migration recorded exactly once
		var versions int
		err = db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions)
		require.NoError(t, err)
		assert.Equal(t, 2, versions)
	})

	t.Run("accepts inserts into migrated schema", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "test.db")

		db, _, err := OpenWithMigrations(sqliteConfig(dbPath), nil)
		require.NoError(t, err)
		defer db.Close()

		_, err = db.Exec(
			"INSERT INTO person (person_id, gender_concept_id, year_of_birth) VALUES (?, ?, ?)",
			1, 8507, 1950,
		)
		require.NoError(t, err)

		_, err = db.Exec(
			"INSERT INTO condition_occurrence (condition_occurrence_id, person_id, condition_concept_id, condition_start_date, condition_type_concept_id) VALUES (?, ?, ?, ?, ?)",
			1, 1, 201826, "2015-06-01", 32817,
		)
		require.NoError(t, err)

		// Foreign keys are on: a condition for an absent person must fail
		_, err = db.Exec(
			"INSERT INTO condition_occurrence (condition_occurrence_id, person_id, condition_concept_id, condition_start_date, condition_type_concept_id) VALUES (?, ?, ?, ?, ?)",
			2, 999, 201826, "2015-06-01", 32817,
		)
		assert.Error(t, err)
	})
}
