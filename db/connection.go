package db

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/cohortlab/resilient-aging/config"
	"github.com/cohortlab/resilient-aging/errors"
)

// SQL driver names as registered with database/sql.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Postgres pool settings.
const (
	pgMaxOpenConns    = 25
	pgMaxIdleConns    = 5
	pgConnMaxLifetime = 5 * time.Minute
)

// Open opens the configured OMOP database and returns the handle together
// with the database/sql driver name in use.
// If logger is provided, logs database operations; otherwise operates silently.
func Open(cfg config.DatabaseConfig, logger *zap.SugaredLogger) (*sql.DB, string, error) {
	switch cfg.Type {
	case config.DriverPostgres:
		db, err := openPostgres(cfg, logger)
		return db, DriverPostgres, err
	case config.DriverSQLite, "":
		path := cfg.Path
		if path == "" {
			path = "resilient_aging.db"
		}
		db, err := openSQLite(path, logger)
		return db, DriverSQLite, err
	default:
		return nil, "", errors.Newf("unsupported database type %q", cfg.Type)
	}
}

// OpenWithMigrations opens the configured database and brings its schema
// up to date.
func OpenWithMigrations(cfg config.DatabaseConfig, logger *zap.SugaredLogger) (*sql.DB, string, error) {
	db, driver, err := Open(cfg, logger)
	if err != nil {
		return nil, "", err
	}
	if err := Migrate(db, driver, logger); err != nil {
		db.Close()
		return nil, "", errors.Wrap(err, "running migrations")
	}
	return db, driver, nil
}

// openSQLite opens a SQLite database at the specified path with optimized settings.
func openSQLite(path string, logger *zap.SugaredLogger) (*sql.DB, error) {
	if logger != nil {
		logger.Debugw("Opening database", "driver", DriverSQLite, "path", path)
	}
	db, err := sql.Open(DriverSQLite, path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	// Enable WAL mode for concurrent reads during writes
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to enable WAL mode")
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to enable foreign keys")
	}

	// Set busy timeout to 5 seconds
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to set busy timeout")
	}

	if logger != nil {
		logger.Infow("Database opened successfully",
			"path", path,
			"wal_mode", true,
			"foreign_keys", true,
		)
	}

	return db, nil
}

// openPostgres opens a PostgreSQL database via lib/pq with pool limits.
func openPostgres(cfg config.DatabaseConfig, logger *zap.SugaredLogger) (*sql.DB, error) {
	dsn := (&config.Config{Database: cfg}).DSN()

	if logger != nil {
		logger.Debugw("Opening database",
			"driver", DriverPostgres,
			"host", cfg.Host,
			"port", cfg.Port,
			"name", cfg.Name,
		)
	}

	db, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	db.SetMaxOpenConns(pgMaxOpenConns)
	db.SetMaxIdleConns(pgMaxIdleConns)
	db.SetConnMaxLifetime(pgConnMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to ping %s:%d/%s", cfg.Host, cfg.Port, cfg.Name)
	}

	if logger != nil {
		logger.Infow("Database opened successfully",
			"host", cfg.Host,
			"port", cfg.Port,
			"name", cfg.Name,
			"max_open_conns", pgMaxOpenConns,
		)
	}

	return db, nil
}
