package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cohortlab/resilient-aging/concepts"
	"github.com/cohortlab/resilient-aging/config"
	"github.com/cohortlab/resilient-aging/db"
	"github.com/cohortlab/resilient-aging/errors"
	"github.com/cohortlab/resilient-aging/logger"
	"github.com/cohortlab/resilient-aging/store"
)

// loadConfig resolves the engine configuration, honoring the persistent
// --config and --db overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}

	if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
		cfg.Database.Type = config.DriverSQLite
		cfg.Database.Path = dbPath
	}

	return cfg, nil
}

// openStore loads the configuration, then opens and migrates the OMOP
// database. Callers close via st.DB().Close().
func openStore(cmd *cobra.Command) (*store.Store, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	st, err := openStoreAt(cfg)
	if err != nil {
		return nil, nil, err
	}
	return st, cfg, nil
}

// openStoreAt opens and migrates the database named by an already
// resolved configuration.
func openStoreAt(cfg *config.Config) (*store.Store, error) {
	database, driver, err := db.OpenWithMigrations(cfg.Database, logger.Logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	return store.New(database, driver, logger.Logger), nil
}

// loadRegistry returns the disease concept registry with any --concepts
// overlay applied on top of the built-ins.
func loadRegistry(cmd *cobra.Command) (*concepts.Registry, error) {
	registry := concepts.DefaultRegistry()
	if overlay, _ := cmd.Flags().GetString("concepts"); overlay != "" {
		if err := registry.LoadOverlay(overlay); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// describeDatabase renders the configured database for display without
// credentials.
func describeDatabase(cfg *config.Config) string {
	if cfg.Database.Type == config.DriverPostgres {
		return fmt.Sprintf("%s:%d/%s (postgresql)", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	}
	return fmt.Sprintf("%s (sqlite)", cfg.DatabasePath())
}
