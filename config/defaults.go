package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.type", DriverSQLite)
	v.SetDefault("database.path", "resilient_aging.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "resilient_aging")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")

	// Logging defaults
	v.SetDefault("logging.json", false)

	// Analysis defaults
	v.SetDefault("analysis.min_age", 60.0)    // eligibility age for cohort comparison
	v.SetDefault("analysis.percentile", 75.0) // onset percentile for the resilience threshold
	v.SetDefault("analysis.max_age", 100.0)   // top of the incidence age grid
	v.SetDefault("analysis.age_step", 1.0)
	v.SetDefault("analysis.workers", 4) // concurrent diseases in batch runs

	// Synthetic generator defaults
	v.SetDefault("synthetic.patients", 10000)
	v.SetDefault("synthetic.start_year", 2010)
	v.SetDefault("synthetic.end_year", 2023)
	v.SetDefault("synthetic.seed", 42)
}

// BindSensitiveEnvVars explicitly binds sensitive configuration to environment variables
func BindSensitiveEnvVars(v *viper.Viper) {
	// Database credentials
	v.BindEnv("database.user", "RESAGE_DATABASE_USER")
	v.BindEnv("database.password", "RESAGE_DATABASE_PASSWORD")

	// Database path
	v.BindEnv("database.path", "RESAGE_DATABASE_PATH")
}
