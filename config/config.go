// Package config loads engine configuration from YAML files, environment
// variables and defaults, in that precedence order (highest wins: env).
package config

import (
	"fmt"
)

// Database driver names accepted in database.type.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgresql"
)

// Config represents the engine configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Synthetic SyntheticConfig `mapstructure:"synthetic"`
}

// DatabaseConfig configures the OMOP database connection
type DatabaseConfig struct {
	Type     string `mapstructure:"type"` // sqlite | postgresql
	Path     string `mapstructure:"path"` // sqlite file path
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// LoggingConfig configures log output
type LoggingConfig struct {
	JSON bool `mapstructure:"json"` // JSON encoding instead of console
}

// AnalysisConfig carries the tunable analysis parameters
type AnalysisConfig struct {
	MinAge     float64 `mapstructure:"min_age"`    // eligibility age for cohort comparison (default: 60)
	Percentile float64 `mapstructure:"percentile"` // onset percentile for the resilience threshold (default: 75)
	MaxAge     float64 `mapstructure:"max_age"`    // top of the incidence age grid (default: 100)
	AgeStep    float64 `mapstructure:"age_step"`   // grid step in years (default: 1.0)
	Workers    int     `mapstructure:"workers"`    // concurrent diseases in batch runs (default: 4)
}

// SyntheticConfig carries the synthetic population generator parameters
type SyntheticConfig struct {
	Patients  int   `mapstructure:"patients"`
	StartYear int   `mapstructure:"start_year"`
	EndYear   int   `mapstructure:"end_year"`
	Seed      int64 `mapstructure:"seed"`
}

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)

// DatabasePath returns the sqlite file path, falling back to the default
func (c *Config) DatabasePath() string {
	if c.Database.Path == "" {
		return "resilient_aging.db"
	}
	return c.Database.Path
}

// DSN renders the database connection string for the configured driver.
// For sqlite this is the file path; for postgresql a lib/pq key-value DSN.
func (c *Config) DSN() string {
	if c.Database.Type == DriverPostgres {
		sslMode := c.Database.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password,
			c.Database.Name, sslMode)
	}
	return c.DatabasePath()
}

// String returns a string representation of the config.
// The password is never included.
func (c *Config) String() string {
	if c.Database.Type == DriverPostgres {
		return fmt.Sprintf("Config{Database: %s@%s:%d/%s, Analysis: {MinAge: %.0f, Percentile: %.0f}}",
			c.Database.User, c.Database.Host, c.Database.Port, c.Database.Name,
			c.Analysis.MinAge, c.Analysis.Percentile)
	}
	return fmt.Sprintf("Config{Database: %s, Analysis: {MinAge: %.0f, Percentile: %.0f}}",
		c.DatabasePath(), c.Analysis.MinAge, c.Analysis.Percentile)
}
