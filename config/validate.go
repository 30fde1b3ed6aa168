package config

import "github.com/cohortlab/resilient-aging/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch c.Database.Type {
	case DriverSQLite, DriverPostgres:
	case "":
		// Empty defaults to sqlite per defaults.go
	default:
		return errors.Newf("database.type must be %q or %q, got %q",
			DriverSQLite, DriverPostgres, c.Database.Type)
	}

	if c.Database.Type == DriverPostgres {
		if c.Database.Host == "" {
			return errors.New("database.host cannot be empty for postgresql")
		}
		if c.Database.Port <= 0 {
			return errors.Newf("database.port must be > 0, got %d", c.Database.Port)
		}
		if c.Database.Name == "" {
			return errors.New("database.name cannot be empty for postgresql")
		}
	}

	if c.Analysis.MinAge < 0 {
		return errors.Newf("analysis.min_age must be >= 0, got %g", c.Analysis.MinAge)
	}
	if c.Analysis.Percentile <= 0 || c.Analysis.Percentile > 100 {
		return errors.Newf("analysis.percentile must be in (0, 100], got %g", c.Analysis.Percentile)
	}
	if c.Analysis.MaxAge <= 0 {
		return errors.Newf("analysis.max_age must be > 0, got %g", c.Analysis.MaxAge)
	}
	if c.Analysis.AgeStep <= 0 {
		return errors.Newf("analysis.age_step must be > 0, got %g", c.Analysis.AgeStep)
	}

	// Workers: 0 = sequential batch runs, negative = invalid
	if c.Analysis.Workers < 0 {
		return errors.Newf("analysis.workers must be >= 0, got %d", c.Analysis.Workers)
	}

	if c.Synthetic.Patients <= 0 {
		return errors.Newf("synthetic.patients must be > 0, got %d", c.Synthetic.Patients)
	}
	if c.Synthetic.StartYear > c.Synthetic.EndYear {
		return errors.Newf("synthetic.start_year %d is after end_year %d",
			c.Synthetic.StartYear, c.Synthetic.EndYear)
	}

	return nil
}
