package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/cohortlab/resilient-aging/config"
	"github.com/cohortlab/resilient-aging/errors"
	"github.com/cohortlab/resilient-aging/resilience"
)

// addTuningFlags registers the analysis tuning flags shared by the
// analyze, compare, incidence and export commands.
func addTuningFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("min-age", resilience.DefaultMinAge, "Minimum current age for resilient-ager eligibility")
	cmd.Flags().Float64("percentile", resilience.DefaultPercentile, "Onset percentile defining the resilience threshold")
	cmd.Flags().Float64("max-age", resilience.DefaultMaxAge, "Top of the incidence age grid in years")
	cmd.Flags().Float64("age-step", resilience.DefaultAgeStep, "Incidence grid step in years")
	cmd.Flags().String("reference-date", "", "Reference date for current ages (YYYY-MM-DD, default today)")
}

// analysisOptions builds analyzer options from config defaults, letting
// any tuning flag set on the command line win.
func analysisOptions(cmd *cobra.Command, cfg *config.Config) (resilience.Options, error) {
	opts := resilience.Options{
		MinAge:     cfg.Analysis.MinAge,
		Percentile: cfg.Analysis.Percentile,
		MaxAge:     cfg.Analysis.MaxAge,
		AgeStep:    cfg.Analysis.AgeStep,
		Workers:    cfg.Analysis.Workers,
	}

	flags := cmd.Flags()
	if flags.Changed("min-age") {
		opts.MinAge, _ = flags.GetFloat64("min-age")
	}
	if flags.Changed("percentile") {
		opts.Percentile, _ = flags.GetFloat64("percentile")
	}
	if flags.Changed("max-age") {
		opts.MaxAge, _ = flags.GetFloat64("max-age")
	}
	if flags.Changed("age-step") {
		opts.AgeStep, _ = flags.GetFloat64("age-step")
	}

	if ref, _ := flags.GetString("reference-date"); ref != "" {
		t, err := time.Parse("2006-01-02", ref)
		if err != nil {
			return opts, errors.Wrapf(err, "invalid reference date %q", ref)
		}
		opts.ReferenceDate = t
	}

	return opts, nil
}
