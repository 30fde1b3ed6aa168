package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cohortlab/resilient-aging/cmd/resilient-aging/commands"
	"github.com/cohortlab/resilient-aging/logger"
)

var rootCmd = &cobra.Command{
	Use:   "resilient-aging",
	Short: "Resilient aging analysis over OMOP CDM data",
	Long: `resilient-aging — Population analysis of resilient agers over OMOP CDM data.

The engine builds age timelines from OMOP person and condition records,
estimates crude cumulative incidence, derives percentile onset thresholds,
and classifies every person into one of five resilience classes.

Available commands:
  generate  - Generate a synthetic OMOP population
  analyze   - Run the resilience analysis for one disease
  compare   - Run the analysis across many diseases
  incidence - Write a cumulative-incidence curve
  export    - Export a classified cohort as CSV
  diseases  - List the disease concept registry
  db        - Manage the OMOP database

Examples:
  resilient-aging generate -n 10000 -s 42    # Build a 10k-person test database
  resilient-aging analyze -D type2_diabetes  # Thresholds and cohort comparison
  resilient-aging compare                    # Batch over every registered disease
  resilient-aging export -D stroke -o stroke_cohort.csv
  resilient-aging db stats                   # Table row counts`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize global logger before any command runs. Logs go to
		// stderr so command output on stdout stays parseable.
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		verbosity, _ := cmd.Flags().GetCount("verbose")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger.Debugw("Logger initialized",
			"verbosity", logger.LevelName(verbosity),
			"json", jsonLogs,
		)
		return nil
	},
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: resilient-aging.yaml discovery)")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().String("concepts", "", "YAML concept-set overlay merged over the built-in registry")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Log in JSON instead of console format")
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")

	// Add commands
	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.AnalyzeCmd)
	rootCmd.AddCommand(commands.CompareCmd)
	rootCmd.AddCommand(commands.IncidenceCmd)
	rootCmd.AddCommand(commands.ExportCmd)
	rootCmd.AddCommand(commands.DiseasesCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
