package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cohortlab/resilient-aging/errors"
	"github.com/cohortlab/resilient-aging/logger"
	"github.com/cohortlab/resilient-aging/resilience"
	"github.com/cohortlab/resilient-aging/sym"
)

var (
	compareDiseases []string
	compareWorkers  int
	compareJSON     bool
)

// CompareCmd represents the compare command
var CompareCmd = &cobra.Command{
	Use:   "compare",
	Short: sym.Batch + " Run the analysis across many diseases",
	Long: sym.Batch + ` compare — Run the analysis across many diseases

Fans the per-disease analysis out across a bounded worker set and prints
one summary row per disease. Diseases that fail are skipped with a
warning; the batch itself still succeeds.

Examples:
  resilient-aging compare                       # Every registered disease
  resilient-aging compare -D stroke -D copd     # Just two
  resilient-aging compare -D stroke,alzheimer   # Comma form
  resilient-aging compare --workers 8 --min-age 65`,
	RunE: runCompare,
}

func init() {
	CompareCmd.Flags().StringSliceVarP(&compareDiseases, "diseases", "D", nil, "Disease keys to analyze (default: all registered)")
	CompareCmd.Flags().IntVar(&compareWorkers, "workers", 0, "Concurrent diseases (default from config)")
	CompareCmd.Flags().BoolVar(&compareJSON, "json", false, "Print the batch result as JSON")
	addTuningFlags(CompareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	st, cfg, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.DB().Close()

	registry, err := loadRegistry(cmd)
	if err != nil {
		return err
	}
	opts, err := analysisOptions(cmd, cfg)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers = compareWorkers
	}

	keys := compareDiseases
	if len(keys) == 0 {
		keys = registry.Keys()
	}

	analyzer := resilience.NewAnalyzer(st, registry, logger.Logger)
	batch, err := analyzer.MultiDisease(context.Background(), keys, opts)
	if err != nil {
		return errors.Wrap(err, "failed to run batch analysis")
	}

	if compareJSON {
		output, err := json.MarshalIndent(batch, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to format batch result as JSON")
		}
		fmt.Println(string(output))
		return nil
	}

	displayBatch(batch)
	return nil
}

func displayBatch(batch *resilience.BatchResult) {
	fmt.Printf("%s Multi-Disease Comparison (run %s, min age %.0f)\n", sym.Batch, batch.RunID, batch.MinAge)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Printf("%-26s %9s %16s %16s %8s %8s\n", "DISEASE", "ELIGIBLE", "RESILIENT", "AFFECTED", "MEDIAN", "P75")

	for _, row := range batch.Rows {
		cmp := row.Comparison
		fmt.Printf("%-26s %9d %16s %16s %8s %8s\n",
			row.DiseaseKey,
			cmp.TotalEligible,
			fmt.Sprintf("%d (%.1f%%)", cmp.NResilient, cmp.PctResilient),
			fmt.Sprintf("%d (%.1f%%)", cmp.NAffected, cmp.PctAffected),
			formatCell(row.MedianOnsetAge),
			formatCell(row.P75OnsetAge),
		)
	}

	if len(batch.Skipped) > 0 {
		fmt.Printf("\nSkipped: %s\n", strings.Join(batch.Skipped, ", "))
	}
	fmt.Printf("\nCompleted %d diseases in %s\n", len(batch.Rows), batch.Duration.Round(time.Millisecond))
}

// formatCell renders an optional age for a table cell.
func formatCell(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}
