package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cohortlab/resilient-aging/errors"
	"github.com/cohortlab/resilient-aging/logger"
	"github.com/cohortlab/resilient-aging/resilience"
	"github.com/cohortlab/resilient-aging/sym"
)

var (
	analyzeDiseaseKey string
	analyzeJSON       bool
)

// AnalyzeCmd represents the analyze command
var AnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: sym.Analysis + " Run the resilience analysis for one disease",
	Long: sym.Analysis + ` analyze — Run the resilience analysis for one disease

Builds age timelines for the whole population, derives percentile onset
thresholds, classifies every person into one of the five resilience
classes, and prints the cohort comparison.

Examples:
  resilient-aging analyze -D type2_diabetes
  resilient-aging analyze -D stroke --min-age 65 --percentile 90
  resilient-aging analyze -D copd --json       # Machine-readable full run`,
	RunE: runAnalyze,
}

func init() {
	AnalyzeCmd.Flags().StringVarP(&analyzeDiseaseKey, "disease", "D", "", "Disease key from the concept registry (required)")
	AnalyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the full analysis as JSON")
	addTuningFlags(AnalyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeDiseaseKey == "" {
		return errors.NewInvalidRequestError("--disease is required (see 'resilient-aging diseases')")
	}

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

	analyzer := resilience.NewAnalyzer(st, registry, logger.Logger)
	analysis, err := analyzer.AnalyzeDisease(context.Background(), analyzeDiseaseKey, opts)
	if err != nil {
		return errors.Wrapf(err, "failed to analyze %s", analyzeDiseaseKey)
	}

	if analyzeJSON {
		output, err := json.MarshalIndent(analysis, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to format analysis as JSON")
		}
		fmt.Println(string(output))
		return nil
	}

	displayAnalysis(analysis, opts)
	return nil
}

func displayAnalysis(analysis *resilience.DiseaseAnalysis, opts resilience.Options) {
	th := analysis.Thresholds
	cmp := analysis.Comparison

	fmt.Printf("%s Resilient Aging Analysis: %s\n", sym.Analysis, analysis.DiseaseName)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Printf("Run ID:              %s\n", analysis.RunID)
	fmt.Printf("Reference date:      %s\n", analysis.ReferenceDate.Format("2006-01-02"))
	fmt.Printf("Total population:    %d\n", th.NTotal)
	fmt.Printf("Affected:            %d (%.1f%%)\n", th.NAffected, th.Prevalence*100)
	fmt.Printf("Median onset age:    %s\n", formatAge(th.MedianOnsetAge))
	fmt.Printf("75th pct onset age:  %s\n", formatAge(th.P75OnsetAge))
	fmt.Printf("90th pct onset age:  %s\n", formatAge(th.P90OnsetAge))
	fmt.Printf("Threshold age:       %.1f years (p%.0f onset)\n", analysis.ThresholdAge, opts.Percentile)
	fmt.Println()

	fmt.Printf("Cohort comparison (current age >= %.1f):\n", cmp.MinAge)
	fmt.Printf("  Eligible:          %d\n", cmp.TotalEligible)
	fmt.Printf("  Resilient agers:   %d (%.1f%%)", cmp.NResilient, cmp.PctResilient)
	if cmp.AvgAgeResilient != nil {
		fmt.Printf("  avg age %.1f, avg score %.1f", *cmp.AvgAgeResilient, cmp.AvgResilienceScore)
	}
	fmt.Println()
	fmt.Printf("  Affected:          %d (%.1f%%)", cmp.NAffected, cmp.PctAffected)
	if cmp.AvgAgeAffected != nil {
		fmt.Printf("  avg age %.1f", *cmp.AvgAgeAffected)
	}
	fmt.Println()
	fmt.Printf("  Typical:           %d\n", cmp.NTypical)
}

// formatAge renders an optional onset age, N/A when the percentile was
// unreachable.
func formatAge(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f years", *v)
}
