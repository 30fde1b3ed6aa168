package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cohortlab/resilient-aging/errors"
	"github.com/cohortlab/resilient-aging/export"
	"github.com/cohortlab/resilient-aging/logger"
	"github.com/cohortlab/resilient-aging/resilience"
	"github.com/cohortlab/resilient-aging/sym"
)

var (
	exportDiseaseKey string
	exportCohortKind string
	exportOutput     string
)

// ExportCmd represents the export command
var ExportCmd = &cobra.Command{
	Use:   "export",
	Short: sym.Export + " Export a classified cohort as CSV",
	Long: sym.Export + ` export — Export a classified cohort as CSV

Runs the resilience analysis for a disease and writes one of the three
cohorts (resilient_ager, affected, typical) as CSV with the per-person
classification and resilience score.

Examples:
  resilient-aging export -D type2_diabetes
  resilient-aging export -D stroke -t affected -o stroke_affected.csv`,
	RunE: runExport,
}

func init() {
	ExportCmd.Flags().StringVarP(&exportDiseaseKey, "disease", "D", "", "Disease key from the concept registry (required)")
	ExportCmd.Flags().StringVarP(&exportCohortKind, "cohort", "t", resilience.CohortResilientAger, "Cohort to export (resilient_ager/affected/typical)")
	ExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "./resilient_cohort.csv", "Output CSV path")
	addTuningFlags(ExportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportDiseaseKey == "" {
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
	analysis, err := analyzer.AnalyzeDisease(context.Background(), exportDiseaseKey, opts)
	if err != nil {
		return errors.Wrapf(err, "failed to analyze %s", exportDiseaseKey)
	}

	cohort, err := resilience.Cohort(analysis.Results, exportCohortKind)
	if err != nil {
		return err
	}

	f, err := os.Create(exportOutput)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", exportOutput)
	}
	defer f.Close()

	if err := export.WriteCohortCSV(f, analysis.DiseaseKey, analysis.ThresholdAge, cohort); err != nil {
		return err
	}

	fmt.Printf("%s Exported %d %s members to %s\n", sym.Export, len(cohort), exportCohortKind, exportOutput)
	return nil
}
