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
	incidenceDiseaseKey string
	incidenceOutput     string
)

// IncidenceCmd represents the incidence command
var IncidenceCmd = &cobra.Command{
	Use:   "incidence",
	Short: sym.Curve + " Write a cumulative-incidence curve",
	Long: sym.Curve + ` incidence — Write a cumulative-incidence curve

Estimates the crude cumulative incidence of a disease along an age grid
and writes it as CSV, to stdout or to a file. Disease-free survival is
included as the complement.

Examples:
  resilient-aging incidence -D alzheimer                  # CSV on stdout
  resilient-aging incidence -D alzheimer -o alzheimer.csv
  resilient-aging incidence -D copd --age-step 0.5`,
	RunE: runIncidence,
}

func init() {
	IncidenceCmd.Flags().StringVarP(&incidenceDiseaseKey, "disease", "D", "", "Disease key from the concept registry (required)")
	IncidenceCmd.Flags().StringVarP(&incidenceOutput, "output", "o", "", "Output CSV path (default: stdout)")
	addTuningFlags(IncidenceCmd)
}

func runIncidence(cmd *cobra.Command, args []string) error {
	if incidenceDiseaseKey == "" {
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
	analysis, err := analyzer.AnalyzeDisease(context.Background(), incidenceDiseaseKey, opts)
	if err != nil {
		return errors.Wrapf(err, "failed to analyze %s", incidenceDiseaseKey)
	}

	out := os.Stdout
	if incidenceOutput != "" {
		f, err := os.Create(incidenceOutput)
		if err != nil {
			return errors.Wrapf(err, "failed to create %s", incidenceOutput)
		}
		defer f.Close()
		out = f
	}

	if err := export.WriteIncidenceCSV(out, analysis.Curve); err != nil {
		return err
	}

	if incidenceOutput != "" {
		fmt.Printf("%s Wrote %d grid points for %s to %s\n",
			sym.Curve, len(analysis.Curve), incidenceDiseaseKey, incidenceOutput)
	}
	return nil
}
