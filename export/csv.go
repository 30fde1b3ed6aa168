// Package export writes analysis results as CSV for downstream tooling.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/cohortlab/resilient-aging/errors"
	"github.com/cohortlab/resilient-aging/prevalence"
	"github.com/cohortlab/resilient-aging/resilience"
)

var cohortHeader = []string{
	"person_id",
	"current_age",
	"has_condition",
	"age_at_diagnosis",
	"is_resilient",
	"resilience_score",
	"classification",
	"disease_key",
	"threshold_age",
}

var incidenceHeader = []string{
	"age",
	"n_at_risk",
	"n_events",
	"n_total",
	"cumulative_incidence",
	"disease_free_survival",
}

// WriteCohortCSV writes one row per classified person. An empty cohort
// still produces the header row so downstream parsers see the schema.
// age_at_diagnosis is blank for disease-free persons.
func WriteCohortCSV(w io.Writer, diseaseKey string, thresholdAge float64, rows []resilience.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(cohortHeader); err != nil {
		return errors.Wrap(err, "writing cohort header")
	}

	threshold := formatFloat(thresholdAge)
	for _, r := range rows {
		record := []string{
			strconv.FormatInt(r.PersonID, 10),
			formatFloat(r.CurrentAge),
			strconv.FormatBool(r.HasCondition),
			formatOptionalFloat(r.AgeAtDiagnosis),
			strconv.FormatBool(r.IsResilient),
			formatFloat(r.ResilienceScore),
			r.Classification,
			diseaseKey,
			threshold,
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "writing cohort row for person %d", r.PersonID)
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing cohort csv")
}

// WriteIncidenceCSV writes the cumulative-incidence curve, one row per
// grid age.
func WriteIncidenceCSV(w io.Writer, curve []prevalence.IncidencePoint) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(incidenceHeader); err != nil {
		return errors.Wrap(err, "writing incidence header")
	}

	for _, pt := range curve {
		record := []string{
			formatFloat(pt.Age),
			strconv.Itoa(pt.NAtRisk),
			strconv.Itoa(pt.NEvents),
			strconv.Itoa(pt.NTotal),
			formatFloat(pt.CumulativeIncidence),
			formatFloat(pt.DiseaseFreeSurvival()),
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "writing incidence row for age %.1f", pt.Age)
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing incidence csv")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
