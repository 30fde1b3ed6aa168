package resilience

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cohortlab/resilient-aging/concepts"
	"github.com/cohortlab/resilient-aging/db"
	"github.com/cohortlab/resilient-aging/errors"
	"github.com/cohortlab/resilient-aging/prevalence"
)

// Defaults for zero-valued Options fields.
const (
	DefaultMaxAge  = 100.0
	DefaultAgeStep = 1.0
)

// Source is the data access the analyzer needs. *store.Store satisfies
// it.
type Source interface {
	prevalence.EventSource
	ExpandConceptIDs(ctx context.Context, conceptIDs []int64) ([]int64, error)
}

// Options tunes one analysis run. Zero-valued fields fall back to the
// package defaults; Workers caps batch concurrency, with 0 meaning
// sequential.
type Options struct {
	MinAge        float64
	Percentile    float64
	MaxAge        float64
	AgeStep       float64
	ReferenceDate time.Time
	Workers       int
}

func (o Options) withDefaults() Options {
	if o.MinAge == 0 {
		o.MinAge = DefaultMinAge
	}
	if o.Percentile == 0 {
		o.Percentile = DefaultPercentile
	}
	if o.MaxAge == 0 {
		o.MaxAge = DefaultMaxAge
	}
	if o.AgeStep == 0 {
		o.AgeStep = DefaultAgeStep
	}
	return o
}

// DiseaseAnalysis is the full per-disease output: thresholds, the
// per-person classification, the cohort comparison, and the incidence
// curve, all from one snapshot of the data.
type DiseaseAnalysis struct {
	DiseaseKey    string                      `json:"disease_key"`
	DiseaseName   string                      `json:"disease_name"`
	RunID         string                      `json:"run_id"`
	ReferenceDate time.Time                   `json:"reference_date"`
	ThresholdAge  float64                     `json:"threshold_age"`
	Thresholds    Thresholds                  `json:"thresholds"`
	Results       []Result                    `json:"results"`
	Comparison    Comparison                  `json:"comparison"`
	Curve         []prevalence.IncidencePoint `json:"curve,omitempty"`
}

// DiseaseSummary is one row of a multi-disease batch.
type DiseaseSummary struct {
	DiseaseKey     string     `json:"disease_key"`
	Comparison     Comparison `json:"comparison"`
	MedianOnsetAge *float64   `json:"median_onset_age,omitempty"`
	P75OnsetAge    *float64   `json:"percentile_75_onset_age,omitempty"`
}

// BatchResult aggregates a multi-disease run. Rows are sorted by
// disease key; Skipped lists diseases that failed and were left out.
type BatchResult struct {
	RunID    string           `json:"run_id"`
	MinAge   float64          `json:"min_age"`
	Rows     []DiseaseSummary `json:"rows"`
	Skipped  []string         `json:"skipped,omitempty"`
	Duration time.Duration    `json:"duration"`
}

// Analyzer runs the resilient aging pipeline against a data source and
// a disease registry.
type Analyzer struct {
	src      Source
	registry *concepts.Registry
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// NewAnalyzer creates an analyzer. The logger may be nil.
func NewAnalyzer(src Source, registry *concepts.Registry, logger *zap.SugaredLogger) *Analyzer {
	return &Analyzer{
		src:      src,
		registry: registry,
		logger:   logger,
		now:      time.Now,
	}
}

// AnalyzeDisease runs the full pipeline for one disease key: concept
// resolution, timelines, thresholds, classification, and cohort
// comparison. Unknown keys fail before any query is issued.
func (a *Analyzer) AnalyzeDisease(ctx context.Context, key string, opts Options) (*DiseaseAnalysis, error) {
	return a.analyzeDisease(ctx, key, opts.withDefaults(), uuid.NewString())
}

func (a *Analyzer) analyzeDisease(ctx context.Context, key string, opts Options, runID string) (*DiseaseAnalysis, error) {
	set, err := a.registry.Get(key)
	if err != nil {
		return nil, err
	}

	conceptIDs := set.ConceptIDs
	if set.IncludeDescendants {
		conceptIDs, err = a.src.ExpandConceptIDs(ctx, conceptIDs)
		if err != nil {
			return nil, errors.Wrapf(err, "expanding concepts for %s", key)
		}
	}

	ref := opts.ReferenceDate
	if ref.IsZero() {
		ref = a.now()
	}

	timelines, err := prevalence.BuildTimelines(ctx, a.src, conceptIDs, ref)
	if err != nil {
		return nil, errors.Wrapf(err, "building timelines for %s", key)
	}

	thresholds := ComputeThresholds(key, timelines)
	thresholdAge := ResolveThreshold(thresholds, timelines, opts.Percentile)
	results := ClassifyPopulation(timelines, thresholdAge, opts.MinAge)
	comparison := CompareCohorts(key, results, opts.MinAge, thresholdAge, runID)
	curve := prevalence.CumulativeIncidence(timelines, opts.MaxAge, opts.AgeStep)

	if a.logger != nil {
		a.logger.Infow("Analyzed disease",
			"disease", key,
			"run_id", runID,
			"n_total", thresholds.NTotal,
			"n_affected", thresholds.NAffected,
			"threshold_age", thresholdAge,
			"n_resilient", comparison.NResilient,
		)
	}

	return &DiseaseAnalysis{
		DiseaseKey:    key,
		DiseaseName:   set.Name,
		RunID:         runID,
		ReferenceDate: ref,
		ThresholdAge:  thresholdAge,
		Thresholds:    thresholds,
		Results:       results,
		Comparison:    comparison,
		Curve:         curve,
	}, nil
}

// MultiDisease analyzes several diseases under one run ID with bounded
// concurrency. A failure on one disease logs a warning and skips it
// without aborting the rest; only an empty key list is an error.
// Closed-connection failures from a shutdown race are logged at debug.
func (a *Analyzer) MultiDisease(ctx context.Context, keys []string, opts Options) (*BatchResult, error) {
	opts = opts.withDefaults()
	if len(keys) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "no disease keys to analyze")
	}

	runID := uuid.NewString()
	start := time.Now()

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	var (
		mu      sync.Mutex
		rows    []DiseaseSummary
		skipped []string
		wg      sync.WaitGroup
	)
	sem := make(chan struct{}, workers)

	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			analysis, err := a.analyzeDisease(ctx, key, opts, runID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if a.logger != nil {
					if db.IsDatabaseClosed(err) {
						a.logger.Debugw("Skipping disease", "disease", key, "error", err)
					} else {
						a.logger.Warnw("Skipping disease", "disease", key, "error", err)
					}
				}
				skipped = append(skipped, key)
				return
			}
			rows = append(rows, DiseaseSummary{
				DiseaseKey:     key,
				Comparison:     analysis.Comparison,
				MedianOnsetAge: analysis.Thresholds.MedianOnsetAge,
				P75OnsetAge:    analysis.Thresholds.P75OnsetAge,
			})
		}(key)
	}
	wg.Wait()

	sort.Slice(rows, func(i, j int) bool { return rows[i].DiseaseKey < rows[j].DiseaseKey })
	sort.Strings(skipped)

	batch := &BatchResult{
		RunID:    runID,
		MinAge:   opts.MinAge,
		Rows:     rows,
		Skipped:  skipped,
		Duration: time.Since(start),
	}

	if a.logger != nil {
		a.logger.Infow("Completed multi-disease analysis",
			"run_id", runID,
			"analyzed", len(rows),
			"skipped", len(skipped),
			"duration", batch.Duration,
		)
	}
	return batch, nil
}
