// Package eda runs the full one-shot profiling pipeline over a dataset.
package eda

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/KaramelBytes/autoeda/internal/analysis"
	"github.com/KaramelBytes/autoeda/internal/config"
	"github.com/KaramelBytes/autoeda/internal/dataset"
	"github.com/KaramelBytes/autoeda/internal/diag"
	"github.com/KaramelBytes/autoeda/internal/infer"
	"github.com/google/uuid"
)

// ErrNoData is returned for a nil dataset or one without columns.
var ErrNoData = errors.New("dataset has no columns")

// Result is everything one run produces.
type Result struct {
	RunID        string                      `json:"run_id" yaml:"run_id"`
	Name         string                      `json:"name" yaml:"name"`
	Rows         int                         `json:"rows" yaml:"rows"`
	AnalyzedRows int                         `json:"analyzed_rows" yaml:"analyzed_rows"`
	TypeMap      *infer.TypeMap              `json:"type_map" yaml:"type_map"`
	Analysis     *analysis.Record            `json:"analysis" yaml:"analysis"`
	Correlations *analysis.CorrelationMatrix `json:"correlations" yaml:"correlations"`
	Associations *analysis.AssociationMatrix `json:"associations" yaml:"associations"`
	// Warnings merges every stage's warnings in pipeline order.
	Warnings  []diag.Warning `json:"warnings" yaml:"warnings"`
	StartedAt time.Time      `json:"started_at" yaml:"started_at"`
	Duration  time.Duration  `json:"duration_ns" yaml:"duration_ns"`
}

// Options carry per-run settings that are not configuration.
type Options struct {
	Logger *slog.Logger
	// By is recorded on override audit entries.
	By string
	// ConfigWarnings are prepended to the run's warnings, e.g. unknown keys.
	ConfigWarnings []string
}

// Run samples, infers, analyzes, then correlates numeric columns and
// associates categorical ones. Column-local problems become
// warnings; only a missing dataset or a stage error aborts.
func Run(ctx context.Context, ds *dataset.Dataset, cfg *config.Config, overrides map[string]infer.Category, opts Options) (*Result, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, ErrNoData
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	start := time.Now()
	res := &Result{
		RunID:     uuid.NewString(),
		Name:      ds.Name,
		Rows:      ds.Rows(),
		StartedAt: start.UTC(),
	}
	for _, w := range opts.ConfigWarnings {
		res.Warnings = append(res.Warnings, diag.Warning{Code: diag.CodeUnknownConfigKey, Message: w})
	}
	log = log.With("run_id", res.RunID, "dataset", ds.Name)

	work := ds
	if cfg.Sampling.Enabled && ds.Rows() > cfg.Sampling.MaxRows {
		work = ds.Sample(cfg.Sampling.MaxRows, cfg.Sampling.RandomState)
		log.Info("sampled dataset", "rows", ds.Rows(), "kept", work.Rows())
		res.Warnings = append(res.Warnings, diag.Warning{
			Code:    diag.CodeSampled,
			Message: fmt.Sprintf("analyzed %d of %d rows (random_state=%d)", work.Rows(), ds.Rows(), cfg.Sampling.RandomState),
		})
	}
	res.AnalyzedRows = work.Rows()

	tm, err := infer.Infer(ctx, work, cfg, overrides, infer.Options{Logger: log, By: opts.By})
	if err != nil {
		return nil, fmt.Errorf("infer types: %w", err)
	}
	res.TypeMap = tm
	res.Warnings = append(res.Warnings, tm.Warnings...)
	log.Debug("type inference done", "columns", len(tm.Order), "overrides", len(tm.Overrides))

	rec, err := analysis.Analyze(work, tm, cfg)
	if err != nil {
		return nil, fmt.Errorf("analyze columns: %w", err)
	}
	res.Analysis = rec
	res.Warnings = append(res.Warnings, rec.Warnings...)

	cm, err := analysis.Correlate(work, tm, cfg)
	if err != nil {
		return nil, fmt.Errorf("correlate: %w", err)
	}
	res.Correlations = cm
	res.Warnings = append(res.Warnings, cm.Warnings...)

	am, err := analysis.CategoricalAssociations(work, tm)
	if err != nil {
		return nil, fmt.Errorf("associate: %w", err)
	}
	res.Associations = am
	res.Warnings = append(res.Warnings, am.Warnings...)

	res.Duration = time.Since(start)
	log.Debug("run finished", "warnings", len(res.Warnings), "duration", res.Duration)
	return res, nil
}
