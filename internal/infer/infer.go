package infer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/KaramelBytes/autoeda/internal/config"
	"github.com/KaramelBytes/autoeda/internal/dataset"
	"github.com/KaramelBytes/autoeda/internal/diag"
	"github.com/KaramelBytes/autoeda/internal/profile"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Override is the audit entry of a manual override. The automatic verdict is
// kept so it stays retrievable after being superseded.
type Override struct {
	ID        string      `json:"id" yaml:"id"`
	Column    string      `json:"column" yaml:"column"`
	Automatic TypeVerdict `json:"automatic" yaml:"automatic"`
	Forced    Category    `json:"forced" yaml:"forced"`
	By        string      `json:"by" yaml:"by"`
	At        time.Time   `json:"at" yaml:"at"`
}

// TypeMap holds exactly one effective verdict per dataset column.
type TypeMap struct {
	Order     []string                          `json:"order" yaml:"order"`
	Verdicts  map[string]TypeVerdict            `json:"verdicts" yaml:"verdicts"`
	Profiles  map[string]*profile.ColumnProfile `json:"profiles" yaml:"profiles"`
	Overrides []Override                        `json:"overrides,omitempty" yaml:"overrides,omitempty"`
	Warnings  []diag.Warning                    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Get returns the effective verdict for a column.
func (m *TypeMap) Get(column string) (TypeVerdict, bool) {
	v, ok := m.Verdicts[column]
	return v, ok
}

// Category returns the effective category of a column, Unknown if absent.
func (m *TypeMap) Category(column string) Category {
	return m.Verdicts[column].Category
}

// Audit returns the override entry for a column, if one was applied.
func (m *TypeMap) Audit(column string) (Override, bool) {
	for _, o := range m.Overrides {
		if o.Column == column {
			return o, true
		}
	}
	return Override{}, false
}

// Columns returns the names of columns with the given category in dataset order.
func (m *TypeMap) Columns(c Category) []string {
	var out []string
	for _, name := range m.Order {
		if m.Verdicts[name].Category == c {
			out = append(out, name)
		}
	}
	return out
}

// Options tune an inference run. The zero value is usable.
type Options struct {
	Logger *slog.Logger
	// Workers bounds parallel columns; 0 falls back to cfg.Workers, then GOMAXPROCS.
	Workers int
	// By is recorded on override audit entries.
	By string
	// Now stamps override audit entries; defaults to time.Now.
	Now func() time.Time
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Infer profiles and classifies every column, then applies overrides.
// Columns are independent, so they run in parallel; results land in dataset
// order regardless of scheduling. If sampling is enabled and the dataset is
// larger than sampling.max_rows, inference runs on the deterministic sample.
func Infer(ctx context.Context, ds *dataset.Dataset, cfg *config.Config, overrides map[string]Category, opts Options) (*TypeMap, error) {
	if ds == nil {
		return nil, &diag.InsufficientDataError{}
	}
	log := opts.logger()
	tm := &TypeMap{
		Order:    ds.Names(),
		Verdicts: make(map[string]TypeVerdict, ds.Len()),
		Profiles: make(map[string]*profile.ColumnProfile, ds.Len()),
	}
	if cfg.Sampling.Enabled && ds.Rows() > cfg.Sampling.MaxRows {
		log.Debug("sampling before inference", "rows", ds.Rows(), "max_rows", cfg.Sampling.MaxRows)
		tm.Warnings = append(tm.Warnings, diag.Warning{
			Code:    diag.CodeSampled,
			Message: fmt.Sprintf("inferred on %d of %d rows (random_state=%d)", cfg.Sampling.MaxRows, ds.Rows(), cfg.Sampling.RandomState),
		})
		ds = ds.Sample(cfg.Sampling.MaxRows, cfg.Sampling.RandomState)
	}

	cols := ds.Columns()
	profiles := make([]*profile.ColumnProfile, len(cols))
	verdicts := make([]TypeVerdict, len(cols))
	pr := profile.New(cfg)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(opts.Workers, cfg.Workers))
	for i, col := range cols {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := pr.Profile(col)
			if err != nil {
				return fmt.Errorf("profile %s: %w", col.Name, err)
			}
			profiles[i] = p
			verdicts[i] = Classify(p, cfg)
			log.Debug("classified column", "column", col.Name, "category", verdicts[i].Category, "confidence", verdicts[i].Confidence)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, col := range cols {
		tm.Profiles[col.Name] = profiles[i]
		tm.Verdicts[col.Name] = verdicts[i]
		if profiles[i].InsufficientData {
			tm.Warnings = append(tm.Warnings, diag.FromError(&diag.InsufficientDataError{Column: col.Name}))
		}
	}
	applyOverrides(tm, overrides, opts)
	return tm, nil
}

// applyOverrides supersedes verdicts in column-name order.
func applyOverrides(tm *TypeMap, overrides map[string]Category, opts Options) {
	if len(overrides) == 0 {
		return
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	by := opts.By
	if by == "" {
		by = "unknown"
	}
	for _, col := range sortedKeys(overrides) {
		auto, ok := tm.Verdicts[col]
		if !ok {
			tm.Warnings = append(tm.Warnings, diag.FromError(&diag.OverrideTargetMissingError{Column: col}))
			continue
		}
		forced := overrides[col]
		tm.Overrides = append(tm.Overrides, Override{
			ID:        uuid.NewString(),
			Column:    col,
			Automatic: auto,
			Forced:    forced,
			By:        by,
			At:        now().UTC(),
		})
		tm.Verdicts[col] = TypeVerdict{
			Column:     col,
			Category:   forced,
			Confidence: 1.0,
			Rationale:  []string{"manual_override", "automatic=" + auto.Category.String()},
			Rules:      auto.Rules,
		}
	}
}

func workerCount(opt, cfg int) int {
	switch {
	case opt > 0:
		return opt
	case cfg > 0:
		return cfg
	default:
		return runtime.GOMAXPROCS(0)
	}
}
