// Package analysis runs the type-specific statistical analyzers selected by a
// TypeMap and the cross-column correlation pass over numeric columns.
package analysis

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/autoeda/internal/config"
	"github.com/KaramelBytes/autoeda/internal/dataset"
	"github.com/KaramelBytes/autoeda/internal/diag"
	"github.com/KaramelBytes/autoeda/internal/infer"
	"github.com/KaramelBytes/autoeda/internal/profile"
)

// ErrMissingVerdict means a dataset column has no entry in the TypeMap.
var ErrMissingVerdict = errors.New("column has no type verdict")

// columnInput is what every analyzer receives. Analyzers must not modify Values.
type columnInput struct {
	name    string
	values  []any
	cfg     *config.Config
	parsers *profile.Parsers
	warn    func(stat, reason string)
}

// Analyze dispatches every column to the analyzer for its effective category.
// Statistics that cannot be computed are recorded as undefined with a warning;
// only a TypeMap that does not cover the dataset is an error.
func Analyze(ds *dataset.Dataset, tm *infer.TypeMap, cfg *config.Config) (*Record, error) {
	if ds == nil || tm == nil {
		return nil, &diag.InsufficientDataError{}
	}
	rec := &Record{Order: ds.Names(), Columns: make(map[string]*ColumnAnalysis, ds.Len())}
	parsers := profile.NewParsers(cfg)
	for _, col := range ds.Columns() {
		v, ok := tm.Get(col.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingVerdict, col.Name)
		}
		in := columnInput{
			name:    col.Name,
			values:  col.Values,
			cfg:     cfg,
			parsers: parsers,
			warn: func(stat, reason string) {
				rec.Warnings = append(rec.Warnings, diag.Undefined(col.Name, stat, reason))
			},
		}
		ca, err := analyzeColumn(v.Category, in)
		if err != nil {
			return nil, fmt.Errorf("analyze %s: %w", col.Name, err)
		}
		if ca.Category == infer.Unknown {
			rec.Warnings = append(rec.Warnings, diag.Warning{Code: diag.CodeUnknownType, Column: col.Name, Message: ca.Note})
		}
		if ca.Identifier != nil && !ca.Identifier.Unique {
			rec.Warnings = append(rec.Warnings, diag.Warning{
				Code:    diag.CodeIdentifierDuplicates,
				Column:  col.Name,
				Message: fmt.Sprintf("%d identifier values occur more than once", ca.Identifier.DuplicateValues),
			})
		}
		rec.Columns[col.Name] = ca
	}
	return rec, nil
}

// analyzeColumn selects exactly one analyzer. New categories must be added
// here; anything unhandled fails loudly with ErrNoAnalyzer.
func analyzeColumn(c infer.Category, in columnInput) (*ColumnAnalysis, error) {
	ca := &ColumnAnalysis{Column: in.name, Category: c}
	switch c {
	case infer.Numeric:
		ca.Numeric = analyzeNumeric(in)
	case infer.Categorical:
		ca.Categorical = analyzeCategorical(in)
	case infer.Datetime:
		ca.Datetime = analyzeDatetime(in)
	case infer.Boolean:
		ca.Boolean = analyzeBoolean(in)
	case infer.Identifier:
		ca.Identifier = analyzeIdentifier(in)
	case infer.Text:
		ca.Text = analyzeText(in)
	case infer.Unknown:
		ca.Note = "type could not be inferred; column skipped"
	default:
		return nil, fmt.Errorf("%w: %v", diag.ErrNoAnalyzer, c)
	}
	return ca, nil
}
