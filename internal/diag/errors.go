package diag

import (
	"errors"
	"fmt"
)

// InsufficientDataError indicates a column has no non-null values to profile.
type InsufficientDataError struct {
	Column string
}

func (e *InsufficientDataError) Error() string {
	if e.Column == "" {
		return "insufficient data: column is absent"
	}
	return fmt.Sprintf("insufficient data: column %q has no non-null values", e.Column)
}

// OverrideTargetMissingError indicates an override names a column the dataset does not have.
type OverrideTargetMissingError struct {
	Column string
}

func (e *OverrideTargetMissingError) Error() string {
	return fmt.Sprintf("override target %q not found in dataset", e.Column)
}

// AnalyzerComputationWarning reports a single statistic that could not be computed.
type AnalyzerComputationWarning struct {
	Column string
	Stat   string
	Reason string
}

func (e *AnalyzerComputationWarning) Error() string {
	return fmt.Sprintf("column %q: %s undefined: %s", e.Column, e.Stat, e.Reason)
}

// ErrNoAnalyzer is returned when a category has no analyzer bound to it.
var ErrNoAnalyzer = errors.New("no analyzer for category")
