package diag

import (
	"errors"
	"fmt"
)

// Code classifies a warning.
type Code string

const (
	CodeInsufficientData      Code = "insufficient_data"
	CodeOverrideTargetMissing Code = "override_target_missing"
	CodeAnalyzerComputation   Code = "analyzer_computation"
	CodeUnknownType           Code = "unknown_type_skipped"
	CodeIdentifierDuplicates  Code = "identifier_duplicates"
	CodeUnknownConfigKey      Code = "unknown_config_key"
	CodeSampled               Code = "sampled"
	CodeCorrelationOmitted    Code = "correlation_omitted"
)

// Warning is a non-fatal condition surfaced next to successful results.
type Warning struct {
	Code    Code   `json:"code" yaml:"code"`
	Column  string `json:"column,omitempty" yaml:"column,omitempty"`
	Stat    string `json:"stat,omitempty" yaml:"stat,omitempty"`
	Message string `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	if w.Column != "" {
		return fmt.Sprintf("[%s] %s: %s", w.Code, w.Column, w.Message)
	}
	return fmt.Sprintf("[%s] %s", w.Code, w.Message)
}

// FromError converts a column-local error from the taxonomy into a Warning.
// Errors outside the taxonomy are reported as analyzer computation warnings.
func FromError(err error) Warning {
	var (
		insufficient *InsufficientDataError
		missing      *OverrideTargetMissingError
		computation  *AnalyzerComputationWarning
	)
	switch {
	case errors.As(err, &insufficient):
		return Warning{Code: CodeInsufficientData, Column: insufficient.Column, Message: err.Error()}
	case errors.As(err, &missing):
		return Warning{Code: CodeOverrideTargetMissing, Column: missing.Column, Message: err.Error()}
	case errors.As(err, &computation):
		return Warning{Code: CodeAnalyzerComputation, Column: computation.Column, Stat: computation.Stat, Message: computation.Reason}
	default:
		return Warning{Code: CodeAnalyzerComputation, Message: err.Error()}
	}
}

// Undefined builds the warning for a statistic that could not be computed.
func Undefined(column, stat, reason string) Warning {
	return FromError(&AnalyzerComputationWarning{Column: column, Stat: stat, Reason: reason})
}
