package config

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a value outside its valid domain. It is fatal:
// it is raised at load time, before any column is processed.
type ConfigurationError struct {
	Key    string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s=%v: %s", e.Key, e.Value, e.Reason)
}

// Validate checks every option against its domain.
func (c *Config) Validate() error {
	ti := c.TypeInference
	ratios := []struct {
		key string
		val float64
	}{
		{"type_inference.categorical_threshold", ti.CategoricalThreshold},
		{"type_inference.id_uniqueness_threshold", ti.IDUniquenessThreshold},
		{"type_inference.boolean_threshold", ti.BooleanThreshold},
		{"type_inference.date_threshold", ti.DateThreshold},
		{"type_inference.text_min_distinct_ratio", ti.TextMinDistinctRatio},
		{"analysis.strong_correlation_threshold", c.Analysis.StrongCorrelationThreshold},
	}
	for _, r := range ratios {
		if r.val < 0 || r.val > 1 {
			return &ConfigurationError{Key: r.key, Value: r.val, Reason: "must be within [0,1]"}
		}
	}
	if ti.CategoricalThreshold == 0 {
		return &ConfigurationError{Key: "type_inference.categorical_threshold", Value: ti.CategoricalThreshold, Reason: "must be greater than 0"}
	}
	if _, ok := StrictnessThresholds[ti.NumericDetectionStrictness]; !ok {
		return &ConfigurationError{Key: "type_inference.numeric_detection_strictness", Value: ti.NumericDetectionStrictness, Reason: "must be one of strict, medium, loose"}
	}
	if ti.CategoricalMaxDistinct < 0 {
		return &ConfigurationError{Key: "type_inference.categorical_max_distinct", Value: ti.CategoricalMaxDistinct, Reason: "must not be negative"}
	}
	if ti.TextTokenThreshold <= 0 {
		return &ConfigurationError{Key: "type_inference.text_token_threshold", Value: ti.TextTokenThreshold, Reason: "must be positive"}
	}
	if ti.SampleValues < 0 {
		return &ConfigurationError{Key: "type_inference.sample_values", Value: ti.SampleValues, Reason: "must not be negative"}
	}
	if len(ti.DateFormats) == 0 && ti.DateInference {
		return &ConfigurationError{Key: "type_inference.date_formats", Value: ti.DateFormats, Reason: "at least one layout is required when date_inference is enabled"}
	}
	for _, l := range ti.DateFormats {
		if !strings.Contains(l, "06") {
			return &ConfigurationError{Key: "type_inference.date_formats", Value: l, Reason: "Go time layout must include a year (2006 or 06)"}
		}
	}
	if err := checkSeparator("type_inference.decimal_separator", ti.DecimalSeparator); err != nil {
		return err
	}
	if err := checkSeparator("type_inference.thousands_separator", ti.ThousandsSeparator); err != nil {
		return err
	}
	if ti.DecimalSeparator != "" && ti.DecimalSeparator == ti.ThousandsSeparator {
		return &ConfigurationError{Key: "type_inference.thousands_separator", Value: ti.ThousandsSeparator, Reason: "must differ from decimal_separator"}
	}

	a := c.Analysis
	switch a.CorrelationMethod {
	case "pearson", "spearman", "kendall":
	default:
		return &ConfigurationError{Key: "analysis.correlation_method", Value: a.CorrelationMethod, Reason: "must be one of pearson, spearman, kendall"}
	}
	switch a.OutlierDetection.Method {
	case "iqr", "zscore", "mad":
	default:
		return &ConfigurationError{Key: "analysis.outlier_detection.method", Value: a.OutlierDetection.Method, Reason: "must be one of iqr, zscore, mad"}
	}
	if a.OutlierDetection.Threshold <= 0 {
		return &ConfigurationError{Key: "analysis.outlier_detection.threshold", Value: a.OutlierDetection.Threshold, Reason: "must be positive"}
	}
	ta := a.TextAnalysis
	if ta.MaxFeatures <= 0 {
		return &ConfigurationError{Key: "analysis.text_analysis.max_features", Value: ta.MaxFeatures, Reason: "must be positive"}
	}
	if ta.MinDF < 1 {
		return &ConfigurationError{Key: "analysis.text_analysis.min_df", Value: ta.MinDF, Reason: "must be at least 1"}
	}
	if len(ta.NgramRange) != 2 || ta.NgramRange[0] < 1 || ta.NgramRange[0] > ta.NgramRange[1] {
		return &ConfigurationError{Key: "analysis.text_analysis.ngram_range", Value: ta.NgramRange, Reason: "must be [lo, hi] with 1 <= lo <= hi"}
	}
	if a.Categorical.TopK < 1 {
		return &ConfigurationError{Key: "analysis.categorical.top_k", Value: a.Categorical.TopK, Reason: "must be at least 1"}
	}

	if c.Sampling.Enabled && c.Sampling.MaxRows <= 0 {
		return &ConfigurationError{Key: "sampling.max_rows", Value: c.Sampling.MaxRows, Reason: "must be positive when sampling is enabled"}
	}
	if c.Workers < 0 {
		return &ConfigurationError{Key: "workers", Value: c.Workers, Reason: "must not be negative"}
	}
	return nil
}

func checkSeparator(key, sep string) error {
	switch sep {
	case "", ",", ".", " ", "'":
		return nil
	}
	return &ConfigurationError{Key: key, Value: sep, Reason: "must be one of ',', '.', ' ', \"'\" or empty"}
}
