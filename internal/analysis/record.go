package analysis

import (
	"time"

	"github.com/KaramelBytes/autoeda/internal/diag"
	"github.com/KaramelBytes/autoeda/internal/infer"
)

// Record maps each column to its type-specific statistics.
type Record struct {
	Order    []string                   `json:"order" yaml:"order"`
	Columns  map[string]*ColumnAnalysis `json:"columns" yaml:"columns"`
	Warnings []diag.Warning             `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// ColumnAnalysis holds exactly one populated bundle, matching Category.
// Unknown columns carry only a Note.
type ColumnAnalysis struct {
	Column      string            `json:"column" yaml:"column"`
	Category    infer.Category    `json:"category" yaml:"category"`
	Numeric     *NumericStats     `json:"numeric,omitempty" yaml:"numeric,omitempty"`
	Categorical *CategoricalStats `json:"categorical,omitempty" yaml:"categorical,omitempty"`
	Datetime    *DatetimeStats    `json:"datetime,omitempty" yaml:"datetime,omitempty"`
	Boolean     *BooleanStats     `json:"boolean,omitempty" yaml:"boolean,omitempty"`
	Identifier  *IdentifierStats  `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	Text        *TextStats        `json:"text,omitempty" yaml:"text,omitempty"`
	Note        string            `json:"note,omitempty" yaml:"note,omitempty"`
}

// NumericStats describes a numeric distribution over non-null parsed values.
type NumericStats struct {
	Count      int     `json:"count" yaml:"count"`
	Missing    int     `json:"missing" yaml:"missing"`
	MissingPct float64 `json:"missing_pct" yaml:"missing_pct"`
	// Invalid counts non-null values that did not parse as numbers.
	Invalid  int            `json:"invalid" yaml:"invalid"`
	Zeros    int            `json:"zeros" yaml:"zeros"`
	Mean     Stat           `json:"mean" yaml:"mean"`
	Std      Stat           `json:"std" yaml:"std"`
	Min      Stat           `json:"min" yaml:"min"`
	Q1       Stat           `json:"q1" yaml:"q1"`
	Median   Stat           `json:"median" yaml:"median"`
	Q3       Stat           `json:"q3" yaml:"q3"`
	Max      Stat           `json:"max" yaml:"max"`
	Skewness Stat           `json:"skewness" yaml:"skewness"`
	Kurtosis Stat           `json:"kurtosis" yaml:"kurtosis"`
	Outliers *OutlierReport `json:"outliers,omitempty" yaml:"outliers,omitempty"`
}

// OutlierReport lists values outside [Lower, Upper].
type OutlierReport struct {
	Method    string    `json:"method" yaml:"method"`
	Threshold float64   `json:"threshold" yaml:"threshold"`
	Lower     Stat      `json:"lower" yaml:"lower"`
	Upper     Stat      `json:"upper" yaml:"upper"`
	Count     int       `json:"count" yaml:"count"`
	Rows      []int     `json:"rows,omitempty" yaml:"rows,omitempty"`
	Values    []float64 `json:"values,omitempty" yaml:"values,omitempty"`
}

// Frequency is one bucket of a frequency table.
type Frequency struct {
	Value string  `json:"value" yaml:"value"`
	Count int     `json:"count" yaml:"count"`
	Pct   float64 `json:"pct" yaml:"pct"`
}

type CategoricalStats struct {
	Count       int         `json:"count" yaml:"count"`
	Missing     int         `json:"missing" yaml:"missing"`
	Cardinality int         `json:"cardinality" yaml:"cardinality"`
	Mode        string      `json:"mode,omitempty" yaml:"mode,omitempty"`
	ModeCount   int         `json:"mode_count" yaml:"mode_count"`
	ModePct     float64     `json:"mode_pct" yaml:"mode_pct"`
	Entropy     Stat        `json:"entropy" yaml:"entropy"`
	Frequencies []Frequency `json:"frequencies" yaml:"frequencies"`
}

type DatetimeStats struct {
	Count       int            `json:"count" yaml:"count"`
	Missing     int            `json:"missing" yaml:"missing"`
	Invalid     int            `json:"invalid" yaml:"invalid"`
	Min         *time.Time     `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *time.Time     `json:"max,omitempty" yaml:"max,omitempty"`
	RangeDays   Stat           `json:"range_days" yaml:"range_days"`
	Granularity string         `json:"granularity,omitempty" yaml:"granularity,omitempty"`
	Intervals   *IntervalStats `json:"intervals,omitempty" yaml:"intervals,omitempty"`
	Years       []Frequency    `json:"years,omitempty" yaml:"years,omitempty"`
	Months      []Frequency    `json:"months,omitempty" yaml:"months,omitempty"`
	Weekdays    []Frequency    `json:"weekdays,omitempty" yaml:"weekdays,omitempty"`
	Hours       []Frequency    `json:"hours,omitempty" yaml:"hours,omitempty"`
}

// IntervalStats describes the gaps between consecutive timestamps, in days.
type IntervalStats struct {
	Count      int  `json:"count" yaml:"count"`
	MinDays    Stat `json:"min_days" yaml:"min_days"`
	MedianDays Stat `json:"median_days" yaml:"median_days"`
	MeanDays   Stat `json:"mean_days" yaml:"mean_days"`
	MaxDays    Stat `json:"max_days" yaml:"max_days"`
	StdDays    Stat `json:"std_days" yaml:"std_days"`
}

type BooleanStats struct {
	Count      int  `json:"count" yaml:"count"`
	Missing    int  `json:"missing" yaml:"missing"`
	Invalid    int  `json:"invalid" yaml:"invalid"`
	TrueCount  int  `json:"true_count" yaml:"true_count"`
	FalseCount int  `json:"false_count" yaml:"false_count"`
	TrueRatio  Stat `json:"true_ratio" yaml:"true_ratio"`
}

type IdentifierStats struct {
	Count           int         `json:"count" yaml:"count"`
	Missing         int         `json:"missing" yaml:"missing"`
	Distinct        int         `json:"distinct" yaml:"distinct"`
	Unique          bool        `json:"unique" yaml:"unique"`
	UniquenessRatio Stat        `json:"uniqueness_ratio" yaml:"uniqueness_ratio"`
	DuplicateValues int         `json:"duplicate_values" yaml:"duplicate_values"`
	Duplicates      []Frequency `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
}

// Term is an n-gram with its corpus count and document frequency.
type Term struct {
	Term    string `json:"term" yaml:"term"`
	Count   int    `json:"count" yaml:"count"`
	DocFreq int    `json:"doc_freq" yaml:"doc_freq"`
}

type TextStats struct {
	Count        int    `json:"count" yaml:"count"`
	Missing      int    `json:"missing" yaml:"missing"`
	Empty        int    `json:"empty" yaml:"empty"`
	MinLength    Stat   `json:"min_length" yaml:"min_length"`
	MaxLength    Stat   `json:"max_length" yaml:"max_length"`
	AvgLength    Stat   `json:"avg_length" yaml:"avg_length"`
	MedianLength Stat   `json:"median_length" yaml:"median_length"`
	AvgWords     Stat   `json:"avg_words" yaml:"avg_words"`
	MinWords     Stat   `json:"min_words" yaml:"min_words"`
	MaxWords     Stat   `json:"max_words" yaml:"max_words"`
	TotalWords   int    `json:"total_words" yaml:"total_words"`
	UniqueWords  int    `json:"unique_words" yaml:"unique_words"`
	Terms        []Term `json:"terms,omitempty" yaml:"terms,omitempty"`
	// Sentiment is the summed lexicon weight divided by the token count.
	Sentiment Stat `json:"sentiment" yaml:"sentiment"`
	Positive  int  `json:"positive_docs" yaml:"positive_docs"`
	Negative  int  `json:"negative_docs" yaml:"negative_docs"`
	Neutral   int  `json:"neutral_docs" yaml:"neutral_docs"`
}
