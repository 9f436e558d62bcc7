package analysis

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/KaramelBytes/autoeda/internal/config"
	"github.com/KaramelBytes/autoeda/internal/dataset"
	"github.com/KaramelBytes/autoeda/internal/diag"
	"github.com/KaramelBytes/autoeda/internal/infer"
	"github.com/KaramelBytes/autoeda/internal/profile"
	"github.com/google/go-cmp/cmp"
)

func input(t *testing.T, cfg *config.Config, vals ...any) (columnInput, *[]diag.Warning) {
	t.Helper()
	var warns []diag.Warning
	return columnInput{
		name:    "c",
		values:  vals,
		cfg:     cfg,
		parsers: profile.NewParsers(cfg),
		warn: func(stat, reason string) {
			warns = append(warns, diag.Undefined("c", stat, reason))
		},
	}, &warns
}

func floats(fs ...float64) []any {
	out := make([]any, len(fs))
	for i, f := range fs {
		out[i] = f
	}
	return out
}

func approx(t *testing.T, name string, got Stat, want float64) {
	t.Helper()
	if !got.Defined {
		t.Fatalf("%s undefined, want %v", name, want)
	}
	if math.Abs(got.Value-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got.Value, want)
	}
}

func typeMap(order []string, cats map[string]infer.Category) *infer.TypeMap {
	tm := &infer.TypeMap{Order: order, Verdicts: map[string]infer.TypeVerdict{}}
	for name, c := range cats {
		tm.Verdicts[name] = infer.TypeVerdict{Column: name, Category: c, Confidence: 1}
	}
	return tm
}

func TestIQROutlierBoundary(t *testing.T) {
	in, _ := input(t, config.Default(), floats(1, 2, 2, 3, 3, 3, 4, 4, 5, 100)...)
	s := analyzeNumeric(in)
	if s.Outliers == nil {
		t.Fatalf("no outlier report")
	}
	if diff := cmp.Diff([]float64{100}, s.Outliers.Values); diff != "" {
		t.Fatalf("outliers mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{9}, s.Outliers.Rows); diff != "" {
		t.Fatalf("outlier rows mismatch (-want +got):\n%s", diff)
	}
	approx(t, "q1", s.Q1, 2.25)
	approx(t, "q3", s.Q3, 4)
	approx(t, "upper", s.Outliers.Upper, 6.625)
}

func TestOutlierMethods(t *testing.T) {
	vals := floats(10, 11, 9, 10, 12, 10, 11, 9, 10, 50)
	for _, method := range []string{"zscore", "mad"} {
		cfg := config.Default()
		cfg.Analysis.OutlierDetection.Method = method
		cfg.Analysis.OutlierDetection.Threshold = 2.5
		in, _ := input(t, cfg, vals...)
		s := analyzeNumeric(in)
		if s.Outliers.Method != method || s.Outliers.Count != 1 || s.Outliers.Values[0] != 50 {
			t.Fatalf("%s: outliers = %+v, want only 50", method, s.Outliers)
		}
	}
}

func TestOutlierZeroSpreadWarns(t *testing.T) {
	cfg := config.Default()
	cfg.Analysis.OutlierDetection.Method = "mad"
	in, warns := input(t, cfg, floats(5, 5, 5, 5, 9)...)
	s := analyzeNumeric(in)
	if s.Outliers.Lower.Defined || s.Outliers.Count != 0 {
		t.Fatalf("outliers = %+v, want undefined bounds", s.Outliers)
	}
	found := false
	for _, w := range *warns {
		if w.Stat == "outliers" {
			found = true
		}
	}
	if !found {
		t.Fatalf("warnings = %v, want outliers warning", *warns)
	}
}

func TestNumericDistribution(t *testing.T) {
	in, warns := input(t, config.Default(), "1", "2", nil, "3", "4", "5", "oops", "0")
	s := analyzeNumeric(in)
	if s.Count != 6 || s.Missing != 1 || s.Invalid != 1 || s.Zeros != 1 {
		t.Fatalf("counts = %+v", s)
	}
	approx(t, "mean", s.Mean, 2.5)
	approx(t, "median", s.Median, 2.5)
	approx(t, "std", s.Std, math.Sqrt(3.5))
	approx(t, "skewness", s.Skewness, 0)
	approx(t, "kurtosis", s.Kurtosis, -1.2)
	approx(t, "min", s.Min, 0)
	approx(t, "max", s.Max, 5)
	if len(*warns) != 0 {
		t.Fatalf("warnings = %v, want none", *warns)
	}
}

func TestNumericUndefinedStats(t *testing.T) {
	in, warns := input(t, config.Default(), "7", nil)
	s := analyzeNumeric(in)
	approx(t, "mean", s.Mean, 7)
	if s.Std.Defined || s.Skewness.Defined || s.Kurtosis.Defined {
		t.Fatalf("single value: std/skew/kurt should be undefined: %+v", s)
	}
	if len(*warns) != 3 {
		t.Fatalf("warnings = %v, want 3", *warns)
	}

	in, warns = input(t, config.Default(), nil, nil)
	s = analyzeNumeric(in)
	if s.Mean.Defined || s.Count != 0 || s.MissingPct != 100 {
		t.Fatalf("empty numeric = %+v", s)
	}
	if len(*warns) != 1 {
		t.Fatalf("warnings = %v, want 1", *warns)
	}
}

func TestStatJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Stat `json:"a"`
		B Stat `json:"b"`
	}{A: defined(1.5)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"a":1.5,"b":null}` {
		t.Fatalf("json = %s", b)
	}
	var s Stat
	if err := json.Unmarshal([]byte("null"), &s); err != nil || s.Defined {
		t.Fatalf("unmarshal null = %+v, %v", s, err)
	}
}

func TestCategoricalTopK(t *testing.T) {
	cfg := config.Default()
	cfg.Analysis.Categorical.TopK = 3
	var vals []any
	for v, n := range map[string]int{"a": 5, "b": 4, "c": 3, "d": 2, "e": 1} {
		for i := 0; i < n; i++ {
			vals = append(vals, v)
		}
	}
	vals = append(vals, nil)
	in, _ := input(t, cfg, vals...)
	s := analyzeCategorical(in)
	want := []Frequency{
		{Value: "a", Count: 5, Pct: pct(5, 15)},
		{Value: "b", Count: 4, Pct: pct(4, 15)},
		{Value: OtherBucket, Count: 6, Pct: pct(6, 15)},
	}
	if diff := cmp.Diff(want, s.Frequencies); diff != "" {
		t.Fatalf("frequencies mismatch (-want +got):\n%s", diff)
	}
	if s.Mode != "a" || s.ModeCount != 5 || s.Cardinality != 5 || s.Missing != 1 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestCategoricalModeTieAndEntropy(t *testing.T) {
	in, _ := input(t, config.Default(), "y", "x", "y", "x")
	s := analyzeCategorical(in)
	if s.Mode != "x" {
		t.Fatalf("mode = %q, want x (lexicographic tie-break)", s.Mode)
	}
	approx(t, "entropy", s.Entropy, 1)

	in, _ = input(t, config.Default(), "only", "only")
	approx(t, "entropy", analyzeCategorical(in).Entropy, 0)
}

func TestDatetimeGranularity(t *testing.T) {
	cases := []struct {
		name string
		vals []any
		want string
	}{
		{"day", []any{"2024-01-01", "2024-01-02", "2024-01-05"}, "day"},
		{"week", []any{"2024-01-01", "2024-01-08", "2024-01-22"}, "week"},
		{"month", []any{"2024-01-01", "2024-02-01", "2024-05-01"}, "month"},
		{"year", []any{"2021-01-01", "2022-01-01", "2024-01-01"}, "year"},
		{"hour", []any{"2024-01-01 10:00", "2024-01-01 13:00"}, "hour"},
		{"minute", []any{"2024-01-01 10:15", "2024-01-01 10:30"}, "minute"},
		{"second", []any{"2024-01-01T10:15:01", "2024-01-01T10:15:07"}, "second"},
		{"monthly mid-month", []any{"2024-01-15", "2024-02-15", "2024-03-15", "2024-04-15", "2024-05-15"}, "month"},
		{"month ends", []any{"2024-01-31", "2024-02-29", "2024-04-30"}, "month"},
		{"yearly mid-year", []any{"2020-06-30", "2021-06-30", "2022-06-30"}, "year"},
		{"uneven", []any{"2024-01-15", "2024-02-15", "2024-02-20"}, "day"},
		{"single", []any{"2024-03-01", "2024-03-01"}, "day"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in, _ := input(t, config.Default(), c.vals...)
			s := analyzeDatetime(in)
			if s.Granularity != c.want {
				t.Fatalf("granularity = %q, want %q", s.Granularity, c.want)
			}
		})
	}
}

func TestDatetimeRangeAndDistributions(t *testing.T) {
	in, _ := input(t, config.Default(), "2024-01-01", nil, "2024-01-11", "garbage", "2023-12-31")
	s := analyzeDatetime(in)
	if s.Count != 3 || s.Missing != 1 || s.Invalid != 1 {
		t.Fatalf("counts = %+v", s)
	}
	approx(t, "range_days", s.RangeDays, 11)
	if s.Min.Year() != 2023 || s.Max.Day() != 11 {
		t.Fatalf("min/max = %v/%v", s.Min, s.Max)
	}
	want := []Frequency{{Value: "2023", Count: 1, Pct: pct(1, 3)}, {Value: "2024", Count: 2, Pct: pct(2, 3)}}
	if diff := cmp.Diff(want, s.Years); diff != "" {
		t.Fatalf("years mismatch (-want +got):\n%s", diff)
	}
	if len(s.Hours) != 0 {
		t.Fatalf("hours = %v, want none for date-only values", s.Hours)
	}
	iv := s.Intervals
	if iv == nil || iv.Count != 2 {
		t.Fatalf("intervals = %+v, want 2 gaps", iv)
	}
	approx(t, "interval min", iv.MinDays, 1)
	approx(t, "interval median", iv.MedianDays, 5.5)
	approx(t, "interval mean", iv.MeanDays, 5.5)
	approx(t, "interval max", iv.MaxDays, 10)
}

func TestDatetimeIntervalsNeedTwoValues(t *testing.T) {
	in, warns := input(t, config.Default(), "2024-01-01", nil)
	s := analyzeDatetime(in)
	if s.Intervals != nil {
		t.Fatalf("intervals = %+v, want none for one timestamp", s.Intervals)
	}
	if len(*warns) != 1 || (*warns)[0].Stat != "intervals" {
		t.Fatalf("warnings = %v, want one for intervals", *warns)
	}
}

func TestBooleanCounts(t *testing.T) {
	in, _ := input(t, config.Default(), "true", "false", "TRUE", nil, "yes")
	s := analyzeBoolean(in)
	if s.TrueCount != 3 || s.FalseCount != 1 || s.Missing != 1 {
		t.Fatalf("stats = %+v", s)
	}
	approx(t, "true_ratio", s.TrueRatio, 0.75)
}

func TestTextStats(t *testing.T) {
	cfg := config.Default()
	cfg.Analysis.TextAnalysis.MinDF = 2
	cfg.Analysis.TextAnalysis.NgramRange = []int{1, 2}
	in, _ := input(t, cfg,
		"great product, works great",
		"terrible product",
		"arrived on monday",
		nil,
	)
	s := analyzeText(in)
	if s.Count != 3 || s.Missing != 1 || s.TotalWords != 9 {
		t.Fatalf("counts = %+v", s)
	}
	// great*2 (0.8) + terrible (-1.0) over 9 tokens
	approx(t, "sentiment", s.Sentiment, (1.6-1.0)/9)
	if s.Positive != 1 || s.Negative != 1 || s.Neutral != 1 {
		t.Fatalf("doc sentiment = %d/%d/%d", s.Positive, s.Negative, s.Neutral)
	}
	want := []Term{{Term: "product", Count: 2, DocFreq: 2}}
	if diff := cmp.Diff(want, s.Terms); diff != "" {
		t.Fatalf("terms mismatch (-want +got):\n%s", diff)
	}
	approx(t, "min_length", s.MinLength, 16)
	approx(t, "avg_words", s.AvgWords, 3)
}

func TestTextCustomLexiconAndMaxFeatures(t *testing.T) {
	cfg := config.Default()
	cfg.Analysis.TextAnalysis.Lexicon = map[string]float64{"meh": -0.5}
	cfg.Analysis.TextAnalysis.MinDF = 1
	cfg.Analysis.TextAnalysis.MaxFeatures = 2
	cfg.Analysis.TextAnalysis.NgramRange = []int{1, 1}
	in, _ := input(t, cfg, "meh meh great", "a b c")
	s := analyzeText(in)
	approx(t, "sentiment", s.Sentiment, -1.0/6)
	if len(s.Terms) != 2 || s.Terms[0].Term != "meh" {
		t.Fatalf("terms = %+v", s.Terms)
	}
}

func TestIdentifierDuplicates(t *testing.T) {
	ds := dataset.MustNew("d", &dataset.Column{Name: "id", Values: []any{"1", "2", "2", "3", "3", "3"}})
	rec, err := Analyze(ds, typeMap([]string{"id"}, map[string]infer.Category{"id": infer.Identifier}), config.Default())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	s := rec.Columns["id"].Identifier
	if s.Unique || s.DuplicateValues != 2 {
		t.Fatalf("identifier = %+v", s)
	}
	if s.Duplicates[0].Value != "3" || s.Duplicates[0].Count != 3 {
		t.Fatalf("duplicates = %+v", s.Duplicates)
	}
	if len(rec.Warnings) != 1 || rec.Warnings[0].Code != diag.CodeIdentifierDuplicates {
		t.Fatalf("warnings = %v", rec.Warnings)
	}
}

func TestDispatchIsExhaustive(t *testing.T) {
	cfg := config.Default()
	for _, c := range infer.AllCategories() {
		in, _ := input(t, cfg, "1", "2")
		ca, err := analyzeColumn(c, in)
		if err != nil {
			t.Fatalf("category %v has no analyzer: %v", c, err)
		}
		populated := 0
		for _, p := range []bool{ca.Numeric != nil, ca.Categorical != nil, ca.Datetime != nil,
			ca.Boolean != nil, ca.Identifier != nil, ca.Text != nil} {
			if p {
				populated++
			}
		}
		want := 1
		if c == infer.Unknown {
			want = 0
		}
		if populated != want {
			t.Fatalf("category %v populated %d bundles, want %d", c, populated, want)
		}
	}
	in, _ := input(t, cfg, "1")
	if _, err := analyzeColumn(infer.Category(99), in); !errors.Is(err, diag.ErrNoAnalyzer) {
		t.Fatalf("unhandled category err = %v, want ErrNoAnalyzer", err)
	}
}

func TestAnalyzeUnknownAndMissingVerdict(t *testing.T) {
	ds := dataset.MustNew("d",
		&dataset.Column{Name: "x", Values: []any{"a", "b"}},
		&dataset.Column{Name: "y", Values: []any{"1", "2"}},
	)
	rec, err := Analyze(ds, typeMap([]string{"x", "y"}, map[string]infer.Category{"x": infer.Unknown, "y": infer.Numeric}), config.Default())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rec.Columns["x"].Note == "" {
		t.Fatalf("unknown column has no note")
	}
	if len(rec.Warnings) == 0 || rec.Warnings[0].Code != diag.CodeUnknownType {
		t.Fatalf("warnings = %v, want unknown_type_skipped first", rec.Warnings)
	}

	_, err = Analyze(ds, typeMap([]string{"x"}, map[string]infer.Category{"x": infer.Text}), config.Default())
	if !errors.Is(err, ErrMissingVerdict) {
		t.Fatalf("err = %v, want ErrMissingVerdict", err)
	}
}

func TestAnalyzeDoesNotMutate(t *testing.T) {
	vals := []any{"3", "1", "2"}
	ds := dataset.MustNew("d", &dataset.Column{Name: "n", Values: vals})
	if _, err := Analyze(ds, typeMap([]string{"n"}, map[string]infer.Category{"n": infer.Numeric}), config.Default()); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	col, _ := ds.Column("n")
	if diff := cmp.Diff([]any{"3", "1", "2"}, col.Values); diff != "" {
		t.Fatalf("values mutated (-want +got):\n%s", diff)
	}
}
