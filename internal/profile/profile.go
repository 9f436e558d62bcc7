// Package profile computes the per-column statistics that type inference
// scores against. Profiles are pure functions of the column values and the
// configuration.
package profile

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/KaramelBytes/autoeda/internal/config"
	"github.com/KaramelBytes/autoeda/internal/dataset"
	"github.com/KaramelBytes/autoeda/internal/diag"
	"github.com/google/uuid"
)

// ColumnProfile summarizes one column. NullRatio and DistinctRatio are taken
// over Total; every other ratio is taken over the non-null values.
type ColumnProfile struct {
	Name    string `json:"name" yaml:"name"`
	Total   int    `json:"total" yaml:"total"`
	Nulls   int    `json:"nulls" yaml:"nulls"`
	NonNull int    `json:"non_null" yaml:"non_null"`

	Distinct      int     `json:"distinct" yaml:"distinct"`
	NullRatio     float64 `json:"null_ratio" yaml:"null_ratio"`
	DistinctRatio float64 `json:"distinct_ratio" yaml:"distinct_ratio"`
	// Uniqueness is Distinct over the non-null count.
	Uniqueness float64 `json:"uniqueness" yaml:"uniqueness"`
	// BoolDistinct counts distinct parsed boolean values, so "Yes", "yes"
	// and "1" count once. Values outside the token sets are not counted.
	BoolDistinct int `json:"bool_distinct" yaml:"bool_distinct"`

	NumericRatio float64 `json:"numeric_ratio" yaml:"numeric_ratio"`
	IntegerRatio float64 `json:"integer_ratio" yaml:"integer_ratio"`
	DateRatio    float64 `json:"date_ratio" yaml:"date_ratio"`
	BoolRatio    float64 `json:"bool_ratio" yaml:"bool_ratio"`
	UUIDRatio    float64 `json:"uuid_ratio" yaml:"uuid_ratio"`
	MeanTokens   float64 `json:"mean_tokens" yaml:"mean_tokens"`

	// Monotonic is set when every non-null value is an integer (or a shared
	// prefix followed by digits) and the sequence strictly increases or decreases.
	Monotonic bool `json:"monotonic" yaml:"monotonic"`
	// LeadingZeros counts numeric-looking texts such as "007".
	LeadingZeros int `json:"leading_zeros,omitempty" yaml:"leading_zeros,omitempty"`

	Samples []string `json:"samples,omitempty" yaml:"samples,omitempty"`

	InsufficientData bool `json:"insufficient_data,omitempty" yaml:"insufficient_data,omitempty"`
}

// Profiler profiles columns with a fixed configuration.
type Profiler struct {
	cfg *config.Config
	p   *Parsers
}

// New returns a Profiler for cfg.
func New(cfg *config.Config) *Profiler {
	return &Profiler{cfg: cfg, p: NewParsers(cfg)}
}

// Parsers exposes the recognizers used for profiling so analyzers parse the
// same way inference did.
func (pr *Profiler) Parsers() *Parsers { return pr.p }

// Profile is a convenience for New(cfg).Profile(col).
func Profile(col *dataset.Column, cfg *config.Config) (*ColumnProfile, error) {
	return New(cfg).Profile(col)
}

var prefixedDigits = regexp.MustCompile(`^([A-Za-z]+[-_]?)(\d+)$`)

// Profile computes the column profile. A nil column yields an
// InsufficientDataError; an empty or all-null column yields a profile flagged
// InsufficientData.
func (pr *Profiler) Profile(col *dataset.Column) (*ColumnProfile, error) {
	if col == nil {
		return nil, &diag.InsufficientDataError{}
	}
	out := &ColumnProfile{Name: col.Name, Total: len(col.Values)}
	maxSamples := pr.cfg.TypeInference.SampleValues

	distinct := make(map[string]struct{})
	folded := make(map[bool]struct{})
	var numeric, integers, dates, bools, uuids, tokens int
	seq := monotonicTracker{}
	for _, v := range col.Values {
		if dataset.IsMissing(v) {
			out.Nulls++
			continue
		}
		out.NonNull++
		txt := dataset.Text(v)
		if _, seen := distinct[txt]; !seen {
			distinct[txt] = struct{}{}
			if len(out.Samples) < maxSamples {
				out.Samples = append(out.Samples, txt)
			}
		}

		if f, ok := pr.p.Number(v); ok {
			numeric++
			if isIntegral(f) {
				integers++
				seq.addInt(f)
			} else {
				seq.fail()
			}
			if _, isStr := v.(string); isStr && hasLeadingZero(txt) {
				out.LeadingZeros++
			}
		} else if m := prefixedDigits.FindStringSubmatch(txt); m != nil {
			n, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				seq.fail()
			} else {
				seq.addPrefixed(m[1], n)
			}
		} else {
			seq.fail()
		}
		if _, ok := pr.p.Time(v); ok {
			dates++
		}
		if b, ok := pr.p.Bool(v); ok {
			bools++
			folded[b] = struct{}{}
		}
		if s, isStr := v.(string); isStr {
			if _, err := uuid.Parse(strings.TrimSpace(s)); err == nil {
				uuids++
			}
		}
		tokens += len(strings.Fields(txt))
	}

	out.Distinct = len(distinct)
	out.BoolDistinct = len(folded)
	if out.Total > 0 {
		out.NullRatio = float64(out.Nulls) / float64(out.Total)
		out.DistinctRatio = float64(out.Distinct) / float64(out.Total)
	}
	if out.NonNull == 0 {
		out.InsufficientData = true
		return out, nil
	}
	nn := float64(out.NonNull)
	out.Uniqueness = float64(out.Distinct) / nn
	out.NumericRatio = float64(numeric) / nn
	out.IntegerRatio = float64(integers) / nn
	out.DateRatio = float64(dates) / nn
	out.BoolRatio = float64(bools) / nn
	out.UUIDRatio = float64(uuids) / nn
	out.MeanTokens = float64(tokens) / nn
	out.Monotonic = seq.ok() && out.NonNull >= 2
	return out, nil
}

func isIntegral(f float64) bool {
	return f == math.Trunc(f) && math.Abs(f) < 1<<53
}

func hasLeadingZero(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && s[1] >= '0' && s[1] <= '9'
}

// monotonicTracker checks for a strictly increasing or decreasing sequence.
type monotonicTracker struct {
	n       int
	prev    float64
	prefix  string
	kind    int // 0 unset, 1 integer, 2 prefixed
	up      bool
	down    bool
	invalid bool
}

func (m *monotonicTracker) fail() { m.invalid = true }

func (m *monotonicTracker) addInt(v float64) { m.add(1, "", v) }

func (m *monotonicTracker) addPrefixed(prefix string, v float64) { m.add(2, prefix, v) }

func (m *monotonicTracker) add(kind int, prefix string, v float64) {
	if m.invalid {
		return
	}
	if m.n == 0 {
		m.kind, m.prefix, m.prev = kind, prefix, v
		m.up, m.down = true, true
		m.n = 1
		return
	}
	if kind != m.kind || prefix != m.prefix {
		m.invalid = true
		return
	}
	if v <= m.prev {
		m.up = false
	}
	if v >= m.prev {
		m.down = false
	}
	m.prev = v
	m.n++
}

func (m *monotonicTracker) ok() bool {
	return !m.invalid && m.n >= 2 && (m.up || m.down)
}
