package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/autoeda/internal/dataset"
	"github.com/KaramelBytes/autoeda/internal/diag"
	"github.com/KaramelBytes/autoeda/internal/infer"
)

// AssociationMatrix holds bias-corrected Cramér's V between categorical
// columns. V lies in [0, 1]; pairs that cannot be scored are absent.
type AssociationMatrix struct {
	Method   string         `json:"method" yaml:"method"`
	Columns  []string       `json:"columns" yaml:"columns"`
	Pairs    []Pair         `json:"pairs" yaml:"pairs"`
	Warnings []diag.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Get returns V for (a, b) in either order; the diagonal is 1.
func (m *AssociationMatrix) Get(a, b string) (float64, bool) {
	if a == b {
		for _, c := range m.Columns {
			if c == a {
				return 1, true
			}
		}
		return 0, false
	}
	for _, p := range m.Pairs {
		if (p.A == a && p.B == b) || (p.A == b && p.B == a) {
			return p.R, true
		}
	}
	return 0, false
}

// CategoricalAssociations scores every pair of categorical columns over the
// rows where both hold a value.
func CategoricalAssociations(ds *dataset.Dataset, tm *infer.TypeMap) (*AssociationMatrix, error) {
	if ds == nil || tm == nil {
		return nil, &diag.InsufficientDataError{}
	}
	am := &AssociationMatrix{Method: "cramers_v", Columns: tm.Columns(infer.Categorical)}
	cols := make([]*dataset.Column, len(am.Columns))
	for i, name := range am.Columns {
		col, ok := ds.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingVerdict, name)
		}
		cols[i] = col
	}
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			a, b := am.Columns[i], am.Columns[j]
			v, n, reason := cramersV(cols[i].Values, cols[j].Values)
			if reason != "" {
				am.Warnings = append(am.Warnings, diag.Warning{
					Code:    diag.CodeCorrelationOmitted,
					Column:  a,
					Stat:    "association:" + b,
					Message: reason,
				})
				continue
			}
			am.Pairs = append(am.Pairs, Pair{A: a, B: b, R: v, N: n})
		}
	}
	sort.SliceStable(am.Pairs, func(i, j int) bool { return am.Pairs[i].R > am.Pairs[j].R })
	return am, nil
}

// cramersV builds the contingency table of x against y and applies the
// Bergsma bias correction. A non-empty reason means V is undefined.
func cramersV(x, y []any) (float64, int, string) {
	type cell struct{ a, b string }
	table := map[cell]float64{}
	rows := map[string]float64{}
	cols := map[string]float64{}
	n := 0
	for i := range x {
		if i >= len(y) || dataset.IsMissing(x[i]) || dataset.IsMissing(y[i]) {
			continue
		}
		a, b := dataset.Text(x[i]), dataset.Text(y[i])
		table[cell{a, b}]++
		rows[a]++
		cols[b]++
		n++
	}
	if n < 2 {
		return 0, n, fmt.Sprintf("%d overlapping observations, need at least 2", n)
	}
	if len(rows) < 2 || len(cols) < 2 {
		return 0, n, "a single level in at least one column"
	}
	nf := float64(n)
	var chi2 float64
	for a, ra := range rows {
		for b, cb := range cols {
			expected := ra * cb / nf
			d := table[cell{a, b}] - expected
			chi2 += d * d / expected
		}
	}
	r, k := float64(len(rows)), float64(len(cols))
	phi2 := math.Max(0, chi2/nf-(k-1)*(r-1)/(nf-1))
	rc := r - (r-1)*(r-1)/(nf-1)
	kc := k - (k-1)*(k-1)/(nf-1)
	denom := math.Min(kc-1, rc-1)
	if denom <= 0 {
		return 0, n, ""
	}
	return math.Min(1, math.Sqrt(phi2/denom)), n, ""
}
