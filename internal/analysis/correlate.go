package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/autoeda/internal/config"
	"github.com/KaramelBytes/autoeda/internal/dataset"
	"github.com/KaramelBytes/autoeda/internal/diag"
	"github.com/KaramelBytes/autoeda/internal/infer"
	"github.com/KaramelBytes/autoeda/internal/profile"
)

// Pair is one off-diagonal entry of a correlation matrix; A precedes B in
// dataset order. N is the number of overlapping observations.
type Pair struct {
	A string  `json:"a" yaml:"a"`
	B string  `json:"b" yaml:"b"`
	R float64 `json:"r" yaml:"r"`
	N int     `json:"n" yaml:"n"`
}

// JointOutlier lists rows outside both columns' outlier bounds.
type JointOutlier struct {
	A    string `json:"a" yaml:"a"`
	B    string `json:"b" yaml:"b"`
	Rows []int  `json:"rows" yaml:"rows"`
}

// CorrelationMatrix is symmetric over numeric columns. Pairs without enough
// overlapping data are absent, never zero.
type CorrelationMatrix struct {
	Method        string         `json:"method" yaml:"method"`
	Columns       []string       `json:"columns" yaml:"columns"`
	Pairs         []Pair         `json:"pairs" yaml:"pairs"`
	Strong        []Pair         `json:"strong,omitempty" yaml:"strong,omitempty"`
	JointOutliers []JointOutlier `json:"joint_outliers,omitempty" yaml:"joint_outliers,omitempty"`
	Warnings      []diag.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Get returns the coefficient for (a, b) in either order. The diagonal is 1
// for every numeric column.
func (m *CorrelationMatrix) Get(a, b string) (float64, bool) {
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

// Correlate computes pairwise correlations over rows where both numeric
// columns hold a parseable value, plus optional joint outliers.
func Correlate(ds *dataset.Dataset, tm *infer.TypeMap, cfg *config.Config) (*CorrelationMatrix, error) {
	if ds == nil || tm == nil {
		return nil, &diag.InsufficientDataError{}
	}
	method := cfg.Analysis.CorrelationMethod
	if method == "" {
		method = "pearson"
	}
	cm := &CorrelationMatrix{Method: method, Columns: tm.Columns(infer.Numeric)}
	parsers := profile.NewParsers(cfg)

	series := make([][]float64, len(cm.Columns))
	for i, name := range cm.Columns {
		col, ok := ds.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingVerdict, name)
		}
		series[i] = numericSeries(col, parsers)
	}

	for i := 0; i < len(cm.Columns); i++ {
		for j := i + 1; j < len(cm.Columns); j++ {
			a, b := cm.Columns[i], cm.Columns[j]
			xs, ys := overlap(series[i], series[j])
			if len(xs) < 2 {
				cm.omit(a, b, fmt.Sprintf("%d overlapping observations, need at least 2", len(xs)))
				continue
			}
			r, ok := coefficient(method, xs, ys)
			if !ok {
				cm.omit(a, b, "zero variance in at least one column")
				continue
			}
			cm.Pairs = append(cm.Pairs, Pair{A: a, B: b, R: r, N: len(xs)})
		}
	}

	thr := cfg.Analysis.StrongCorrelationThreshold
	for _, p := range cm.Pairs {
		if math.Abs(p.R) >= thr {
			cm.Strong = append(cm.Strong, p)
		}
	}
	sort.SliceStable(cm.Strong, func(i, j int) bool {
		return math.Abs(cm.Strong[i].R) > math.Abs(cm.Strong[j].R)
	})

	od := cfg.Analysis.OutlierDetection
	if od.Enabled && od.Joint {
		cm.JointOutliers = jointOutliers(cm.Columns, series, od.Method, od.Threshold)
	}
	return cm, nil
}

func (m *CorrelationMatrix) omit(a, b, reason string) {
	m.Warnings = append(m.Warnings, diag.Warning{
		Code:    diag.CodeCorrelationOmitted,
		Column:  a,
		Stat:    "correlation:" + b,
		Message: reason,
	})
}

// numericSeries parses a column, NaN marking missing or unparseable rows.
func numericSeries(col *dataset.Column, p *profile.Parsers) []float64 {
	out := make([]float64, len(col.Values))
	for i, v := range col.Values {
		f, ok := math.NaN(), false
		if !dataset.IsMissing(v) {
			f, ok = p.Number(v)
		}
		if !ok {
			f = math.NaN()
		}
		out[i] = f
	}
	return out
}

func overlap(x, y []float64) (xs, ys []float64) {
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return
}

func coefficient(method string, xs, ys []float64) (float64, bool) {
	switch method {
	case "spearman":
		return pearson(ranks(xs), ranks(ys))
	case "kendall":
		return kendall(xs, ys)
	default:
		return pearson(xs, ys)
	}
}

// pairAcc holds the running sums of a Pearson correlation.
type pairAcc struct {
	n, sumX, sumY, sumXX, sumYY, sumXY float64
}

func pearson(xs, ys []float64) (float64, bool) {
	// center first so large offsets do not cancel catastrophically
	mx, my := mean(xs), mean(ys)
	var pa pairAcc
	for i := range xs {
		x, y := xs[i]-mx, ys[i]-my
		pa.n++
		pa.sumX += x
		pa.sumY += y
		pa.sumXX += x * x
		pa.sumYY += y * y
		pa.sumXY += x * y
	}
	denom := math.Sqrt((pa.n*pa.sumXX - pa.sumX*pa.sumX) * (pa.n*pa.sumYY - pa.sumY*pa.sumY))
	if denom == 0 || math.IsNaN(denom) {
		return 0, false
	}
	return clampUnit((pa.n*pa.sumXY - pa.sumX*pa.sumY) / denom), true
}

// ranks assigns 1-based ranks, averaging ties.
func ranks(vals []float64) []float64 {
	idx := make([]int, len(vals))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return vals[idx[a]] < vals[idx[b]] })
	out := make([]float64, len(vals))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && vals[idx[j+1]] == vals[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}

// kendall computes tau-b, which corrects for ties in either variable.
func kendall(xs, ys []float64) (float64, bool) {
	var concordant, discordant, tiesX, tiesY float64
	for i := 0; i < len(xs); i++ {
		for j := i + 1; j < len(xs); j++ {
			dx := xs[i] - xs[j]
			dy := ys[i] - ys[j]
			switch {
			case dx == 0 && dy == 0:
			case dx == 0:
				tiesX++
			case dy == 0:
				tiesY++
			case (dx > 0) == (dy > 0):
				concordant++
			default:
				discordant++
			}
		}
	}
	denom := math.Sqrt((concordant + discordant + tiesX) * (concordant + discordant + tiesY))
	if denom == 0 {
		return 0, false
	}
	return clampUnit((concordant - discordant) / denom), true
}

func jointOutliers(cols []string, series [][]float64, method string, k float64) []JointOutlier {
	fences := make([]fence, len(cols))
	okf := make([]bool, len(cols))
	for i, s := range series {
		var vals []float64
		for _, v := range s {
			if !math.IsNaN(v) {
				vals = append(vals, v)
			}
		}
		fences[i], okf[i] = fenceFor(vals, method, k)
	}
	var out []JointOutlier
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			if !okf[i] || !okf[j] {
				continue
			}
			var rows []int
			for r := range series[i] {
				x, y := series[i][r], series[j][r]
				if math.IsNaN(x) || math.IsNaN(y) {
					continue
				}
				if fences[i].outside(x) && fences[j].outside(y) {
					rows = append(rows, r)
				}
			}
			if len(rows) > 0 {
				out = append(out, JointOutlier{A: cols[i], B: cols[j], Rows: rows})
			}
		}
	}
	return out
}

func mean(vals []float64) float64 {
	var s float64
	for _, v := range vals {
		s += v
	}
	return s / float64(len(vals))
}

func clampUnit(r float64) float64 {
	return math.Max(-1, math.Min(1, r))
}
