package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/autoeda/internal/dataset"
)

// numericValues extracts parsed values and their row indices, skipping nulls.
func numericValues(in columnInput) (vals []float64, rows []int, missing, invalid int) {
	for i, v := range in.values {
		if dataset.IsMissing(v) {
			missing++
			continue
		}
		f, ok := in.parsers.Number(v)
		if !ok {
			invalid++
			continue
		}
		vals = append(vals, f)
		rows = append(rows, i)
	}
	return
}

func analyzeNumeric(in columnInput) *NumericStats {
	vals, rows, missing, invalid := numericValues(in)
	s := &NumericStats{
		Count:      len(vals),
		Missing:    missing,
		MissingPct: pct(missing, len(in.values)),
		Invalid:    invalid,
	}
	if len(vals) == 0 {
		in.warn("distribution", "no numeric values after null removal")
		return s
	}
	var m moments
	for _, v := range vals {
		m.add(v)
		if v == 0 {
			s.Zeros++
		}
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	s.Mean = defined(m.mean)
	s.Min = defined(m.min)
	s.Max = defined(m.max)
	s.Q1 = defined(quantile(sorted, 0.25))
	s.Median = defined(quantile(sorted, 0.5))
	s.Q3 = defined(quantile(sorted, 0.75))
	s.Std = m.std()
	if !s.Std.Defined {
		in.warn("std", "needs at least 2 values")
	}
	s.Skewness = m.skewness()
	if !s.Skewness.Defined {
		in.warn("skewness", "needs at least 3 values with nonzero spread")
	}
	s.Kurtosis = m.kurtosis()
	if !s.Kurtosis.Defined {
		in.warn("kurtosis", "needs at least 4 values with nonzero spread")
	}

	od := in.cfg.Analysis.OutlierDetection
	if od.Enabled {
		s.Outliers = detectOutliers(vals, rows, sorted, &m, od.Method, od.Threshold, in.warn)
	}
	return s
}

// fence is the closed interval of non-outlying values.
type fence struct {
	lower, upper float64
}

func (f fence) outside(v float64) bool { return v < f.lower || v > f.upper }

// outlierFence computes bounds for the method. ok is false when the spread
// the method relies on is zero or undefined.
func outlierFence(sorted []float64, m *moments, method string, k float64) (fence, bool, string) {
	switch method {
	case "zscore":
		sd := m.std()
		if !sd.Defined || sd.Value == 0 {
			return fence{}, false, "standard deviation is zero or undefined"
		}
		return fence{m.mean - k*sd.Value, m.mean + k*sd.Value}, true, ""
	case "mad":
		median, mad := medianMAD(sorted)
		if mad == 0 {
			return fence{}, false, "median absolute deviation is zero"
		}
		// robust z = 0.6745 * (x - median) / MAD
		w := k * mad / 0.6745
		return fence{median - w, median + w}, true, ""
	default:
		q1, q3 := quantile(sorted, 0.25), quantile(sorted, 0.75)
		iqr := q3 - q1
		return fence{q1 - k*iqr, q3 + k*iqr}, true, ""
	}
}

func detectOutliers(vals []float64, rows []int, sorted []float64, m *moments, method string, k float64, warn func(stat, reason string)) *OutlierReport {
	if method == "" {
		method = "iqr"
	}
	rep := &OutlierReport{Method: method, Threshold: k}
	f, ok, reason := outlierFence(sorted, m, method, k)
	if !ok {
		warn("outliers", reason)
		return rep
	}
	rep.Lower, rep.Upper = defined(f.lower), defined(f.upper)
	for i, v := range vals {
		if f.outside(v) {
			rep.Count++
			rep.Rows = append(rep.Rows, rows[i])
			rep.Values = append(rep.Values, v)
		}
	}
	return rep
}

// fenceFor recomputes a column's fence from raw values; used by joint outliers.
func fenceFor(vals []float64, method string, k float64) (fence, bool) {
	if len(vals) == 0 {
		return fence{}, false
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	var m moments
	for _, v := range vals {
		m.add(v)
	}
	f, ok, _ := outlierFence(sorted, &m, method, k)
	if ok && (math.IsNaN(f.lower) || math.IsNaN(f.upper)) {
		return fence{}, false
	}
	return f, ok
}
