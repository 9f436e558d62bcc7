package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Stat is a statistic that may be undefined for the data at hand, for example
// the standard deviation of a single value. Undefined stats encode as null.
type Stat struct {
	Value   float64
	Defined bool
}

func defined(v float64) Stat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Stat{}
	}
	return Stat{Value: v, Defined: true}
}

func (s Stat) String() string {
	if !s.Defined {
		return "n/a"
	}
	return fmt.Sprintf("%.4g", s.Value)
}

func (s Stat) MarshalJSON() ([]byte, error) {
	if !s.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

func (s *Stat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = Stat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = Stat{Value: v, Defined: true}
	return nil
}

func (s Stat) MarshalYAML() (any, error) {
	if !s.Defined {
		return nil, nil
	}
	return s.Value, nil
}

// moments accumulates mean and central moments in one pass (Welford/Terriberry).
type moments struct {
	n                float64
	mean, m2, m3, m4 float64
	min, max         float64
}

func (m *moments) add(x float64) {
	if m.n == 0 {
		m.min, m.max = x, x
	}
	if x < m.min {
		m.min = x
	}
	if x > m.max {
		m.max = x
	}
	n1 := m.n
	m.n++
	delta := x - m.mean
	deltaN := delta / m.n
	deltaN2 := deltaN * deltaN
	term1 := delta * deltaN * n1
	m.mean += deltaN
	m.m4 += term1*deltaN2*(m.n*m.n-3*m.n+3) + 6*deltaN2*m.m2 - 4*deltaN*m.m3
	m.m3 += term1*deltaN*(m.n-2) - 3*deltaN*m.m2
	m.m2 += term1
}

// std is the sample (n-1) standard deviation.
func (m *moments) std() Stat {
	if m.n < 2 {
		return Stat{}
	}
	return defined(math.Sqrt(m.m2 / (m.n - 1)))
}

// skewness is the adjusted Fisher-Pearson coefficient; needs n >= 3 and spread.
func (m *moments) skewness() Stat {
	if m.n < 3 || m.m2 == 0 {
		return Stat{}
	}
	n := m.n
	g1 := math.Sqrt(n) * m.m3 / math.Pow(m.m2, 1.5)
	return defined(math.Sqrt(n*(n-1)) / (n - 2) * g1)
}

// kurtosis is the bias-corrected excess kurtosis; needs n >= 4 and spread.
func (m *moments) kurtosis() Stat {
	if m.n < 4 || m.m2 == 0 {
		return Stat{}
	}
	n := m.n
	g2 := n*m.m4/(m.m2*m.m2) - 3
	return defined((n - 1) / ((n - 2) * (n - 3)) * ((n+1)*g2 + 6))
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

// quantile interpolates linearly between closest ranks of sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) * 100 / float64(whole)
}
