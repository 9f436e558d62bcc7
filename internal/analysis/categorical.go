package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/autoeda/internal/dataset"
)

// OtherBucket labels the folded tail of a frequency table.
const OtherBucket = "(other)"

// countValues tallies canonical value texts, skipping nulls.
func countValues(values []any) (counts map[string]int, n, missing int) {
	counts = map[string]int{}
	for _, v := range values {
		if dataset.IsMissing(v) {
			missing++
			continue
		}
		counts[dataset.Text(v)]++
		n++
	}
	return
}

// sortedFrequencies orders buckets by count desc, then value asc.
func sortedFrequencies(counts map[string]int, total int) []Frequency {
	out := make([]Frequency, 0, len(counts))
	for k, c := range counts {
		out = append(out, Frequency{Value: k, Count: c, Pct: pct(c, total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	return out
}

func analyzeCategorical(in columnInput) *CategoricalStats {
	counts, n, missing := countValues(in.values)
	s := &CategoricalStats{Count: n, Missing: missing, Cardinality: len(counts)}
	if n == 0 {
		in.warn("mode", "no non-null values")
		in.warn("entropy", "no non-null values")
		return s
	}
	freqs := sortedFrequencies(counts, n)
	s.Mode, s.ModeCount, s.ModePct = freqs[0].Value, freqs[0].Count, freqs[0].Pct

	var h float64
	for _, f := range freqs {
		p := float64(f.Count) / float64(n)
		h -= p * math.Log2(p)
	}
	s.Entropy = defined(h)

	topK := in.cfg.Analysis.Categorical.TopK
	if topK > 0 && len(freqs) > topK {
		keep := freqs[:topK-1]
		rest := 0
		for _, f := range freqs[topK-1:] {
			rest += f.Count
		}
		freqs = append(keep[:len(keep):len(keep)], Frequency{Value: OtherBucket, Count: rest, Pct: pct(rest, n)})
	}
	s.Frequencies = freqs
	return s
}
