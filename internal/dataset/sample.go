package dataset

import (
	"math/rand/v2"
	"sort"
)

// Sample returns a dataset with at most maxRows rows chosen uniformly without
// replacement. Row order is preserved and the choice depends only on seed, so
// the same inputs always yield the same sample. If the dataset already fits,
// it is returned unchanged.
func (d *Dataset) Sample(maxRows int, seed int64) *Dataset {
	if maxRows <= 0 || d.rows <= maxRows {
		return d
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	perm := make([]int, d.rows)
	for i := range perm {
		perm[i] = i
	}
	// partial Fisher-Yates: the first maxRows slots become the sample
	for i := 0; i < maxRows; i++ {
		j := i + rng.IntN(d.rows-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	picked := perm[:maxRows]
	sort.Ints(picked)

	out := &Dataset{Name: d.Name, index: d.index, rows: maxRows}
	out.columns = make([]*Column, len(d.columns))
	for i, c := range d.columns {
		vals := make([]any, maxRows)
		for k, r := range picked {
			vals[k] = c.Values[r]
		}
		out.columns[i] = &Column{Name: c.Name, Values: vals}
	}
	return out
}
