package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// jsonLoader reads an array of flat JSON objects (records orientation).
type jsonLoader struct{}

func (jsonLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".json")
}

func (jsonLoader) Load(path string, opt Options) (*Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	return ReadJSONRecords(filepath.Base(path), b, opt)
}

// ReadJSONRecords keeps native JSON scalars: numbers become int64 or float64,
// booleans stay bool, null is missing. Nested values are kept as compact JSON text.
func ReadJSONRecords(name string, data []byte, opt Options) (*Dataset, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode json records: %w", err)
	}
	nulls := nullSet(opt.NullValues)

	var order []string
	cols := map[string]*Column{}
	for _, rec := range records {
		for k := range rec {
			if _, ok := cols[k]; !ok {
				cols[k] = &Column{Name: k, Values: make([]any, len(records))}
				order = append(order, k)
			}
		}
	}
	sortFirstSeen(order, records)

	for r, rec := range records {
		for k, v := range rec {
			cols[k].Values[r] = jsonScalar(v, nulls)
		}
	}
	out := make([]*Column, len(order))
	for i, k := range order {
		out[i] = cols[k]
	}
	return New(name, out...)
}

func jsonScalar(v any, nulls map[string]struct{}) any {
	switch x := v.(type) {
	case nil:
		return nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case string:
		return cellValue(x, nulls)
	case bool:
		return x
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}

// sortFirstSeen orders keys by the first record containing them, then by name.
func sortFirstSeen(keys []string, records []map[string]any) {
	first := make(map[string]int, len(keys))
	for i, rec := range records {
		for k := range rec {
			if _, ok := first[k]; !ok {
				first[k] = i
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if first[a] != first[b] {
			return first[a] < first[b]
		}
		return a < b
	})
}
