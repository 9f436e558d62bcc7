package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Options controls how raw files become a Dataset.
type Options struct {
	// NullValues are trimmed cell texts that become the missing sentinel.
	NullValues []string
	// Delimiter for CSV. If 0, picks by extension (',' or '\t').
	Delimiter rune
	// SheetName / SheetIndex select an XLSX sheet; SheetIndex is 1-based.
	SheetName  string
	SheetIndex int
}

// Loader turns a file into a Dataset.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) (*Dataset, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates a format is not supported yet.
var ErrUnsupported = errors.New("unsupported dataset format")

// LoadFile selects a loader based on filename.
func LoadFile(path string, opt Options) (*Dataset, error) {
	for _, l := range registry {
		if l.CanLoad(path) {
			return l.Load(path, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
	Register(jsonLoader{})
}

// cellValue maps a raw cell text onto the missing sentinel or a trimmed string.
func cellValue(raw string, nulls map[string]struct{}) any {
	s := strings.TrimSpace(raw)
	if _, ok := nulls[s]; ok {
		return nil
	}
	return s
}

func nullSet(vals []string) map[string]struct{} {
	m := make(map[string]struct{}, len(vals)+1)
	m[""] = struct{}{}
	for _, v := range vals {
		m[strings.TrimSpace(v)] = struct{}{}
	}
	return m
}

// fromRows builds columns from a header and string rows, mapping null
// tokens to the missing sentinel.
func fromRows(name string, header []string, rows [][]string, opt Options) (*Dataset, error) {
	nulls := nullSet(opt.NullValues)
	vals := make([][]any, len(rows))
	for r, row := range rows {
		vals[r] = make([]any, len(row))
		for j, raw := range row {
			vals[r][j] = cellValue(raw, nulls)
		}
	}
	return fromValues(name, header, vals)
}

// fromValues builds columns from a header and already decoded rows. Short
// rows are padded with missing values; cells past the header are dropped.
func fromValues(name string, header []string, rows [][]any) (*Dataset, error) {
	cols := make([]*Column, len(header))
	seen := map[string]int{}
	for i, h := range header {
		n := strings.TrimSpace(h)
		if n == "" {
			n = fmt.Sprintf("column_%d", i+1)
		}
		// disambiguate repeated headers the way spreadsheets users expect
		if k, dup := seen[n]; dup {
			seen[n] = k + 1
			n = fmt.Sprintf("%s_%d", n, k+1)
		} else {
			seen[n] = 1
		}
		cols[i] = &Column{Name: n, Values: make([]any, len(rows))}
	}
	for r, row := range rows {
		for j := range cols {
			if j < len(row) {
				cols[j].Values[r] = row[j]
			}
		}
	}
	return New(name, cols...)
}
