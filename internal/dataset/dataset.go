package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Column is a named, ordered sequence of raw values. A nil value is the
// missing-value sentinel; every other value is a scalar of unknown native type
// (string, bool, the int/uint/float kinds, or time.Time).
type Column struct {
	Name   string
	Values []any
}

// Dataset is an immutable set of equally long columns with unique names.
type Dataset struct {
	Name    string
	columns []*Column
	index   map[string]int
	rows    int
}

// ErrDuplicateColumn is returned when two columns share a name.
var ErrDuplicateColumn = errors.New("duplicate column name")

// New builds a Dataset. Columns shorter than the longest one are padded with
// missing values so every column has the same row count.
func New(name string, cols ...*Column) (*Dataset, error) {
	d := &Dataset{Name: name, index: make(map[string]int, len(cols))}
	for _, c := range cols {
		if len(c.Values) > d.rows {
			d.rows = len(c.Values)
		}
	}
	for i, c := range cols {
		if _, dup := d.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		vals := c.Values
		if len(vals) < d.rows {
			padded := make([]any, d.rows)
			copy(padded, vals)
			vals = padded
		}
		d.columns = append(d.columns, &Column{Name: c.Name, Values: vals})
		d.index[c.Name] = i
	}
	return d, nil
}

// MustNew is New for static fixtures.
func MustNew(name string, cols ...*Column) *Dataset {
	d, err := New(name, cols...)
	if err != nil {
		panic(err)
	}
	return d
}

// Names returns the column names in dataset order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.columns))
	for i, c := range d.columns {
		out[i] = c.Name
	}
	return out
}

// Column returns the named column.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.columns[i], true
}

// Columns returns the columns in dataset order. Callers must not mutate them.
func (d *Dataset) Columns() []*Column { return d.columns }

// Rows returns the row count.
func (d *Dataset) Rows() int { return d.rows }

// Len returns the column count.
func (d *Dataset) Len() int { return len(d.columns) }

// IsMissing reports whether v is the missing-value sentinel. NaN floats count as missing.
func IsMissing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// Text renders a non-missing value in the canonical string form used for
// distinct counting and pattern parsing.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
