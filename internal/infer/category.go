// Package infer decides the semantic type of every column of a dataset.
package infer

import (
	"fmt"
	"sort"
	"strings"
)

// Category is the closed set of semantic column types.
type Category int

const (
	Unknown Category = iota
	Numeric
	Categorical
	Datetime
	Boolean
	Identifier
	Text
)

var categoryNames = [...]string{
	Unknown:     "unknown",
	Numeric:     "numeric",
	Categorical: "categorical",
	Datetime:    "datetime",
	Boolean:     "boolean",
	Identifier:  "identifier",
	Text:        "text",
}

// AllCategories lists every category, Unknown first.
func AllCategories() []Category {
	out := make([]Category, len(categoryNames))
	for i := range categoryNames {
		out[i] = Category(i)
	}
	return out
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseCategory resolves a category name, case-insensitively.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range categoryNames {
		if n == s {
			return Category(i), nil
		}
	}
	return Unknown, fmt.Errorf("unknown category %q (valid: %s)", s, strings.Join(categoryNames[:], ", "))
}

func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseOverrides parses "column=category" pairs. A later pair for the same
// column replaces an earlier one.
func ParseOverrides(pairs []string) (map[string]Category, error) {
	out := make(map[string]Category, len(pairs))
	for _, p := range pairs {
		col, cat, ok := strings.Cut(p, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid override %q: want column=category", p)
		}
		c, err := ParseCategory(cat)
		if err != nil {
			return nil, fmt.Errorf("invalid override %q: %w", p, err)
		}
		out[col] = c
	}
	return out, nil
}

func sortedKeys(m map[string]Category) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
