package report

import (
	"context"
	"strings"
	"testing"

	"github.com/KaramelBytes/autoeda/internal/analysis"
	"github.com/KaramelBytes/autoeda/internal/config"
	"github.com/KaramelBytes/autoeda/internal/dataset"
	"github.com/KaramelBytes/autoeda/internal/diag"
	"github.com/KaramelBytes/autoeda/internal/eda"
	"github.com/KaramelBytes/autoeda/internal/infer"
)

func runFixture(t *testing.T) *eda.Result {
	t.Helper()
	ds := dataset.MustNew("sales.csv",
		&dataset.Column{Name: "price", Values: []any{"1.5", "2.5", "3.5", "4.5", "5.5", "6.5"}},
		&dataset.Column{Name: "qty", Values: []any{"4", "2", "8", "6", "13", "10"}},
		&dataset.Column{Name: "region", Values: []any{"north", "south", "north", "south", "north", "north"}},
	)
	res, err := eda.Run(context.Background(), ds, config.Default(),
		map[string]infer.Category{"region": infer.Categorical}, eda.Options{ConfigWarnings: []string{`unknown config key "x" ignored`}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func TestMarkdownSections(t *testing.T) {
	out := Markdown(runFixture(t))
	for _, want := range []string{
		"[DATASET SUMMARY]\nFile: sales.csv\nRows: 6\nColumns: 3\n",
		"[SCHEMA]\n",
		"- price: numeric (confidence 1.00",
		"- region: categorical (confidence 1.00, overridden",
		"unique=2; top: north(4), south(2)",
		"[CORRELATIONS] (pearson)",
		"- price ~ qty: r=",
		"[NOTES]\n- [unknown_config_key]",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdownWithoutAnalysis(t *testing.T) {
	r := &eda.Result{Name: "x", Rows: 10, AnalyzedRows: 4, Warnings: []diag.Warning{{Code: diag.CodeSampled, Message: "a|b\nc"}}}
	out := Markdown(r)
	if !strings.Contains(out, "Rows: 10 (sampled 4)") {
		t.Fatalf("sampled row line missing:\n%s", out)
	}
	if strings.Contains(out, "[SCHEMA]") {
		t.Fatalf("schema rendered without a type map:\n%s", out)
	}
	if !strings.Contains(out, "- [sampled] a/b c\n") {
		t.Fatalf("note not sanitized:\n%s", out)
	}
}

func TestMarkdownAssociations(t *testing.T) {
	r := &eda.Result{Name: "x", Rows: 10, Associations: &analysis.AssociationMatrix{
		Method:  "cramers_v",
		Columns: []string{"plan", "tier"},
		Pairs:   []analysis.Pair{{A: "plan", B: "tier", R: 1, N: 10}},
	}}
	out := Markdown(r)
	if !strings.Contains(out, "[ASSOCIATIONS] (cramers_v)\n- plan ~ tier: v=1.000 (n=10)\n") {
		t.Fatalf("associations missing:\n%s", out)
	}
}

func TestSafeName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  ", "(unnamed)"},
		{" amount ", "amount"},
	}
	for _, tc := range cases {
		if got := safeName(tc.in); got != tc.want {
			t.Fatalf("safeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
