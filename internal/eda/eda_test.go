package eda

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/autoeda/internal/config"
	"github.com/KaramelBytes/autoeda/internal/dataset"
	"github.com/KaramelBytes/autoeda/internal/diag"
	"github.com/KaramelBytes/autoeda/internal/infer"
)

func writeScenarioCSV(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("id,category,amount,is_active,signup_date,review\n")
	cats := []string{"A", "B", "C"}
	for i := 0; i < 20; i++ {
		amount := fmt.Sprintf("%.2f", float64((i*7)%20)+0.25)
		if i == 4 {
			amount = "NA"
		}
		fmt.Fprintf(&b, "%d,%s,%s,%t,2024-02-%02d,\"customer %d found the service quite good\"\n",
			i+1, cats[i%3], amount, i%2 == 0, i+1, i)
	}
	path := filepath.Join(t.TempDir(), "customers.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestRunEndToEnd(t *testing.T) {
	cfg := config.Default()
	ds, err := dataset.LoadFile(writeScenarioCSV(t), dataset.Options{NullValues: cfg.Input.NullValues})
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	res, err := Run(context.Background(), ds, cfg, map[string]infer.Category{"ghost": infer.Numeric}, Options{By: "tester"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := map[string]infer.Category{
		"id": infer.Identifier, "category": infer.Categorical, "amount": infer.Numeric,
		"is_active": infer.Boolean, "signup_date": infer.Datetime, "review": infer.Text,
	}
	for col, c := range want {
		if got := res.TypeMap.Category(col); got != c {
			t.Fatalf("%s = %v, want %v", col, got, c)
		}
	}
	num := res.Analysis.Columns["amount"].Numeric
	if num.Count != 19 || num.Missing != 1 {
		t.Fatalf("amount counts = %d/%d, want 19/1", num.Count, num.Missing)
	}
	if res.Analysis.Columns["review"].Text.Positive != 20 {
		t.Fatalf("review positive docs = %d, want 20", res.Analysis.Columns["review"].Text.Positive)
	}
	if got := res.Analysis.Columns["signup_date"].Datetime.Granularity; got != "day" {
		t.Fatalf("granularity = %q, want day", got)
	}
	if res.Correlations == nil || len(res.Correlations.Columns) != 1 {
		t.Fatalf("correlations = %+v, want one numeric column", res.Correlations)
	}
	if res.Associations == nil || len(res.Associations.Columns) != 1 || len(res.Associations.Pairs) != 0 {
		t.Fatalf("associations = %+v, want one categorical column and no pairs", res.Associations)
	}
	if iv := res.Analysis.Columns["signup_date"].Datetime.Intervals; iv == nil || iv.Count != 19 {
		t.Fatalf("signup_date intervals = %+v, want 19 gaps", iv)
	}
	var missing bool
	for _, w := range res.Warnings {
		if w.Code == diag.CodeOverrideTargetMissing && w.Column == "ghost" {
			missing = true
		}
	}
	if !missing {
		t.Fatalf("warnings = %v, want override_target_missing for ghost", res.Warnings)
	}
	if res.RunID == "" || res.Rows != 20 || res.AnalyzedRows != 20 {
		t.Fatalf("run header = %s/%d/%d", res.RunID, res.Rows, res.AnalyzedRows)
	}
}

func TestRunSamplesOnce(t *testing.T) {
	cfg := config.Default()
	cfg.Sampling.MaxRows = 8
	vals := make([]any, 40)
	for i := range vals {
		vals[i] = fmt.Sprint(i % 4)
	}
	ds := dataset.MustNew("big", &dataset.Column{Name: "code", Values: vals})
	res, err := Run(context.Background(), ds, cfg, nil, Options{ConfigWarnings: []string{`unknown config key "x" ignored`}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.AnalyzedRows != 8 || res.Rows != 40 {
		t.Fatalf("rows = %d/%d, want 8 of 40", res.AnalyzedRows, res.Rows)
	}
	counts := map[diag.Code]int{}
	for _, w := range res.Warnings {
		counts[w.Code]++
	}
	if counts[diag.CodeSampled] != 1 || counts[diag.CodeUnknownConfigKey] != 1 {
		t.Fatalf("warnings = %v", res.Warnings)
	}
	if res.Warnings[0].Code != diag.CodeUnknownConfigKey {
		t.Fatalf("config warnings should come first: %v", res.Warnings)
	}
}

func TestRunNoData(t *testing.T) {
	if _, err := Run(context.Background(), nil, config.Default(), nil, Options{}); !errors.Is(err, ErrNoData) {
		t.Fatalf("nil dataset err = %v, want ErrNoData", err)
	}
	empty := dataset.MustNew("empty")
	if _, err := Run(context.Background(), empty, config.Default(), nil, Options{}); !errors.Is(err, ErrNoData) {
		t.Fatalf("empty dataset err = %v, want ErrNoData", err)
	}
}
