package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/KaramelBytes/autoeda/internal/config"
	"github.com/KaramelBytes/autoeda/internal/dataset"
	"github.com/KaramelBytes/autoeda/internal/eda"
	"github.com/KaramelBytes/autoeda/internal/infer"
	"github.com/google/go-cmp/cmp"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func runFor(t *testing.T, name string, overrides map[string]infer.Category) *eda.Result {
	t.Helper()
	ds := dataset.MustNew(name,
		&dataset.Column{Name: "score", Values: []any{"3.5", "1.25", "9", "4.75", "6", "2.5"}},
		&dataset.Column{Name: "zone", Values: []any{"a", "b", "a", "a", "a", "b"}},
	)
	res, err := eda.Run(context.Background(), ds, config.Default(), overrides, eda.Options{By: "analyst"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	res := runFor(t, "a.csv", map[string]infer.Category{"zone": infer.Text})
	if err := s.Save(ctx, res); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get(ctx, res.RunID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "a.csv" || got.Rows != 6 {
		t.Fatalf("loaded run = %s/%d, want a.csv/6", got.Name, got.Rows)
	}
	if c := got.TypeMap.Category("zone"); c != infer.Text {
		t.Fatalf("zone = %v, want text", c)
	}
	if diff := cmp.Diff(res.Analysis.Columns["score"].Numeric, got.Analysis.Columns["score"].Numeric); diff != "" {
		t.Fatalf("numeric stats changed on reload (-saved +loaded):\n%s", diff)
	}

	audit, err := s.Overrides(ctx, res.RunID)
	if err != nil {
		t.Fatalf("Overrides: %v", err)
	}
	if len(audit) != 1 {
		t.Fatalf("audit = %+v, want one entry", audit)
	}
	e := audit[0]
	if e.Column != "zone" || e.Forced != infer.Text || e.Automatic != infer.Categorical || e.By != "analyst" {
		t.Fatalf("audit entry = %+v", e)
	}
}

func TestGetUnknown(t *testing.T) {
	s := openStore(t)
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	first := runFor(t, "first.csv", nil)
	second := runFor(t, "second.csv", map[string]infer.Category{"score": infer.Categorical})
	second.StartedAt = first.StartedAt.Add(time.Minute)
	for _, r := range []*eda.Result{first, second} {
		if err := s.Save(ctx, r); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	runs, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var names []string
	for _, r := range runs {
		names = append(names, r.Name)
	}
	if diff := cmp.Diff([]string{"second.csv", "first.csv"}, names); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if runs[0].Overrides != 1 || runs[1].Overrides != 0 || runs[0].Columns != 2 {
		t.Fatalf("summaries = %+v", runs)
	}
	if runs, _ := s.List(ctx, 1); len(runs) != 1 {
		t.Fatalf("limit ignored: %d runs", len(runs))
	}
	all, err := s.Overrides(ctx, "")
	if err != nil || len(all) != 1 {
		t.Fatalf("all overrides = %v, %v", all, err)
	}
}

func TestSaveDuplicateRunFails(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	res := runFor(t, "dup.csv", nil)
	if err := s.Save(ctx, res); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, res); err == nil {
		t.Fatalf("second Save of the same run id succeeded")
	}
}
