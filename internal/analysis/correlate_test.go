package analysis

import (
	"math"
	"testing"

	"github.com/KaramelBytes/autoeda/internal/config"
	"github.com/KaramelBytes/autoeda/internal/dataset"
	"github.com/KaramelBytes/autoeda/internal/diag"
	"github.com/KaramelBytes/autoeda/internal/infer"
	"github.com/google/go-cmp/cmp"
)

func numericFixture(t *testing.T) (*dataset.Dataset, *infer.TypeMap) {
	t.Helper()
	ds := dataset.MustNew("nums",
		&dataset.Column{Name: "x", Values: floats(1, 2, 3, 4, 5, 6)},
		&dataset.Column{Name: "y", Values: floats(2, 4, 6, 8, 10, 12.5)},
		&dataset.Column{Name: "z", Values: floats(6, 1, 5, 2, 4, 3)},
		&dataset.Column{Name: "label", Values: strs("a", "b", "a", "b", "a", "b")},
	)
	tm := typeMap(ds.Names(), map[string]infer.Category{
		"x": infer.Numeric, "y": infer.Numeric, "z": infer.Numeric, "label": infer.Categorical,
	})
	return ds, tm
}

func strs(ss ...string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func TestCorrelationSymmetryAndDiagonal(t *testing.T) {
	for _, method := range []string{"pearson", "spearman", "kendall"} {
		cfg := config.Default()
		cfg.Analysis.CorrelationMethod = method
		ds, tm := numericFixture(t)
		cm, err := Correlate(ds, tm, cfg)
		if err != nil {
			t.Fatalf("%s: Correlate: %v", method, err)
		}
		if diff := cmp.Diff([]string{"x", "y", "z"}, cm.Columns); diff != "" {
			t.Fatalf("%s: columns mismatch (-want +got):\n%s", method, diff)
		}
		for _, a := range cm.Columns {
			if r, ok := cm.Get(a, a); !ok || r != 1 {
				t.Fatalf("%s: diag(%s) = %v,%v", method, a, r, ok)
			}
			for _, b := range cm.Columns {
				ab, ok1 := cm.Get(a, b)
				ba, ok2 := cm.Get(b, a)
				if ok1 != ok2 || ab != ba {
					t.Fatalf("%s: corr(%s,%s)=%v but corr(%s,%s)=%v", method, a, b, ab, b, a, ba)
				}
			}
		}
		if _, ok := cm.Get("x", "label"); ok {
			t.Fatalf("%s: non-numeric column present in matrix", method)
		}
	}
}

func TestCorrelationValues(t *testing.T) {
	ds, tm := numericFixture(t)
	cfg := config.Default()
	cfg.Analysis.CorrelationMethod = "spearman"
	cm, err := Correlate(ds, tm, cfg)
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	if r, _ := cm.Get("x", "y"); math.Abs(r-1) > 1e-12 {
		t.Fatalf("spearman(x,y) = %v, want 1", r)
	}
	if len(cm.Strong) == 0 || cm.Strong[0].A != "x" || cm.Strong[0].B != "y" {
		t.Fatalf("strong = %+v, want x~y first", cm.Strong)
	}

	cfg.Analysis.CorrelationMethod = "kendall"
	cm, _ = Correlate(ds, tm, cfg)
	// z vs x: 6 concordant, 9 discordant pairs, no ties
	if r, _ := cm.Get("x", "z"); math.Abs(r-(-3.0/15)) > 1e-12 {
		t.Fatalf("kendall(x,z) = %v, want -0.2", r)
	}
}

func TestCorrelationOmitsSparseAndConstantPairs(t *testing.T) {
	ds := dataset.MustNew("sparse",
		&dataset.Column{Name: "a", Values: []any{1.0, 2.0, nil, nil}},
		&dataset.Column{Name: "b", Values: []any{nil, 5.0, 6.0, 7.0}},
		&dataset.Column{Name: "c", Values: []any{3.0, 3.0, 3.0, 3.0}},
		&dataset.Column{Name: "d", Values: []any{1.0, 2.0, 4.0, 3.0}},
	)
	tm := typeMap(ds.Names(), map[string]infer.Category{
		"a": infer.Numeric, "b": infer.Numeric, "c": infer.Numeric, "d": infer.Numeric,
	})
	cm, err := Correlate(ds, tm, config.Default())
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	if _, ok := cm.Get("a", "b"); ok {
		t.Fatalf("pair a,b with 1 overlapping row present")
	}
	if _, ok := cm.Get("c", "d"); ok {
		t.Fatalf("constant pair c,d present")
	}
	if _, ok := cm.Get("b", "d"); !ok {
		t.Fatalf("pair b,d missing")
	}
	omitted := 0
	for _, w := range cm.Warnings {
		if w.Code == diag.CodeCorrelationOmitted {
			omitted++
		}
	}
	// a~b (sparse), a~c, b~c, c~d (constant)
	if omitted != 4 {
		t.Fatalf("omitted warnings = %d, want 4: %v", omitted, cm.Warnings)
	}
}

func TestJointOutliers(t *testing.T) {
	ds := dataset.MustNew("joint",
		&dataset.Column{Name: "p", Values: floats(1, 2, 2, 3, 3, 3, 4, 4, 5, 100)},
		&dataset.Column{Name: "q", Values: floats(10, 11, 12, 13, 12, 11, 10, 12, 11, 90)},
		&dataset.Column{Name: "r", Values: floats(5, 6, 7, 5, 6, 7, 5, 6, 7, 6)},
	)
	tm := typeMap(ds.Names(), map[string]infer.Category{"p": infer.Numeric, "q": infer.Numeric, "r": infer.Numeric})
	cm, err := Correlate(ds, tm, config.Default())
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	want := []JointOutlier{{A: "p", B: "q", Rows: []int{9}}}
	if diff := cmp.Diff(want, cm.JointOutliers); diff != "" {
		t.Fatalf("joint outliers mismatch (-want +got):\n%s", diff)
	}
}

func TestRanksAverageTies(t *testing.T) {
	got := ranks([]float64{10, 20, 20, 5})
	if diff := cmp.Diff([]float64{2, 3.5, 3.5, 1}, got); diff != "" {
		t.Fatalf("ranks mismatch (-want +got):\n%s", diff)
	}
}
