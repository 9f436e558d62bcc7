package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAnalyzeBatch_OutDirCollisionSuffix(t *testing.T) {
	home := isolateHome(t)
	// same basename in two directories
	p1 := filepath.Join(home, "d1", "metrics.csv")
	p2 := filepath.Join(home, "d2", "metrics.csv")
	writeCSV(t, p1)
	writeCSV(t, p2)
	outDir := filepath.Join(home, "summaries")

	runCmd(t, "analyze-batch", filepath.Join(home, "d*", "metrics.csv"), "--out-dir", outDir, "--quiet")

	b1 := filepath.Join(outDir, "metrics.summary.md")
	b2 := filepath.Join(outDir, "metrics__2.summary.md")
	for _, p := range []string{b1, b2} {
		body, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("missing summary: %v", err)
		}
		if !strings.Contains(string(body), "[SCHEMA]") {
			t.Fatalf("%s is not a rendered summary:\n%s", p, body)
		}
	}
}

func TestAnalyzeBatch_JSONAndSave(t *testing.T) {
	home := isolateHome(t)
	writeCSV(t, filepath.Join(home, "a.csv"))
	writeCSV(t, filepath.Join(home, "b.csv"))
	outDir := filepath.Join(home, "out")

	runCmd(t, "analyze-batch", filepath.Join(home, "*.csv"), filepath.Join(home, "a.csv"), "--out-dir", outDir, "--format", "json", "--save", "-q")

	for _, name := range []string{"a.summary.json", "b.summary.json"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	// a.csv matched twice but is analyzed once
	if _, err := os.Stat(filepath.Join(outDir, "a__2.summary.json")); err == nil {
		t.Fatalf("duplicate input analyzed twice")
	}
	list := runCmd(t, "history", "list")
	if !strings.Contains(list, "a.csv") || !strings.Contains(list, "b.csv") {
		t.Fatalf("runs not saved:\n%s", list)
	}
}

func TestAnalyzeBatch_NoMatches(t *testing.T) {
	home := isolateHome(t)
	if _, err := execCmd(t, "analyze-batch", filepath.Join(home, "*.csv")); err == nil {
		t.Fatalf("expected error for no matching inputs")
	}
}

func TestSlug(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Q1 Sales", "q1-sales"},
		{"  ", "sheet"},
		{"north_east-2", "north-east-2"},
	}
	for _, tc := range cases {
		if got := slug(tc.in); got != tc.want {
			t.Fatalf("slug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
