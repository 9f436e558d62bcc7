// Package report renders a finished run as a compact Markdown summary.
package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/autoeda/internal/analysis"
	"github.com/KaramelBytes/autoeda/internal/eda"
	"github.com/KaramelBytes/autoeda/internal/infer"
	"github.com/KaramelBytes/autoeda/internal/utils"
)

const (
	maxFrequencies = 5
	maxTerms       = 8
	maxPairs       = 10
)

// Markdown renders the dataset summary, the per-column schema with its
// statistics, correlations, associations and run notes.
func Markdown(r *eda.Result) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if r.AnalyzedRows > 0 && r.AnalyzedRows < r.Rows {
		b.WriteString(fmt.Sprintf("Rows: %d (sampled %d)\n", r.Rows, r.AnalyzedRows))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	}
	if r.TypeMap != nil {
		b.WriteString(fmt.Sprintf("Columns: %d\n", len(r.TypeMap.Order)))
	}
	b.WriteString(fmt.Sprintf("Run: %s\n\n", r.RunID))

	if r.TypeMap != nil {
		b.WriteString("[SCHEMA]\n")
		for _, name := range r.TypeMap.Order {
			writeColumn(&b, r, name)
		}
	}

	if cm := r.Correlations; cm != nil && len(cm.Pairs) > 0 {
		b.WriteString(fmt.Sprintf("\n[CORRELATIONS] (%s)\n", cm.Method))
		pairs := cm.Strong
		if len(pairs) == 0 {
			pairs = cm.Pairs
		}
		for i, p := range pairs {
			if i == maxPairs {
				break
			}
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f (n=%d)\n", safeName(p.A), safeName(p.B), p.R, p.N))
		}
		for _, jo := range cm.JointOutliers {
			b.WriteString(fmt.Sprintf("- joint outliers %s & %s: %d rows\n", safeName(jo.A), safeName(jo.B), len(jo.Rows)))
		}
	}

	if am := r.Associations; am != nil && len(am.Pairs) > 0 {
		b.WriteString(fmt.Sprintf("\n[ASSOCIATIONS] (%s)\n", am.Method))
		for i, p := range am.Pairs {
			if i == maxPairs {
				break
			}
			b.WriteString(fmt.Sprintf("- %s ~ %s: v=%.3f (n=%d)\n", safeName(p.A), safeName(p.B), p.R, p.N))
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(safeVal(w.String()))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeColumn(b *strings.Builder, r *eda.Result, name string) {
	v, _ := r.TypeMap.Get(name)
	b.WriteString(fmt.Sprintf("- %s: %s (confidence %.2f", safeName(name), v.Category, v.Confidence))
	if _, ok := r.TypeMap.Audit(name); ok {
		b.WriteString(", overridden")
	}
	if p := r.TypeMap.Profiles[name]; p != nil && p.Total > 0 {
		b.WriteString(fmt.Sprintf(", missing %.1f%%", p.NullRatio*100))
	}
	b.WriteString(")")

	var ca *analysis.ColumnAnalysis
	if r.Analysis != nil {
		ca = r.Analysis.Columns[name]
	}
	if ca == nil {
		b.WriteString("\n")
		return
	}
	switch ca.Category {
	case infer.Numeric:
		s := ca.Numeric
		b.WriteString(fmt.Sprintf(" — min %s, median %s, max %s, mean %s, std %s", s.Min, s.Median, s.Max, s.Mean, s.Std))
		if o := s.Outliers; o != nil && o.Count > 0 {
			b.WriteString(fmt.Sprintf("; outliers: %d outside [%s, %s] (%s)", o.Count, o.Lower, o.Upper, o.Method))
		}
	case infer.Categorical:
		s := ca.Categorical
		b.WriteString(fmt.Sprintf(" — unique=%d", s.Cardinality))
		if len(s.Frequencies) > 0 {
			b.WriteString("; top: ")
			writeFrequencies(b, s.Frequencies)
		}
	case infer.Datetime:
		s := ca.Datetime
		if s.Min != nil && s.Max != nil {
			b.WriteString(fmt.Sprintf(" — %s to %s (%s days, %s)", s.Min.Format("2006-01-02"), s.Max.Format("2006-01-02"), s.RangeDays, s.Granularity))
		}
		if iv := s.Intervals; iv != nil {
			b.WriteString(fmt.Sprintf("; gaps min %s, median %s, max %s days", iv.MinDays, iv.MedianDays, iv.MaxDays))
		}
	case infer.Boolean:
		s := ca.Boolean
		b.WriteString(fmt.Sprintf(" — true %d, false %d (ratio %s)", s.TrueCount, s.FalseCount, s.TrueRatio))
	case infer.Identifier:
		s := ca.Identifier
		if s.Unique {
			b.WriteString(" — unique")
		} else {
			b.WriteString(fmt.Sprintf(" — %d duplicated values", s.DuplicateValues))
		}
	case infer.Text:
		s := ca.Text
		b.WriteString(fmt.Sprintf(" — avg %s chars, %s words; sentiment %s", s.AvgLength, s.AvgWords, s.Sentiment))
		if len(s.Terms) > 0 {
			b.WriteString("; terms: ")
			for i, t := range s.Terms {
				if i == maxTerms {
					break
				}
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(t.Term), t.Count))
			}
		}
	default:
		if ca.Note != "" {
			b.WriteString(" — " + safeVal(ca.Note))
		}
	}
	b.WriteString("\n")
}

func writeFrequencies(b *strings.Builder, fs []analysis.Frequency) {
	for i, f := range fs {
		if i == maxFrequencies {
			b.WriteString(", ...")
			return
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(fmt.Sprintf("%s(%d)", safeVal(utils.Truncate(f.Value, 40)), f.Count))
	}
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
