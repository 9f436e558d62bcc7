package infer

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/KaramelBytes/autoeda/internal/config"
	"github.com/KaramelBytes/autoeda/internal/profile"
)

// RuleResult is the outcome of one classification rule.
type RuleResult struct {
	Rule       Category `json:"rule" yaml:"rule"`
	Passed     bool     `json:"passed" yaml:"passed"`
	Skipped    bool     `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Ratio      float64  `json:"ratio" yaml:"ratio"`
	Threshold  float64  `json:"threshold" yaml:"threshold"`
	Confidence float64  `json:"confidence" yaml:"confidence"`
	Note       string   `json:"note,omitempty" yaml:"note,omitempty"`
}

// TypeVerdict is the classification of one column.
type TypeVerdict struct {
	Column     string       `json:"column" yaml:"column"`
	Category   Category     `json:"category" yaml:"category"`
	Confidence float64      `json:"confidence" yaml:"confidence"`
	Rationale  []string     `json:"rationale" yaml:"rationale"`
	Rules      []RuleResult `json:"rules" yaml:"rules"`
}

// Rule order. Thresholds are tunable; the order is not.
var ruleOrder = []Category{Identifier, Boolean, Datetime, Numeric, Categorical, Text}

// minUUIDRatio is the share of UUID-shaped values that counts as a patterned identifier.
const minUUIDRatio = 0.9

// Classify applies the ordered decision policy to a profile. Every rule is
// evaluated and recorded; the first passing rule decides the category.
func Classify(p *profile.ColumnProfile, cfg *config.Config) TypeVerdict {
	v := TypeVerdict{Column: p.Name}
	if p.InsufficientData {
		for _, r := range ruleOrder {
			v.Rules = append(v.Rules, RuleResult{Rule: r, Skipped: true, Note: "no non-null values"})
		}
		v.Category = Unknown
		v.Rationale = []string{"insufficient_data"}
		return v
	}

	ti := cfg.TypeInference
	winner := -1
	for _, rule := range ruleOrder {
		var res RuleResult
		switch rule {
		case Identifier:
			res = identifierRule(p, ti)
		case Boolean:
			res = RuleResult{Rule: Boolean, Ratio: p.BoolRatio, Threshold: ti.BooleanThreshold, Confidence: p.BoolRatio}
			res.Passed = p.BoolRatio >= ti.BooleanThreshold && p.BoolDistinct <= 2
			if p.BoolRatio >= ti.BooleanThreshold && p.BoolDistinct > 2 {
				res.Note = fmt.Sprintf("%d distinct values > 2", p.BoolDistinct)
			}
		case Datetime:
			res = RuleResult{Rule: Datetime, Ratio: p.DateRatio, Threshold: ti.DateThreshold, Confidence: p.DateRatio}
			if !ti.DateInference {
				res.Skipped = true
				res.Note = "date inference disabled"
			} else {
				res.Passed = p.DateRatio >= ti.DateThreshold
			}
		case Numeric:
			thr := cfg.NumericThreshold()
			res = RuleResult{Rule: Numeric, Ratio: p.NumericRatio, Threshold: thr, Confidence: p.NumericRatio,
				Note: "strictness " + ti.NumericDetectionStrictness}
			res.Passed = p.NumericRatio >= thr
		case Categorical:
			res = categoricalRule(p, ti)
		case Text:
			res = RuleResult{Rule: Text, Ratio: p.MeanTokens, Threshold: ti.TextTokenThreshold,
				Confidence: math.Min(1, p.MeanTokens/ti.TextTokenThreshold)}
			res.Passed = p.MeanTokens >= ti.TextTokenThreshold && p.Uniqueness >= ti.TextMinDistinctRatio
			if p.MeanTokens >= ti.TextTokenThreshold && !res.Passed {
				res.Note = fmt.Sprintf("uniqueness %.2f < %.2f", p.Uniqueness, ti.TextMinDistinctRatio)
			}
		}
		v.Rules = append(v.Rules, res)
		if res.Passed && winner < 0 {
			winner = len(v.Rules) - 1
		}
	}

	if winner < 0 {
		v.Category = Unknown
		v.Rationale = []string{"no_rule_passed"}
		if c := closest(v.Rules); c != "" {
			v.Rationale = append(v.Rationale, c)
		}
		return v
	}
	w := v.Rules[winner]
	v.Category = w.Rule
	v.Confidence = clamp01(w.Confidence)
	v.Rationale = append([]string{w.Rule.String()}, signals(p, w)...)
	return v
}

func identifierRule(p *profile.ColumnProfile, ti config.TypeInference) RuleResult {
	res := RuleResult{Rule: Identifier, Ratio: p.DistinctRatio, Threshold: ti.IDUniquenessThreshold, Confidence: p.DistinctRatio}
	if !ti.IDDetection {
		res.Skipped = true
		res.Note = "id detection disabled"
		return res
	}
	patterned := p.Monotonic || p.UUIDRatio >= minUUIDRatio
	named := IDLikeName(p.Name)
	res.Passed = p.DistinctRatio >= ti.IDUniquenessThreshold && (patterned || named)
	if p.DistinctRatio >= ti.IDUniquenessThreshold && !res.Passed {
		res.Note = "unique but neither patterned nor id-like name"
	}
	return res
}

func categoricalRule(p *profile.ColumnProfile, ti config.TypeInference) RuleResult {
	res := RuleResult{Rule: Categorical, Ratio: p.DistinctRatio, Threshold: ti.CategoricalThreshold}
	byRatio := p.DistinctRatio <= ti.CategoricalThreshold
	// the cardinality cap only applies to repeating values, never to near-unique ones
	byCap := ti.CategoricalMaxDistinct > 0 && p.Distinct <= ti.CategoricalMaxDistinct &&
		p.Uniqueness < ti.TextMinDistinctRatio
	if byRatio {
		res.Confidence = math.Max(0, 1-p.DistinctRatio/ti.CategoricalThreshold)
	}
	if byCap {
		capConf := 1 - float64(p.Distinct)/float64(ti.CategoricalMaxDistinct+1)
		if capConf > res.Confidence {
			res.Confidence = capConf
		}
		if !byRatio {
			res.Note = fmt.Sprintf("%d distinct values <= cap %d", p.Distinct, ti.CategoricalMaxDistinct)
		}
	}
	res.Passed = byRatio || byCap
	return res
}

// signals lists the supporting tags of the winning rule.
func signals(p *profile.ColumnProfile, w RuleResult) []string {
	var out []string
	switch w.Rule {
	case Identifier:
		if p.Monotonic {
			out = append(out, "monotonic_sequence")
		}
		if p.UUIDRatio >= minUUIDRatio {
			out = append(out, "uuid_values")
		}
		if IDLikeName(p.Name) {
			out = append(out, "id_like_name")
		}
	case Numeric:
		if p.IntegerRatio == 1 {
			out = append(out, "integer_values")
		}
		if p.LeadingZeros > 0 {
			out = append(out, "leading_zeros")
		}
	case Categorical:
		if w.Note != "" {
			out = append(out, "cardinality_cap")
		} else {
			out = append(out, "low_distinct_ratio")
		}
	}
	if p.NullRatio > 0 {
		out = append(out, fmt.Sprintf("null_ratio=%.2f", p.NullRatio))
	}
	return out
}

// closest names the failed rule nearest to its threshold.
func closest(rules []RuleResult) string {
	best, bestScore := -1, -1.0
	for i, r := range rules {
		if r.Skipped || r.Threshold <= 0 {
			continue
		}
		score := r.Ratio / r.Threshold
		if r.Rule == Categorical {
			// upper-bound rule: smaller ratios are closer
			if r.Ratio == 0 {
				continue
			}
			score = r.Threshold / r.Ratio
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return ""
	}
	r := rules[best]
	op := ">="
	if r.Rule == Categorical {
		op = "<="
	}
	return fmt.Sprintf("closest=%s(%.3f %s %.3f)", r.Rule, r.Ratio, op, r.Threshold)
}

// IDLikeName reports whether a column name reads as an identifier: its last
// word is id, key, uuid or guid ("id", "user_id", "customerId", "order-key").
func IDLikeName(name string) bool {
	words := splitWords(name)
	if len(words) == 0 {
		return false
	}
	switch words[len(words)-1] {
	case "id", "key", "uuid", "guid", "pk":
		return true
	}
	return false
}

// splitWords splits on separators and camelCase boundaries, lowercasing.
func splitWords(s string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, strings.ToLower(cur.String()))
			cur.Reset()
		}
	}
	rs := []rune(s)
	for i, r := range rs {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(rs[i-1]) ||
			(i+1 < len(rs) && unicode.IsLower(rs[i+1]) && unicode.IsUpper(rs[i-1]))):
			flush()
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return words
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}
