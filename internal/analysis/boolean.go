package analysis

import "github.com/KaramelBytes/autoeda/internal/dataset"

func analyzeBoolean(in columnInput) *BooleanStats {
	s := &BooleanStats{}
	for _, v := range in.values {
		if dataset.IsMissing(v) {
			s.Missing++
			continue
		}
		b, ok := in.parsers.Bool(v)
		switch {
		case !ok:
			s.Invalid++
		case b:
			s.TrueCount++
		default:
			s.FalseCount++
		}
	}
	s.Count = s.TrueCount + s.FalseCount
	if s.Count == 0 {
		in.warn("true_ratio", "no boolean values")
		return s
	}
	s.TrueRatio = defined(float64(s.TrueCount) / float64(s.Count))
	return s
}
