package analysis

import (
	_ "embed"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/KaramelBytes/autoeda/internal/dataset"
	"github.com/KaramelBytes/autoeda/internal/utils"
	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var lexiconYAML []byte

var defaultLexicon = mustLexicon(lexiconYAML)

func mustLexicon(b []byte) map[string]float64 {
	var m map[string]float64
	if err := yaml.Unmarshal(b, &m); err != nil {
		panic(fmt.Sprintf("embedded lexicon: %v", err))
	}
	return m
}

// DefaultLexicon returns a copy of the built-in sentiment lexicon.
func DefaultLexicon() map[string]float64 {
	out := make(map[string]float64, len(defaultLexicon))
	for k, v := range defaultLexicon {
		out[k] = v
	}
	return out
}

func analyzeText(in columnInput) *TextStats {
	ta := in.cfg.Analysis.TextAnalysis
	lex := ta.Lexicon
	if len(lex) == 0 {
		lex = defaultLexicon
	}
	lo, hi := 1, 1
	if len(ta.NgramRange) == 2 {
		lo, hi = ta.NgramRange[0], ta.NgramRange[1]
	}

	s := &TextStats{}
	var lengths, wordCounts []float64
	termCount := map[string]int{}
	docFreq := map[string]int{}
	vocab := map[string]struct{}{}
	var weight float64
	for _, v := range in.values {
		if dataset.IsMissing(v) {
			s.Missing++
			continue
		}
		doc := dataset.Text(v)
		if doc == "" {
			s.Empty++
		}
		words := utils.Words(doc)
		lengths = append(lengths, float64(utf8.RuneCountInString(doc)))
		wordCounts = append(wordCounts, float64(len(words)))
		s.TotalWords += len(words)

		var docWeight float64
		for _, w := range words {
			vocab[w] = struct{}{}
			docWeight += lex[w]
		}
		weight += docWeight
		switch {
		case docWeight > 0:
			s.Positive++
		case docWeight < 0:
			s.Negative++
		default:
			s.Neutral++
		}

		seen := map[string]struct{}{}
		for _, g := range utils.NGrams(words, lo, hi) {
			termCount[g]++
			if _, ok := seen[g]; !ok {
				seen[g] = struct{}{}
				docFreq[g]++
			}
		}
	}
	s.Count = len(lengths)
	s.UniqueWords = len(vocab)
	if s.Count == 0 {
		for _, stat := range []string{"length", "words", "sentiment"} {
			in.warn(stat, "no non-null values")
		}
		return s
	}

	s.MinLength, s.MaxLength, s.AvgLength, s.MedianLength = spread(lengths)
	s.MinWords, s.MaxWords, s.AvgWords, _ = spread(wordCounts)
	if s.TotalWords > 0 {
		s.Sentiment = defined(weight / float64(s.TotalWords))
	} else {
		in.warn("sentiment", "no word tokens")
	}
	s.Terms = topTerms(termCount, docFreq, ta.MinDF, ta.MaxFeatures)
	return s
}

// spread returns min, max, mean and median of vals.
func spread(vals []float64) (lo, hi, mean, median Stat) {
	var m moments
	for _, v := range vals {
		m.add(v)
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	return defined(m.min), defined(m.max), defined(m.mean), defined(quantile(sorted, 0.5))
}

// topTerms keeps terms in at least minDF documents, ranked by count desc then
// term asc, truncated to maxFeatures.
func topTerms(counts, df map[string]int, minDF, maxFeatures int) []Term {
	var out []Term
	for t, c := range counts {
		if df[t] < minDF {
			continue
		}
		out = append(out, Term{Term: t, Count: c, DocFreq: df[t]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Term < out[j].Term
		}
		return out[i].Count > out[j].Count
	})
	if maxFeatures > 0 && len(out) > maxFeatures {
		out = out[:maxFeatures]
	}
	return out
}
