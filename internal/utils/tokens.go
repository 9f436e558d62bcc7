package utils

import (
	"regexp"
	"strings"
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+(?:'[\p{L}]+)?`)

// Words lowercases text and returns its word tokens in order. Punctuation is
// dropped; in-word apostrophes are kept ("don't").
func Words(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

// NGrams returns every n-gram of words for lo <= n <= hi, joined by a space.
// Shorter n come first; within one n, grams keep word order.
func NGrams(words []string, lo, hi int) []string {
	if lo < 1 {
		lo = 1
	}
	var out []string
	for n := lo; n <= hi; n++ {
		for i := 0; i+n <= len(words); i++ {
			out = append(out, strings.Join(words[i:i+n], " "))
		}
	}
	return out
}

// Truncate shortens text to at most limit runes, marking the cut with "...".
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
