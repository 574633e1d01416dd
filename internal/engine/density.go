package engine

import (
	"math"
	"regexp"
	"strings"
)

// tokenRe is a permissive word pattern: leading letter followed by
// letters, digits and the symbol characters common in skill names
// (c++, ci/cd, c#, node.js).
var tokenRe = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9+\-/#.]*`)

// Tokenize splits text into lowercase word-like units
func Tokenize(text string) []string {
	return tokenRe.FindAllString(strings.ToLower(text), -1)
}

// KeywordDensity computes per-keyword occurrence frequency as a percentage
// of total tokens, rounded to 3 decimals.
//
// Single-word keywords are counted per token. Multi-word keywords are
// counted as literal substring occurrences in the lowercased raw text,
// still divided by the token total. The mixed counting basis is an
// inherited behavioral contract; unifying it would shift scores.
func KeywordDensity(text string, keywords []string) map[string]float64 {
	tokens := Tokenize(text)
	total := len(tokens)
	if total == 0 {
		total = 1
	}

	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}

	lowered := strings.ToLower(text)

	density := make(map[string]float64, len(keywords))
	for _, keyword := range keywords {
		kw := strings.ToLower(keyword)
		if strings.ContainsRune(kw, ' ') {
			occurrences := strings.Count(lowered, kw)
			density[keyword] = round3(float64(occurrences) / float64(total) * 100)
		} else {
			density[keyword] = round3(float64(counts[kw]) / float64(total) * 100)
		}
	}
	return density
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
