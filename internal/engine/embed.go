package engine

import (
	"context"
	"math"
	"sort"
)

// Embedder converts a batch of texts into normalized vectors. Vectors are
// only guaranteed to share a feature space within a single call; vectors
// from separate calls must not be compared.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// maxLexicalFeatures bounds the lexical vectorizer's feature space
const maxLexicalFeatures = 5000

// LexicalEmbedder is the always-available fallback strategy. It fits a
// 1-2-gram frequency vectorizer jointly over the batch passed to each
// Embed call and L2-normalizes the resulting vectors.
type LexicalEmbedder struct{}

// NewLexicalEmbedder creates a lexical fallback embedder
func NewLexicalEmbedder() *LexicalEmbedder {
	return &LexicalEmbedder{}
}

// Embed fits the vectorizer on texts and returns one vector per text.
// It never fails; empty input yields an empty result.
func (e *LexicalEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	grams := make([][]string, len(texts))
	totals := make(map[string]int)
	for i, text := range texts {
		grams[i] = ngrams(Tokenize(text))
		for _, g := range grams[i] {
			totals[g]++
		}
	}

	features := selectFeatures(totals, maxLexicalFeatures)
	index := make(map[string]int, len(features))
	for i, f := range features {
		index[f] = i
	}

	vectors := make([][]float64, len(texts))
	for i := range texts {
		vec := make([]float64, len(features))
		for _, g := range grams[i] {
			if j, ok := index[g]; ok {
				vec[j]++
			}
		}
		vectors[i] = l2Normalize(vec)
	}
	return vectors, nil
}

// ngrams expands tokens into unigrams plus adjacent bigrams
func ngrams(tokens []string) []string {
	out := make([]string, 0, len(tokens)*2)
	out = append(out, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}

// selectFeatures keeps the most frequent grams, ties broken
// alphabetically, and returns them sorted for stable indexing.
func selectFeatures(totals map[string]int, limit int) []string {
	features := make([]string, 0, len(totals))
	for g := range totals {
		features = append(features, g)
	}
	if len(features) > limit {
		sort.Slice(features, func(i, j int) bool {
			if totals[features[i]] != totals[features[j]] {
				return totals[features[i]] > totals[features[j]]
			}
			return features[i] < features[j]
		})
		features = features[:limit]
	}
	sort.Strings(features)
	return features
}

func l2Normalize(vec []float64) []float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return vec
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// cosine computes cosine similarity between two vectors of equal length
func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// clamp01 guards cosine results against floating-point drift
func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}
