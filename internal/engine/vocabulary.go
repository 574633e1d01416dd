package engine

import (
	"regexp"
	"sort"
	"strings"
)

// defaultSkillTerms is the built-in skill vocabulary. Terms are canonical,
// lowercase, and may span multiple words. The set can be extended from
// configuration at startup but is immutable for the process lifetime.
var defaultSkillTerms = []string{
	"python", "java", "javascript", "typescript", "react", "vue", "angular", "node", "fastapi",
	"django", "flask", "sql", "postgresql", "mysql", "mongodb", "redis", "docker", "kubernetes",
	"aws", "azure", "gcp", "tensorflow", "pytorch", "machine learning", "deep learning", "nlp",
	"pandas", "numpy", "scikit-learn", "git", "ci/cd", "graphql", "rest", "microservices", "linux",
	"spark", "hadoop", "airflow", "tableau", "power bi", "communication", "leadership", "agile",
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeText lowercases, collapses whitespace and trims a document
func NormalizeText(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(strings.ToLower(text), " "))
}

// Vocabulary is a fixed set of recognized skill terms with precompiled
// boundary-match patterns. Matching is exact whole-word/whole-phrase only;
// no stemming or fuzzy matching, so set arithmetic between resume and JD
// skills stays explainable.
type Vocabulary struct {
	terms    []string
	patterns []*regexp.Regexp
}

// NewVocabulary builds a vocabulary from the built-in term set plus any
// extra terms. Duplicates and empty terms are dropped; terms are stored
// sorted so extraction output is deterministic.
func NewVocabulary(extra ...string) *Vocabulary {
	seen := make(map[string]struct{}, len(defaultSkillTerms)+len(extra))
	terms := make([]string, 0, len(defaultSkillTerms)+len(extra))

	for _, t := range defaultSkillTerms {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			terms = append(terms, t)
		}
	}
	for _, t := range extra {
		t = NormalizeText(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			terms = append(terms, t)
		}
	}

	sort.Strings(terms)

	patterns := make([]*regexp.Regexp, len(terms))
	for i, t := range terms {
		patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(t) + `\b`)
	}

	return &Vocabulary{terms: terms, patterns: patterns}
}

// Terms returns the canonical term list in sorted order
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Extract returns the sorted subset of the vocabulary present in text.
// Multi-word terms match as a contiguous literal sequence on normalized text.
func (v *Vocabulary) Extract(text string) []string {
	normalized := NormalizeText(text)

	var found []string
	for i, t := range v.terms {
		if v.patterns[i].MatchString(normalized) {
			found = append(found, t)
		}
	}
	// terms are stored sorted, so found is already sorted
	return found
}
