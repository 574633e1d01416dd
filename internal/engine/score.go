package engine

import (
	"context"
	"math"
	"sort"
	"time"

	talentalignErrors "talentalign/internal/errors"
	"talentalign/internal/types"
)

// Score weights of the hybrid formula
const (
	semanticWeight  = 0.60
	coverageWeight  = 0.25
	alignmentWeight = 0.15

	strictPenaltyMax = 15.0

	baseConfidence       = 0.95
	confidencePerNote    = 0.12
	confidenceMaxPenalty = 0.35
	confidenceFloor      = 0.55

	minSkillSignal = 3
	minTextSignal  = 400
)

// Config tunes non-scoring engine behavior. Scoring weights are fixed;
// changing them silently would invalidate persisted results.
type Config struct {
	MaxHeatmapPoints int
	TopSections      int
	ChunkPreviewLen  int
	CacheTTL         time.Duration
}

// DefaultConfig returns the stock engine tuning
func DefaultConfig() Config {
	return Config{
		MaxHeatmapPoints: 12,
		TopSections:      5,
		ChunkPreviewLen:  140,
		CacheTTL:         300 * time.Second,
	}
}

// SimilarityProvider is the embedding collaborator the engine depends on
type SimilarityProvider interface {
	Embedder
	Similarity(ctx context.Context, textA, textB string) (float64, error)
}

// Engine orchestrates skill extraction, keyword density, semantic
// similarity and insight generation into a single assessment. It is safe
// for concurrent use; the comparison cache and the similarity backend are
// its only shared mutable state.
type Engine struct {
	backend SimilarityProvider
	vocab   *Vocabulary
	cfg     Config
	logger  *talentalignErrors.Logger
	cache   *comparisonCache
}

// New creates an Engine around a similarity backend and vocabulary
func New(backend SimilarityProvider, vocab *Vocabulary, cfg Config, logger *talentalignErrors.Logger) *Engine {
	if cfg.MaxHeatmapPoints <= 0 {
		cfg.MaxHeatmapPoints = 12
	}
	if cfg.TopSections <= 0 {
		cfg.TopSections = 5
	}
	if cfg.ChunkPreviewLen <= 0 {
		cfg.ChunkPreviewLen = 140
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 300 * time.Second
	}
	return &Engine{
		backend: backend,
		vocab:   vocab,
		cfg:     cfg,
		logger:  logger,
		cache:   newComparisonCache(cfg.CacheTTL),
	}
}

// keywordAlignment measures how closely resume keyword densities track the
// JD's, averaged over keywords the JD actually uses. Gaps are capped at
// 100% per keyword. Returns 0 when no keyword has positive JD density.
func keywordAlignment(resumeDensity, jdDensity map[string]float64) float64 {
	if len(jdDensity) == 0 {
		return 0
	}
	var totalGap float64
	anyPositive := false
	for key, jdV := range jdDensity {
		if jdV <= 0 {
			continue
		}
		anyPositive = true
		totalGap += math.Min(1, math.Abs(jdV-resumeDensity[key])/jdV)
	}
	if !anyPositive {
		return 0
	}
	avgGap := totalGap / math.Max(1, float64(len(jdDensity)))
	return math.Max(0, 1-avgGap)
}

// intersectSorted returns a ∩ b for sorted string slices
func intersectSorted(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// subtractSorted returns a − b for sorted string slices
func subtractSorted(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := set[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

// unionSorted returns the sorted union of two sorted string slices
func unionSorted(a, b []string) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		set[s] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Analyze scores a resume against a job description. It never fails on
// well-formed non-empty text: sparse skill signal lowers confidence and
// adds reliability notes instead of erroring. Callers validate minimum
// text length and mode before invoking.
func (e *Engine) Analyze(ctx context.Context, resumeText, jdText string, mode types.AnalysisMode) (*types.AnalysisResult, error) {
	semantic, err := e.backend.Similarity(ctx, resumeText, jdText)
	if err != nil {
		return nil, err
	}

	resumeSkills := e.vocab.Extract(resumeText)
	jdSkills := e.vocab.Extract(jdText)

	overlap := intersectSorted(resumeSkills, jdSkills)
	missing := subtractSorted(jdSkills, resumeSkills)

	tracked := unionSorted(resumeSkills, jdSkills)
	resumeDensity := KeywordDensity(resumeText, tracked)
	jdDensity := KeywordDensity(jdText, tracked)

	alignment := keywordAlignment(resumeDensity, jdDensity)
	coverage := float64(len(overlap)) / math.Max(1, float64(len(jdSkills)))

	base := semantic*100*semanticWeight + coverage*100*coverageWeight + alignment*100*alignmentWeight

	explanation := "Hybrid score = 60% semantic + 25% skill coverage + 15% keyword alignment."
	if mode == types.ModeStrict {
		explanation = "Hybrid score = 60% semantic + 25% skill coverage + 15% keyword alignment, with strict penalty for missing JD skills."
		if len(jdSkills) > 0 {
			base = math.Max(0, base-strictPenaltyMax*(1-coverage))
		}
	}
	score := round2(clamp(base, 0, 100))

	var notes []string
	if len(jdSkills) < minSkillSignal {
		notes = append(notes, "Low JD skill signal: include more explicit skills in job description.")
	}
	if len(resumeSkills) < minSkillSignal {
		notes = append(notes, "Low resume skill signal: parser extracted few recognized skills.")
	}
	if len(jdText) < minTextSignal {
		notes = append(notes, "Short JD text can reduce reliability; use full role description.")
	}
	if len(resumeText) < minTextSignal {
		notes = append(notes, "Short resume text can reduce reliability; upload complete resume.")
	}

	confidence := baseConfidence - math.Min(confidenceMaxPenalty, float64(len(notes))*confidencePerNote)
	confidence = round2(math.Max(confidenceFloor, confidence))

	heatmap, err := e.generateHeatmap(ctx, resumeText, jdText)
	if err != nil {
		return nil, err
	}

	result := &types.AnalysisResult{
		Score:               score,
		Mode:                mode,
		ScoreExplanation:    explanation,
		Confidence:          confidence,
		ReliabilityNotes:    notes,
		OverlappingSkills:   overlap,
		MissingSkills:       missing,
		Strengths:           buildStrengths(overlap, score),
		Suggestions:         buildSuggestions(missing, score),
		KeywordDensity:      buildKeywordBreakdown(resumeDensity, jdDensity),
		HeatmapData:         heatmap,
		TopMatchingSections: e.topMatchingSections(heatmap),
		Metrics: types.ScoreMetrics{
			SemanticSimilarity: round2(semantic * 100),
			SkillCoverage:      round2(coverage * 100),
			KeywordAlignment:   round2(alignment * 100),
		},
	}

	if e.logger != nil {
		e.logger.Debug("Analysis completed",
			"score", result.Score,
			"mode", string(mode),
			"overlap_count", len(overlap),
			"missing_count", len(missing),
			"reliability_notes", len(notes))
	}

	return result, nil
}
