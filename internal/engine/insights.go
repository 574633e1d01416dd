package engine

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"talentalign/internal/types"
)

var sentenceRe = regexp.MustCompile(`[.!?]\s+`)

// SplitSentences segments text on sentence-terminal punctuation followed
// by whitespace, trimming and dropping empty parts. The terminator stays
// attached to its sentence.
func SplitSentences(text string) []string {
	var parts []string
	rest := text
	for {
		loc := sentenceRe.FindStringIndex(rest)
		if loc == nil {
			break
		}
		parts = append(parts, rest[:loc[0]+1])
		rest = rest[loc[1]:]
	}
	parts = append(parts, rest)

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// truncateChunk caps a chunk preview at n bytes
func truncateChunk(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// generateHeatmap builds the full pairwise similarity grid between resume
// and JD sentence chunks. Both chunk lists are capped at maxPoints and
// embedded in one joint batch so the lexical fallback's per-call feature
// space is shared across every cell.
func (e *Engine) generateHeatmap(ctx context.Context, resumeText, jdText string) ([]types.HeatmapCell, error) {
	resumeChunks := SplitSentences(resumeText)
	if len(resumeChunks) > e.cfg.MaxHeatmapPoints {
		resumeChunks = resumeChunks[:e.cfg.MaxHeatmapPoints]
	}
	jdChunks := SplitSentences(jdText)
	if len(jdChunks) > e.cfg.MaxHeatmapPoints {
		jdChunks = jdChunks[:e.cfg.MaxHeatmapPoints]
	}

	if len(resumeChunks) == 0 || len(jdChunks) == 0 {
		return []types.HeatmapCell{}, nil
	}

	combined := make([]string, 0, len(resumeChunks)+len(jdChunks))
	combined = append(combined, resumeChunks...)
	combined = append(combined, jdChunks...)

	vectors, err := e.backend.Embed(ctx, combined)
	if err != nil {
		return nil, err
	}
	resumeVecs := vectors[:len(resumeChunks)]
	jdVecs := vectors[len(resumeChunks):]

	heatmap := make([]types.HeatmapCell, 0, len(resumeChunks)*len(jdChunks))
	for i, rc := range resumeChunks {
		for j, jc := range jdChunks {
			heatmap = append(heatmap, types.HeatmapCell{
				ResumeIndex: i,
				JDIndex:     j,
				Value:       round2(clamp01(cosine(resumeVecs[i], jdVecs[j])) * 100),
				ResumeChunk: truncateChunk(rc, e.cfg.ChunkPreviewLen),
				JDChunk:     truncateChunk(jc, e.cfg.ChunkPreviewLen),
			})
		}
	}
	return heatmap, nil
}

// topMatchingSections returns the highest-value heatmap cells. Ties are
// broken by ascending resume then JD index so the ordering is stable
// across runs.
func (e *Engine) topMatchingSections(heatmap []types.HeatmapCell) []types.HeatmapCell {
	ranked := make([]types.HeatmapCell, len(heatmap))
	copy(ranked, heatmap)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		if ranked[i].ResumeIndex != ranked[j].ResumeIndex {
			return ranked[i].ResumeIndex < ranked[j].ResumeIndex
		}
		return ranked[i].JDIndex < ranked[j].JDIndex
	})
	if len(ranked) > e.cfg.TopSections {
		ranked = ranked[:e.cfg.TopSections]
	}
	return ranked
}

// buildStrengths emits one qualitative sentence picked by score band plus
// a matched-skill listing when any overlap exists
func buildStrengths(overlap []string, score float64) []string {
	var strengths []string
	switch {
	case score >= 80:
		strengths = append(strengths, "Strong overall semantic alignment with the job description.")
	case score >= 60:
		strengths = append(strengths, "Good baseline alignment with room to improve target keywords.")
	default:
		strengths = append(strengths, "Core alignment is limited; targeted resume tailoring is recommended.")
	}

	if len(overlap) > 0 {
		listed := overlap
		if len(listed) > 8 {
			listed = listed[:8]
		}
		strengths = append(strengths, fmt.Sprintf("Matched skills: %s", strings.Join(listed, ", ")))
	}
	return strengths
}

// buildSuggestions lists missing skills, appends generic tailoring advice,
// and adds a reordering hint for weak scores
func buildSuggestions(missing []string, score float64) []string {
	var suggestions []string
	if len(missing) > 0 {
		listed := missing
		if len(listed) > 6 {
			listed = listed[:6]
		}
		suggestions = append(suggestions, fmt.Sprintf("Add project bullets proving: %s.", strings.Join(listed, ", ")))
	}
	suggestions = append(suggestions,
		"Mirror role-specific verbs and responsibilities from the JD.",
		"Quantify impact with metrics (speed, revenue, accuracy, cost, scale).")
	if score < 70 {
		suggestions = append(suggestions, "Reorder resume so the most relevant achievements appear in the top third.")
	}
	return suggestions
}

// buildKeywordBreakdown reports per-keyword density on both sides plus the
// jd-minus-resume gap, over the sorted union of tracked keywords
func buildKeywordBreakdown(resumeDensity, jdDensity map[string]float64) []types.KeywordUsage {
	keySet := make(map[string]struct{}, len(resumeDensity)+len(jdDensity))
	for k := range resumeDensity {
		keySet[k] = struct{}{}
	}
	for k := range jdDensity {
		keySet[k] = struct{}{}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	breakdown := make([]types.KeywordUsage, 0, len(keys))
	for _, k := range keys {
		breakdown = append(breakdown, types.KeywordUsage{
			Keyword:       k,
			ResumeDensity: resumeDensity[k],
			JDDensity:     jdDensity[k],
			Gap:           round3(jdDensity[k] - resumeDensity[k]),
		})
	}
	return breakdown
}
