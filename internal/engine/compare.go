package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"talentalign/internal/types"
)

// cacheKey identifies one (resume content, target, mode) comparison
type cacheKey struct {
	digest   string
	identity string
	mode     types.AnalysisMode
}

type cacheEntry struct {
	result  *types.AnalysisResult
	written time.Time
}

// comparisonCache memoizes analyses for a TTL window. Expired entries are
// only overwritten on the next lookup, never evicted, so entries for keys
// that are never re-queried persist for the process lifetime. That
// unbounded growth is a known limitation carried over deliberately; adding
// an eviction policy would be a behavioral change.
//
// The read-then-write sequence around a miss is not atomic: two concurrent
// requests for the same key may both miss and both recompute. The result
// is still correct, only the work is duplicated.
type comparisonCache struct {
	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
	ttl     time.Duration

	hits   uint64
	misses uint64
}

func newComparisonCache(ttl time.Duration) *comparisonCache {
	return &comparisonCache{
		entries: make(map[cacheKey]cacheEntry),
		ttl:     ttl,
	}
}

func (c *comparisonCache) get(key cacheKey, now time.Time) (*types.AnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || now.Sub(entry.written) > c.ttl {
		c.misses++
		return nil, false
	}
	c.hits++
	return entry.result, true
}

func (c *comparisonCache) put(key cacheKey, result *types.AnalysisResult, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{result: result, written: now}
}

func (c *comparisonCache) stats() (entries int, hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries), c.hits, c.misses
}

// ContentDigest hashes normalized resume text for use as a cache-key
// component
func ContentDigest(text string) string {
	sum := sha256.Sum256([]byte(NormalizeText(text)))
	return hex.EncodeToString(sum[:])
}

// targetIdentity produces a stable identity for a comparison target
func targetIdentity(t types.Target) string {
	if t.Stored {
		return fmt.Sprintf("role:%d", t.RoleID)
	}
	return "adhoc:" + t.Title
}

// CacheStats exposes comparison cache counters for the stats endpoint
type CacheStats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	TTL     string `json:"ttl"`
}

// CacheStats returns a snapshot of the comparison cache counters
func (e *Engine) CacheStats() CacheStats {
	entries, hits, misses := e.cache.stats()
	return CacheStats{Entries: entries, Hits: hits, Misses: misses, TTL: e.cache.ttl.String()}
}

// RankTargets compares one resume against every target and returns the
// matches sorted by descending score. Per-target analyses are reused from
// the cache while fresh. The sort is stable, so equal scores keep the
// input order: stored-role targets are expected before ad-hoc ones, each
// group in the order given.
func (e *Engine) RankTargets(ctx context.Context, candidate, resumeText string, targets []types.Target) ([]types.RankedMatch, error) {
	digest := ContentDigest(resumeText)
	if candidate == "" {
		candidate = "Candidate"
	}

	matches := make([]types.RankedMatch, 0, len(targets))
	for _, target := range targets {
		mode := target.Mode
		if mode == "" {
			mode = types.ModeStandard
		}

		key := cacheKey{digest: digest, identity: targetIdentity(target), mode: mode}
		analysis, ok := e.cache.get(key, time.Now())
		if !ok {
			fresh, err := e.Analyze(ctx, resumeText, target.JDText, mode)
			if err != nil {
				return nil, err
			}
			e.cache.put(key, fresh, time.Now())
			analysis = fresh
		}

		missingTop := analysis.MissingSkills
		if len(missingTop) > 5 {
			missingTop = missingTop[:5]
		}

		matches = append(matches, types.RankedMatch{
			RoleID:           target.RoleID,
			Title:            target.Title,
			Score:            analysis.Score,
			Confidence:       analysis.Confidence,
			Strengths:        analysis.Strengths,
			MissingSkillsTop: missingTop,
			Summary:          fmt.Sprintf("%s vs %s: %v%% (%s)", candidate, target.Title, analysis.Score, mode),
			Analysis:         analysis,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}
