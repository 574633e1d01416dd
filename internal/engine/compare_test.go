package engine

import (
	"context"
	"testing"
	"time"

	"talentalign/internal/types"
)

// countingBackend tracks how many similarity computations run so cache
// behavior is observable.
type countingBackend struct {
	stubBackend
	calls int
}

func (c *countingBackend) Similarity(ctx context.Context, a, b string) (float64, error) {
	c.calls++
	return c.stubBackend.Similarity(ctx, a, b)
}

func TestRankTargetsOrdering(t *testing.T) {
	engine := newTestEngine(0.5)

	targets := []types.Target{
		{RoleID: 1, Title: "Platform Engineer", JDText: "python aws docker kubernetes role with lots of requirements", Mode: types.ModeStandard, Stored: true},
		{Title: "Generalist", JDText: "seeking a motivated generalist for varied duties", Mode: types.ModeStandard},
	}

	ranked, err := engine.RankTargets(context.Background(), "Ada", "python aws engineer", targets)
	if err != nil {
		t.Fatalf("RankTargets returned error: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("ranked = %d entries, want 2", len(ranked))
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Errorf("ranking not descending at %d: %v > %v", i, ranked[i].Score, ranked[i-1].Score)
		}
	}
	if ranked[0].Summary == "" || ranked[0].Analysis == nil {
		t.Error("ranked match missing summary or analysis payload")
	}
}

func TestRankTargetsStableTies(t *testing.T) {
	engine := newTestEngine(0.5)

	// identical JD text scores identically; input order must survive
	jd := "python aws docker position"
	targets := []types.Target{
		{RoleID: 7, Title: "First", JDText: jd, Mode: types.ModeStandard, Stored: true},
		{Title: "Second", JDText: jd, Mode: types.ModeStandard},
	}

	ranked, err := engine.RankTargets(context.Background(), "", "python aws engineer", targets)
	if err != nil {
		t.Fatalf("RankTargets returned error: %v", err)
	}
	if ranked[0].Title != "First" || ranked[1].Title != "Second" {
		t.Errorf("tie order = [%s, %s], want input order [First, Second]", ranked[0].Title, ranked[1].Title)
	}
}

func TestRankTargetsCacheHit(t *testing.T) {
	backend := &countingBackend{stubBackend: stubBackend{sim: 0.5}}
	engine := New(backend, NewVocabulary(), DefaultConfig(), nil)

	targets := []types.Target{
		{RoleID: 1, Title: "Role", JDText: "python aws docker position", Mode: types.ModeStandard, Stored: true},
	}

	if _, err := engine.RankTargets(context.Background(), "", "python engineer resume", targets); err != nil {
		t.Fatalf("first RankTargets returned error: %v", err)
	}
	first := backend.calls

	if _, err := engine.RankTargets(context.Background(), "", "python engineer resume", targets); err != nil {
		t.Fatalf("second RankTargets returned error: %v", err)
	}
	if backend.calls != first {
		t.Errorf("second call recomputed (%d -> %d similarity calls), want cache hit", first, backend.calls)
	}

	stats := engine.CacheStats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Entries != 1 {
		t.Errorf("cache stats = %+v, want 1 hit, 1 miss, 1 entry", stats)
	}
}

func TestRankTargetsCacheKeyedByMode(t *testing.T) {
	backend := &countingBackend{stubBackend: stubBackend{sim: 0.5}}
	engine := New(backend, NewVocabulary(), DefaultConfig(), nil)

	standard := []types.Target{{RoleID: 1, Title: "Role", JDText: "python docker role", Mode: types.ModeStandard, Stored: true}}
	strict := []types.Target{{RoleID: 1, Title: "Role", JDText: "python docker role", Mode: types.ModeStrict, Stored: true}}

	if _, err := engine.RankTargets(context.Background(), "", "python resume", standard); err != nil {
		t.Fatalf("RankTargets returned error: %v", err)
	}
	first := backend.calls
	if _, err := engine.RankTargets(context.Background(), "", "python resume", strict); err != nil {
		t.Fatalf("RankTargets returned error: %v", err)
	}
	if backend.calls == first {
		t.Error("strict mode reused standard-mode cache entry; modes must cache separately")
	}
}

func TestComparisonCacheExpiry(t *testing.T) {
	cache := newComparisonCache(50 * time.Millisecond)
	key := cacheKey{digest: "d", identity: "role:1", mode: types.ModeStandard}
	result := &types.AnalysisResult{Score: 42}

	now := time.Now()
	cache.put(key, result, now)

	if got, ok := cache.get(key, now.Add(40*time.Millisecond)); !ok || got.Score != 42 {
		t.Errorf("entry within TTL not served: ok=%v", ok)
	}
	if _, ok := cache.get(key, now.Add(60*time.Millisecond)); ok {
		t.Error("expired entry was served")
	}

	// expired entries stay resident until overwritten
	entries, _, _ := cache.stats()
	if entries != 1 {
		t.Errorf("entries after expiry = %d, want 1 (no eviction)", entries)
	}
}

func TestContentDigestNormalizes(t *testing.T) {
	a := ContentDigest("Python   Developer\n")
	b := ContentDigest("python developer")
	if a != b {
		t.Error("digest should be computed over normalized text")
	}
	if a == ContentDigest("different resume") {
		t.Error("different content produced identical digest")
	}
}
