package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"talentalign/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "talentalign.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRoleLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	role, err := s.CreateRole(ctx, "Backend Engineer", "python aws role", types.ModeStandard)
	if err != nil {
		t.Fatalf("CreateRole returned error: %v", err)
	}
	if role.ID == 0 {
		t.Error("created role has zero id")
	}

	loaded, err := s.GetRole(ctx, role.ID)
	if err != nil {
		t.Fatalf("GetRole returned error: %v", err)
	}
	if loaded.Title != "Backend Engineer" || loaded.JDText != "python aws role" {
		t.Errorf("loaded role = %+v", loaded)
	}
	if loaded.Mode != types.ModeStandard {
		t.Errorf("loaded mode = %v, want standard", loaded.Mode)
	}

	updated, err := s.UpdateRole(ctx, role.ID, "Platform Engineer", "kubernetes role", types.ModeStrict)
	if err != nil {
		t.Fatalf("UpdateRole returned error: %v", err)
	}
	if updated.Title != "Platform Engineer" || updated.Mode != types.ModeStrict {
		t.Errorf("updated role = %+v", updated)
	}

	roles, err := s.ListRoles(ctx, 0)
	if err != nil {
		t.Fatalf("ListRoles returned error: %v", err)
	}
	if len(roles) != 1 {
		t.Fatalf("roles = %d, want 1", len(roles))
	}

	if err := s.DeleteRole(ctx, role.ID); err != nil {
		t.Fatalf("DeleteRole returned error: %v", err)
	}
	if _, err := s.GetRole(ctx, role.ID); !IsNotFound(err) {
		t.Errorf("GetRole after delete = %v, want not-found", err)
	}
}

func TestRoleNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetRole(ctx, 999); !IsNotFound(err) {
		t.Errorf("GetRole(999) = %v, want not-found", err)
	}
	if err := s.DeleteRole(ctx, 999); !IsNotFound(err) {
		t.Errorf("DeleteRole(999) = %v, want not-found", err)
	}
	if _, err := s.UpdateRole(ctx, 999, "t", "jd", types.ModeStandard); !IsNotFound(err) {
		t.Errorf("UpdateRole(999) = %v, want not-found", err)
	}
}

func TestRoleTarget(t *testing.T) {
	role := RoleProfile{ID: 3, Title: "SRE", JDText: "jd", Mode: types.ModeStrict}
	target := role.Target()
	if target.RoleID != 3 || !target.Stored || target.Mode != types.ModeStrict {
		t.Errorf("target = %+v", target)
	}
}

func sampleResult() *types.AnalysisResult {
	return &types.AnalysisResult{
		Score:             73.0,
		Mode:              types.ModeStandard,
		Confidence:        0.95,
		OverlappingSkills: []string{"aws", "python"},
		MissingSkills:     []string{"docker"},
	}
}

func TestSaveAndGetAnalysis(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.SaveAnalysis(ctx, "Ada", "digest123", 0, "Ad-hoc Role", sampleResult())
	if err != nil {
		t.Fatalf("SaveAnalysis returned error: %v", err)
	}

	rec, err := s.GetAnalysis(ctx, id)
	if err != nil {
		t.Fatalf("GetAnalysis returned error: %v", err)
	}
	if rec.Candidate != "Ada" || rec.Digest != "digest123" || rec.RoleTitle != "Ad-hoc Role" {
		t.Errorf("record = %+v", rec)
	}
	if rec.RoleID != 0 {
		t.Errorf("ad-hoc record role id = %d, want 0", rec.RoleID)
	}
	if rec.Result == nil || rec.Result.Score != 73.0 {
		t.Errorf("result payload not round-tripped: %+v", rec.Result)
	}
	if len(rec.Result.MissingSkills) != 1 || rec.Result.MissingSkills[0] != "docker" {
		t.Errorf("missing skills not round-tripped: %v", rec.Result.MissingSkills)
	}
}

func TestListAnalysesOmitsPayload(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.SaveAnalysis(ctx, "Ada", "d", 0, "Role", sampleResult()); err != nil {
			t.Fatalf("SaveAnalysis returned error: %v", err)
		}
	}

	records, err := s.ListAnalyses(ctx, 2)
	if err != nil {
		t.Fatalf("ListAnalyses returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want limit 2", len(records))
	}
	// newest first
	if records[0].ID < records[1].ID {
		t.Errorf("records not newest-first: %d then %d", records[0].ID, records[1].ID)
	}
	if records[0].Result != nil {
		t.Error("listing should omit full result payloads")
	}
}

func TestSaveInterviewKit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	kit := &types.InterviewKit{
		Rubric:      []types.RubricItem{{Category: "skills", Weight: 30, Guide: "g"}},
		Questions:   map[string][]types.InterviewQuestion{},
		RedFlags:    []string{"flag"},
		GeneratedAt: "2026-01-01T00:00:00Z",
	}
	id, err := s.SaveInterviewKit(ctx, 0, kit)
	if err != nil {
		t.Fatalf("SaveInterviewKit returned error: %v", err)
	}
	if id == 0 {
		t.Error("saved kit has zero id")
	}
}

func TestShareLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.SaveAnalysis(ctx, "Ada", "d", 0, "Role", sampleResult())
	if err != nil {
		t.Fatalf("SaveAnalysis returned error: %v", err)
	}

	share, err := s.CreateShare(ctx, id, 0)
	if err != nil {
		t.Fatalf("CreateShare returned error: %v", err)
	}
	if share.Token == "" {
		t.Fatal("share token is empty")
	}
	if share.ExpiresAt != "" {
		t.Errorf("zero ttl should not set expiry, got %q", share.ExpiresAt)
	}

	rec, err := s.ResolveShare(ctx, share.Token)
	if err != nil {
		t.Fatalf("ResolveShare returned error: %v", err)
	}
	if rec.ID != id {
		t.Errorf("resolved analysis id = %d, want %d", rec.ID, id)
	}

	if _, err := s.ResolveShare(ctx, "no-such-token"); !IsNotFound(err) {
		t.Errorf("ResolveShare(bogus) = %v, want not-found", err)
	}
}

func TestShareExpiry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.SaveAnalysis(ctx, "Ada", "d", 0, "Role", sampleResult())
	if err != nil {
		t.Fatalf("SaveAnalysis returned error: %v", err)
	}

	share, err := s.CreateShare(ctx, id, -time.Minute)
	if err != nil {
		t.Fatalf("CreateShare returned error: %v", err)
	}
	// negative ttl means no expiry is recorded
	if share.ExpiresAt != "" {
		t.Errorf("negative ttl set expiry %q", share.ExpiresAt)
	}

	expired, err := s.CreateShare(ctx, id, time.Nanosecond)
	if err != nil {
		t.Fatalf("CreateShare returned error: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := s.ResolveShare(ctx, expired.Token); !IsNotFound(err) {
		t.Errorf("expired share resolved: %v", err)
	}
}

func TestCreateShareMissingAnalysis(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateShare(context.Background(), 42, 0); !IsNotFound(err) {
		t.Errorf("CreateShare for missing analysis = %v, want not-found", err)
	}
}
