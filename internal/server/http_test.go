package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"talentalign/internal/config"
	"talentalign/internal/engine"
	"talentalign/internal/errors"
	"talentalign/internal/observability"
	"talentalign/internal/store"
	"talentalign/internal/types"
)

const testResume = `Senior backend engineer with eight years of experience building
distributed systems in Go and Python. Designed REST APIs backed by PostgreSQL
and Redis, containerized services with Docker and deployed them to Kubernetes
clusters on AWS. Led incident response and introduced Prometheus monitoring.`

const testJD = `We are hiring a backend engineer to build microservices in Go.
You will design REST APIs, operate PostgreSQL databases, and run workloads on
Kubernetes in AWS. Experience with Docker, CI/CD pipelines and monitoring is
required. Terraform knowledge is a plus.`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Engine: config.EngineConfig{
			MaxHeatmapPoints: 12,
			TopSections:      5,
			ChunkPreviewLen:  140,
			CacheTTL:         time.Minute,
			MinTextLength:    1,
		},
		Embedding: config.EmbeddingConfig{Provider: "lexical"},
		Server: config.ServerConfig{
			Host:           "localhost",
			Port:           "0",
			MaxRequestSize: 1 << 20,
		},
	}
}

func testServer(t *testing.T, mutate func(*config.Config)) (*Server, *http.ServeMux) {
	t.Helper()

	cfg := testConfig(t)
	if mutate != nil {
		mutate(cfg)
	}

	logger := errors.NewLogger(slog.LevelError)
	backend := engine.NewSimilarityBackend(engine.NeuralConfig{Enabled: false}, logger)
	eng := engine.New(backend, engine.NewVocabulary(), engine.Config{
		MaxHeatmapPoints: cfg.Engine.MaxHeatmapPoints,
		TopSections:      cfg.Engine.TopSections,
		ChunkPreviewLen:  cfg.Engine.ChunkPreviewLen,
		CacheTTL:         cfg.Engine.CacheTTL,
	}, logger)

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	srv := NewServer(cfg, Deps{Engine: eng, Backend: backend, Store: st}, "test", logger)
	t.Cleanup(func() {
		if srv.RateLimiter != nil {
			srv.RateLimiter.Close()
		}
	})

	om, err := observability.NewManager(cfg.Observability, "test")
	if err != nil {
		t.Fatalf("observability.NewManager failed: %v", err)
	}

	return srv, srv.setupRoutes(om)
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	_, mux := testServer(t, nil)

	rec := doJSON(t, mux, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", body["status"])
	}
	if _, ok := body["similarity_backend"]; !ok {
		t.Error("expected similarity_backend in health response")
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	_, mux := testServer(t, nil)

	rec := doJSON(t, mux, http.MethodPost, "/v1/analyze", AnalyzeRequest{
		ResumeText:         testResume,
		JobDescriptionText: testJD,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result types.AnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if result.Score <= 0 || result.Score > 100 {
		t.Errorf("score out of range: %v", result.Score)
	}
	if result.Mode != types.ModeStandard {
		t.Errorf("expected default mode standard, got %q", result.Mode)
	}
	if len(result.OverlappingSkills) == 0 {
		t.Error("expected overlapping skills for related texts")
	}
}

func TestAnalyzePersist(t *testing.T) {
	srv, mux := testServer(t, nil)

	rec := doJSON(t, mux, http.MethodPost, "/v1/analyze", AnalyzeRequest{
		ResumeText:         testResume,
		JobDescriptionText: testJD,
		CandidateName:      "Ada",
		Persist:            true,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		RecordID int64 `json:"recordId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.RecordID == 0 {
		t.Fatal("expected a record id when persist is requested")
	}

	record, err := srv.Store.GetAnalysis(t.Context(), resp.RecordID)
	if err != nil {
		t.Fatalf("stored record not found: %v", err)
	}
	if record.Candidate != "Ada" {
		t.Errorf("expected candidate Ada, got %q", record.Candidate)
	}
}

func TestAnalyzeValidation(t *testing.T) {
	tests := []struct {
		name string
		req  AnalyzeRequest
	}{
		{"empty resume", AnalyzeRequest{JobDescriptionText: testJD}},
		{"empty jd", AnalyzeRequest{ResumeText: testResume}},
		{"invalid mode", AnalyzeRequest{ResumeText: testResume, JobDescriptionText: testJD, Mode: "lenient"}},
	}

	_, mux := testServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, mux, http.MethodPost, "/v1/analyze", tt.req, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAnalyzeRejectsMissingContentType(t *testing.T) {
	_, mux := testServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without content type, got %d", rec.Code)
	}
}

func TestAnalyzeMultipartUpload(t *testing.T) {
	_, mux := testServer(t, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("resume", "resume.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(testResume)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.WriteField("jobDescriptionText", testJD); err != nil {
		t.Fatalf("write form field: %v", err)
	}
	if err := mw.WriteField("mode", "strict"); err != nil {
		t.Fatalf("write form field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result types.AnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if result.Mode != types.ModeStrict {
		t.Errorf("mode = %q, want strict", result.Mode)
	}
	if result.Score <= 0 {
		t.Errorf("expected positive score for overlapping texts, got %v", result.Score)
	}
	overlap := strings.Join(result.OverlappingSkills, ",")
	if !strings.Contains(overlap, "go") {
		t.Errorf("expected go in overlapping skills, got %v", result.OverlappingSkills)
	}
}

func TestAnalyzeMultipartBadDocument(t *testing.T) {
	_, mux := testServer(t, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("resume", "resume.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("not a pdf")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.WriteField("jobDescriptionText", testJD); err != nil {
		t.Fatalf("write form field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415 for unparseable document, got %d", rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, mux := testServer(t, func(cfg *config.Config) {
		cfg.Server.APIKeys = []string{"secret-key-123456"}
	})

	analyze := AnalyzeRequest{ResumeText: testResume, JobDescriptionText: testJD}

	rec := doJSON(t, mux, http.MethodPost, "/v1/analyze", analyze, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodPost, "/v1/analyze", analyze, map[string]string{"X-API-Key": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong key, got %d", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodPost, "/v1/analyze", analyze, map[string]string{"X-API-Key": "secret-key-123456"})
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with valid key, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, mux, http.MethodPost, "/v1/analyze", analyze, map[string]string{"Authorization": "Bearer secret-key-123456"})
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with bearer token, got %d: %s", rec.Code, rec.Body.String())
	}

	// health stays open
	rec = doJSON(t, mux, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected open health endpoint, got %d", rec.Code)
	}
}

func TestCompareEndpoint(t *testing.T) {
	srv, mux := testServer(t, nil)

	role, err := srv.Store.CreateRole(t.Context(), "Backend Engineer", testJD, types.ModeStandard)
	if err != nil {
		t.Fatalf("CreateRole failed: %v", err)
	}

	rec := doJSON(t, mux, http.MethodPost, "/v1/compare", CompareRequest{
		CandidateName: "Ada",
		ResumeText:    testResume,
		Targets: []CompareTarget{
			{RoleID: role.ID},
			{Title: "Data Analyst", JDText: "Analyze data with SQL, Excel and Tableau dashboards for business stakeholders."},
		},
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var ranked []types.RankedMatch
	if err := json.Unmarshal(rec.Body.Bytes(), &ranked); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked matches, got %d", len(ranked))
	}
	if ranked[0].Score < ranked[1].Score {
		t.Error("ranked matches not sorted by score descending")
	}
}

func TestCompareUnknownRole(t *testing.T) {
	_, mux := testServer(t, nil)

	rec := doJSON(t, mux, http.MethodPost, "/v1/compare", CompareRequest{
		ResumeText: testResume,
		Targets:    []CompareTarget{{RoleID: 9999}},
	}, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown role, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCompareEmptyTargets(t *testing.T) {
	_, mux := testServer(t, nil)

	rec := doJSON(t, mux, http.MethodPost, "/v1/compare", CompareRequest{
		ResumeText: testResume,
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty targets, got %d", rec.Code)
	}
}

func TestInterviewKitFromSkills(t *testing.T) {
	_, mux := testServer(t, nil)

	rec := doJSON(t, mux, http.MethodPost, "/v1/interview-kit", InterviewKitRequest{
		OverlappingSkills: []string{"go", "kubernetes"},
		MissingSkills:     []string{"terraform"},
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var kit types.InterviewKit
	if err := json.Unmarshal(rec.Body.Bytes(), &kit); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(kit.Questions) == 0 {
		t.Error("expected questions in generated kit")
	}
}

func TestInterviewKitFromTexts(t *testing.T) {
	_, mux := testServer(t, nil)

	rec := doJSON(t, mux, http.MethodPost, "/v1/interview-kit", InterviewKitRequest{
		ResumeText:         testResume,
		JobDescriptionText: testJD,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var kit types.InterviewKit
	if err := json.Unmarshal(rec.Body.Bytes(), &kit); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(kit.Questions) == 0 {
		t.Error("expected questions derived from analysis")
	}
}

func TestInterviewKitFromStoredAnalysis(t *testing.T) {
	srv, mux := testServer(t, nil)

	result := &types.AnalysisResult{
		Score:             72.5,
		Mode:              types.ModeStandard,
		OverlappingSkills: []string{"go", "kubernetes"},
		MissingSkills:     []string{"terraform"},
	}
	id, err := srv.Store.SaveAnalysis(t.Context(), "Dana", "digest-1", 0, "Platform Engineer", result)
	if err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}

	rec := doJSON(t, mux, http.MethodPost, "/v1/interview-kit", InterviewKitRequest{
		AnalysisID: id,
		Persist:    true,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var kit types.InterviewKit
	if err := json.Unmarshal(rec.Body.Bytes(), &kit); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}

	// the skill gap must come from the stored record, not a placeholder
	flagged := false
	for _, flag := range kit.RedFlags {
		if strings.Contains(flag, "terraform") {
			flagged = true
		}
	}
	if !flagged {
		t.Errorf("expected terraform in red flags, got %v", kit.RedFlags)
	}
}

func TestInterviewKitUnknownAnalysis(t *testing.T) {
	_, mux := testServer(t, nil)

	rec := doJSON(t, mux, http.MethodPost, "/v1/interview-kit", InterviewKitRequest{
		AnalysisID: 9999,
	}, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown analysis id, got %d", rec.Code)
	}
}

func TestRoleCRUD(t *testing.T) {
	_, mux := testServer(t, nil)

	rec := doJSON(t, mux, http.MethodPost, "/v1/roles", RoleRequest{
		Title:  "Backend Engineer",
		JDText: testJD,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created store.RoleProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected a role id")
	}
	if created.Mode != types.ModeStandard {
		t.Errorf("expected default mode standard, got %q", created.Mode)
	}

	rec = doJSON(t, mux, http.MethodGet, fmt.Sprintf("/v1/roles/%d", created.ID), nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on get, got %d", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodPut, fmt.Sprintf("/v1/roles/%d", created.ID), RoleRequest{
		Title:  "Staff Backend Engineer",
		JDText: testJD,
		Mode:   types.ModeStrict,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated store.RoleProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if updated.Title != "Staff Backend Engineer" || updated.Mode != types.ModeStrict {
		t.Errorf("update not applied: %+v", updated)
	}

	rec = doJSON(t, mux, http.MethodGet, "/v1/roles", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on list, got %d", rec.Code)
	}
	var listed struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if listed.Count != 1 {
		t.Errorf("expected 1 role, got %d", listed.Count)
	}

	rec = doJSON(t, mux, http.MethodDelete, fmt.Sprintf("/v1/roles/%d", created.ID), nil, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodGet, fmt.Sprintf("/v1/roles/%d", created.ID), nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestRoleValidation(t *testing.T) {
	_, mux := testServer(t, nil)

	tests := []struct {
		name string
		req  RoleRequest
	}{
		{"missing title", RoleRequest{JDText: testJD}},
		{"missing jd", RoleRequest{Title: "Backend Engineer"}},
		{"invalid mode", RoleRequest{Title: "Backend Engineer", JDText: testJD, Mode: "lenient"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, mux, http.MethodPost, "/v1/roles", tt.req, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}

	rec := doJSON(t, mux, http.MethodGet, "/v1/roles/abc", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-numeric id, got %d", rec.Code)
	}
}

func TestShareFlow(t *testing.T) {
	srv, mux := testServer(t, nil)

	result := &types.AnalysisResult{
		Score:            73,
		Mode:             types.ModeStandard,
		ScoreExplanation: "Ada vs Backend Engineer",
		Confidence:       0.95,
	}
	analysisID, err := srv.Store.SaveAnalysis(t.Context(), "Ada", "digest", 0, "Backend Engineer", result)
	if err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}

	rec := doJSON(t, mux, http.MethodPost, "/v1/share", ShareRequest{AnalysisID: analysisID}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var share store.SharedReport
	if err := json.Unmarshal(rec.Body.Bytes(), &share); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if share.Token == "" {
		t.Fatal("expected a share token")
	}

	rec = doJSON(t, mux, http.MethodGet, "/v1/share/"+share.Token, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 resolving share, got %d: %s", rec.Code, rec.Body.String())
	}

	var record store.AnalysisRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if record.Candidate != "Ada" {
		t.Errorf("expected shared record for Ada, got %q", record.Candidate)
	}

	rec = doJSON(t, mux, http.MethodGet, "/v1/share/nonexistent-token", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown token, got %d", rec.Code)
	}
}

func TestShareBypassesAuth(t *testing.T) {
	srv, mux := testServer(t, func(cfg *config.Config) {
		cfg.Server.APIKeys = []string{"secret-key-123456"}
	})

	result := &types.AnalysisResult{Score: 50, Mode: types.ModeStandard, Confidence: 0.9}
	analysisID, err := srv.Store.SaveAnalysis(t.Context(), "Ada", "digest", 0, "", result)
	if err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}
	share, err := srv.Store.CreateShare(t.Context(), analysisID, 0)
	if err != nil {
		t.Fatalf("CreateShare failed: %v", err)
	}

	// no API key on purpose
	rec := doJSON(t, mux, http.MethodGet, "/v1/share/"+share.Token, nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected share resolution without auth, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRateLimiting(t *testing.T) {
	_, mux := testServer(t, func(cfg *config.Config) {
		cfg.Server.RateLimit = config.RateLimitConfig{
			Enabled:        true,
			RequestsPerMin: 60,
			BurstCapacity:  2,
			ByIP:           true,
		}
	})

	var saw429 bool
	for range 5 {
		rec := doJSON(t, mux, http.MethodGet, "/v1/roles", nil, nil)
		if rec.Code == http.StatusTooManyRequests {
			saw429 = true
			break
		}
	}
	if !saw429 {
		t.Error("expected a 429 after exhausting the burst")
	}
}

func TestLimiterManager(t *testing.T) {
	m := NewRateLimiter(60, 2, nil)
	defer m.Close()

	if !m.Allow("ip:10.0.0.1") || !m.Allow("ip:10.0.0.1") {
		t.Fatal("burst requests should be allowed")
	}
	if m.Allow("ip:10.0.0.1") {
		t.Error("third immediate request should be limited")
	}

	// distinct keys get their own buckets
	if !m.Allow("ip:10.0.0.2") {
		t.Error("different key should not share the bucket")
	}

	stats := m.GetStats()
	if stats["active_limiters"].(int) != 2 {
		t.Errorf("expected 2 active limiters, got %v", stats["active_limiters"])
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "192.0.2.1:1234", nil, "192.0.2.1"},
		{"forwarded for", "10.0.0.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "203.0.113.7"},
		{"real ip", "10.0.0.1:1234", map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
		{"invalid forwarded falls through", "192.0.2.1:1234", map[string]string{"X-Forwarded-For": "not-an-ip"}, "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := maskAPIKey("short"); got != "****" {
		t.Errorf("short key should be fully masked, got %q", got)
	}
	if got := maskAPIKey("abcdefgh-long-key"); got != "abcdefgh****" {
		t.Errorf("unexpected mask: %q", got)
	}
}

func TestRequestSizeLimit(t *testing.T) {
	_, mux := testServer(t, func(cfg *config.Config) {
		cfg.Server.MaxRequestSize = 64
	})

	rec := doJSON(t, mux, http.MethodPost, "/v1/analyze", AnalyzeRequest{
		ResumeText:         testResume,
		JobDescriptionText: testJD,
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for oversized body, got %d", rec.Code)
	}
}
