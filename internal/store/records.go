package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"talentalign/internal/errors"
	"talentalign/internal/types"

	"github.com/google/uuid"
)

// AnalysisRecord is a persisted analysis run
type AnalysisRecord struct {
	ID        int64                 `json:"id"`
	Candidate string                `json:"candidate"`
	Digest    string                `json:"digest"`
	RoleID    int64                 `json:"roleId,omitempty"`
	RoleTitle string                `json:"roleTitle"`
	Mode      types.AnalysisMode    `json:"mode"`
	Score     float64               `json:"score"`
	Result    *types.AnalysisResult `json:"result,omitempty"`
	CreatedAt string                `json:"createdAt"`
}

// SaveAnalysis persists an analysis result and returns its record id
func (s *Store) SaveAnalysis(ctx context.Context, candidate, digest string, roleID int64, roleTitle string, result *types.AnalysisResult) (int64, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return 0, errors.NewInternalError("RESULT_MARSHAL_FAILED",
			"Failed to encode analysis result", err)
	}

	var role any
	if roleID > 0 {
		role = roleID
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO analysis_records (candidate, digest, role_id, role_title, mode, score, result_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		candidate, digest, role, roleTitle, string(result.Mode), result.Score, string(payload), nowStamp())
	if err != nil {
		return 0, errors.NewStorageError(errors.ErrCodeStorageUnavailable,
			"Failed to save analysis record", err)
	}

	id, _ := res.LastInsertId()
	return id, nil
}

// GetAnalysis loads a persisted analysis by id
func (s *Store) GetAnalysis(ctx context.Context, id int64) (*AnalysisRecord, error) {
	var rec AnalysisRecord
	var roleID sql.NullInt64
	var mode, payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, candidate, digest, role_id, role_title, mode, score, result_json, created_at
		 FROM analysis_records WHERE id = ?`, id).
		Scan(&rec.ID, &rec.Candidate, &rec.Digest, &roleID, &rec.RoleTitle, &mode, &rec.Score, &payload, &rec.CreatedAt)
	if err != nil {
		return nil, notFound("analysis record", err)
	}

	rec.RoleID = roleID.Int64
	rec.Mode = types.AnalysisMode(mode)
	var result types.AnalysisResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, errors.NewInternalError("RESULT_UNMARSHAL_FAILED",
			"Failed to decode stored analysis result", err)
	}
	rec.Result = &result
	return &rec, nil
}

// ListAnalyses returns recent analysis records without their full
// result payloads, newest first
func (s *Store) ListAnalyses(ctx context.Context, limit int) ([]AnalysisRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, candidate, digest, role_id, role_title, mode, score, created_at
		 FROM analysis_records ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeStorageUnavailable,
			"Failed to list analysis records", err)
	}
	defer rows.Close()

	records := []AnalysisRecord{}
	for rows.Next() {
		var rec AnalysisRecord
		var roleID sql.NullInt64
		var mode string
		if err := rows.Scan(&rec.ID, &rec.Candidate, &rec.Digest, &roleID, &rec.RoleTitle, &mode, &rec.Score, &rec.CreatedAt); err != nil {
			return nil, errors.NewStorageError(errors.ErrCodeStorageUnavailable,
				"Failed to scan analysis record", err)
		}
		rec.RoleID = roleID.Int64
		rec.Mode = types.AnalysisMode(mode)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveInterviewKit persists a generated interview kit, optionally
// linked to the analysis that produced it
func (s *Store) SaveInterviewKit(ctx context.Context, analysisID int64, kit *types.InterviewKit) (int64, error) {
	payload, err := json.Marshal(kit)
	if err != nil {
		return 0, errors.NewInternalError("KIT_MARSHAL_FAILED",
			"Failed to encode interview kit", err)
	}

	var analysis any
	if analysisID > 0 {
		analysis = analysisID
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO interview_kits (analysis_id, kit_json, created_at) VALUES (?, ?, ?)`,
		analysis, string(payload), nowStamp())
	if err != nil {
		return 0, errors.NewStorageError(errors.ErrCodeStorageUnavailable,
			"Failed to save interview kit", err)
	}

	id, _ := res.LastInsertId()
	return id, nil
}

// SharedReport is a tokenized link to a stored analysis
type SharedReport struct {
	Token      string `json:"token"`
	AnalysisID int64  `json:"analysisId"`
	CreatedAt  string `json:"createdAt"`
	ExpiresAt  string `json:"expiresAt,omitempty"`
}

// CreateShare mints an unguessable token for a stored analysis. A zero
// ttl produces a non-expiring link.
func (s *Store) CreateShare(ctx context.Context, analysisID int64, ttl time.Duration) (*SharedReport, error) {
	if _, err := s.GetAnalysis(ctx, analysisID); err != nil {
		return nil, err
	}

	share := &SharedReport{
		Token:      uuid.NewString(),
		AnalysisID: analysisID,
		CreatedAt:  nowStamp(),
	}
	if ttl > 0 {
		share.ExpiresAt = time.Now().UTC().Add(ttl).Format(time.RFC3339)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shared_reports (token, analysis_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		share.Token, share.AnalysisID, share.CreatedAt, nullable(share.ExpiresAt))
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeStorageUnavailable,
			"Failed to create shared report", err)
	}
	return share, nil
}

// ResolveShare returns the analysis behind a share token. Expired
// tokens behave like missing ones.
func (s *Store) ResolveShare(ctx context.Context, token string) (*AnalysisRecord, error) {
	var analysisID int64
	var expiresAt sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT analysis_id, expires_at FROM shared_reports WHERE token = ?`, token).
		Scan(&analysisID, &expiresAt)
	if err != nil {
		return nil, notFound("shared report", err)
	}

	if expiresAt.Valid && expiresAt.String != "" {
		expiry, err := time.Parse(time.RFC3339, expiresAt.String)
		if err == nil && time.Now().UTC().After(expiry) {
			return nil, errors.NewStorageError(errors.ErrCodeNotFound,
				"shared report not found", sql.ErrNoRows)
		}
	}

	return s.GetAnalysis(ctx, analysisID)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
