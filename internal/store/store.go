package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"talentalign/internal/errors"
	"talentalign/internal/types"

	_ "modernc.org/sqlite"
)

// Store persists role profiles, analysis records, interview kits and
// shared reports in a local SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and ensures the
// schema exists
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, errors.NewStorageError(errors.ErrCodeStorageUnavailable,
				fmt.Sprintf("Cannot create storage directory: %s", dir), err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeStorageUnavailable,
			fmt.Sprintf("Cannot open database: %s", path), err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errors.NewStorageError(errors.ErrCodeStorageUnavailable,
			"Failed to initialize database schema", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS role_profiles (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		title      TEXT NOT NULL,
		jd_text    TEXT NOT NULL,
		mode       TEXT NOT NULL DEFAULT 'standard',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS analysis_records (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		candidate   TEXT NOT NULL,
		digest      TEXT NOT NULL,
		role_id     INTEGER,
		role_title  TEXT NOT NULL,
		mode        TEXT NOT NULL,
		score       REAL NOT NULL,
		result_json TEXT NOT NULL,
		created_at  TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS interview_kits (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_id INTEGER,
		kit_json    TEXT NOT NULL,
		created_at  TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS shared_reports (
		token       TEXT PRIMARY KEY,
		analysis_id INTEGER NOT NULL,
		created_at  TEXT NOT NULL,
		expires_at  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_analysis_digest ON analysis_records(digest);
	`)
	return err
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// notFound wraps sql.ErrNoRows into the application error taxonomy
func notFound(entity string, err error) error {
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NewStorageError(errors.ErrCodeNotFound,
			fmt.Sprintf("%s not found", entity), err)
	}
	return errors.NewStorageError(errors.ErrCodeStorageUnavailable,
		fmt.Sprintf("Failed to load %s", entity), err)
}

// IsNotFound reports whether err is a storage miss
func IsNotFound(err error) bool {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == errors.ErrCodeNotFound
	}
	return false
}

// RoleProfile is a stored job description a resume can be matched against
type RoleProfile struct {
	ID        int64              `json:"id"`
	Title     string             `json:"title"`
	JDText    string             `json:"jdText"`
	Mode      types.AnalysisMode `json:"mode"`
	CreatedAt string             `json:"createdAt"`
	UpdatedAt string             `json:"updatedAt"`
}

// Target converts a stored role into an engine ranking target
func (r *RoleProfile) Target() types.Target {
	return types.Target{
		RoleID: r.ID,
		Title:  r.Title,
		JDText: r.JDText,
		Mode:   r.Mode,
		Stored: true,
	}
}

// CreateRole stores a new role profile
func (s *Store) CreateRole(ctx context.Context, title, jdText string, mode types.AnalysisMode) (*RoleProfile, error) {
	now := nowStamp()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO role_profiles (title, jd_text, mode, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		title, jdText, string(mode), now, now)
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeStorageUnavailable,
			"Failed to create role profile", err)
	}

	id, _ := res.LastInsertId()
	return &RoleProfile{
		ID: id, Title: title, JDText: jdText, Mode: mode,
		CreatedAt: now, UpdatedAt: now,
	}, nil
}

// GetRole loads a role profile by id
func (s *Store) GetRole(ctx context.Context, id int64) (*RoleProfile, error) {
	var r RoleProfile
	var mode string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, jd_text, mode, created_at, updated_at
		 FROM role_profiles WHERE id = ?`, id).
		Scan(&r.ID, &r.Title, &r.JDText, &mode, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, notFound("role profile", err)
	}
	r.Mode = types.AnalysisMode(mode)
	return &r, nil
}

// ListRoles returns stored role profiles, newest first
func (s *Store) ListRoles(ctx context.Context, limit int) ([]RoleProfile, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, jd_text, mode, created_at, updated_at
		 FROM role_profiles ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeStorageUnavailable,
			"Failed to list role profiles", err)
	}
	defer rows.Close()

	roles := []RoleProfile{}
	for rows.Next() {
		var r RoleProfile
		var mode string
		if err := rows.Scan(&r.ID, &r.Title, &r.JDText, &mode, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, errors.NewStorageError(errors.ErrCodeStorageUnavailable,
				"Failed to scan role profile", err)
		}
		r.Mode = types.AnalysisMode(mode)
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// UpdateRole replaces the stored title, JD text and mode of a role
func (s *Store) UpdateRole(ctx context.Context, id int64, title, jdText string, mode types.AnalysisMode) (*RoleProfile, error) {
	now := nowStamp()
	res, err := s.db.ExecContext(ctx,
		`UPDATE role_profiles SET title=?, jd_text=?, mode=?, updated_at=? WHERE id=?`,
		title, jdText, string(mode), now, id)
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeStorageUnavailable,
			"Failed to update role profile", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, errors.NewStorageError(errors.ErrCodeNotFound,
			"role profile not found", sql.ErrNoRows)
	}
	return s.GetRole(ctx, id)
}

// DeleteRole removes a role profile
func (s *Store) DeleteRole(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM role_profiles WHERE id=?`, id)
	if err != nil {
		return errors.NewStorageError(errors.ErrCodeStorageUnavailable,
			"Failed to delete role profile", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewStorageError(errors.ErrCodeNotFound,
			"role profile not found", sql.ErrNoRows)
	}
	return nil
}
