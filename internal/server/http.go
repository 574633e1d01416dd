package server

import (
	"time"

	"talentalign/internal/config"
	"talentalign/internal/engine"
	talentalignErrors "talentalign/internal/errors"
	"talentalign/internal/store"
	"talentalign/internal/types"
)

// AnalyzeRequest is the request body for the analyze endpoint
type AnalyzeRequest struct {
	ResumeText         string             `json:"resumeText"`
	JobDescriptionText string             `json:"jobDescriptionText"`
	Mode               types.AnalysisMode `json:"mode,omitempty"`
	CandidateName      string             `json:"candidateName,omitempty"`
	Persist            bool               `json:"persist,omitempty"`
}

// AnalyzeResponse wraps an analysis result with its storage id when persisted
type AnalyzeResponse struct {
	*types.AnalysisResult
	RecordID int64 `json:"recordId,omitempty"`
}

// CompareTarget is one entry of a comparison request. Either a stored
// roleId or an inline title+jdText identifies the target.
type CompareTarget struct {
	RoleID int64              `json:"roleId,omitempty"`
	Title  string             `json:"title,omitempty"`
	JDText string             `json:"jdText,omitempty"`
	Mode   types.AnalysisMode `json:"mode,omitempty"`
}

// CompareRequest is the request body for the compare endpoint
type CompareRequest struct {
	CandidateName string          `json:"candidateName,omitempty"`
	ResumeText    string          `json:"resumeText"`
	Targets       []CompareTarget `json:"targets"`
}

// InterviewKitRequest is the request body for the interview-kit
// endpoint. The skill gap comes from a persisted analysis referenced
// by id, from skill lists supplied directly, or from analyzing a
// resume/JD pair.
type InterviewKitRequest struct {
	AnalysisID         int64    `json:"analysisId,omitempty"`
	OverlappingSkills  []string `json:"overlappingSkills,omitempty"`
	MissingSkills      []string `json:"missingSkills,omitempty"`
	ResumeText         string   `json:"resumeText,omitempty"`
	JobDescriptionText string   `json:"jobDescriptionText,omitempty"`
	Persist            bool     `json:"persist,omitempty"`
}

// RoleRequest is the request body for role create and update
type RoleRequest struct {
	Title  string             `json:"title"`
	JDText string             `json:"jdText"`
	Mode   types.AnalysisMode `json:"mode,omitempty"`
}

// ShareRequest is the request body for minting a share token
type ShareRequest struct {
	AnalysisID int64 `json:"analysisId"`
	TTLSeconds int64 `json:"ttlSeconds,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// Analysis engine and its similarity backend
	Engine  *engine.Engine
	Backend *engine.SimilarityBackend

	// Persistence
	Store *store.Store

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *LimiterManager

	// Logger
	Logger *talentalignErrors.Logger
}

// Deps bundles the engine, backend and store a Server serves
type Deps struct {
	Engine  *engine.Engine
	Backend *engine.SimilarityBackend
	Store   *store.Store
}

// NewServer creates a new Server instance
func NewServer(appCfg *config.Config, deps Deps, version string, logger *talentalignErrors.Logger) *Server {
	// API keys as a map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range appCfg.Server.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *LimiterManager
	if appCfg.Server.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			appCfg.Server.RateLimit.RequestsPerMin,
			appCfg.Server.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:           appCfg.Server.Host,
		Port:           appCfg.Server.Port,
		Version:        version,
		AppConfig:      appCfg,
		Engine:         deps.Engine,
		Backend:        deps.Backend,
		Store:          deps.Store,
		APIKeys:        apiKeyMap,
		ReadTimeout:    appCfg.Server.ReadTimeout,
		WriteTimeout:   appCfg.Server.WriteTimeout,
		IdleTimeout:    appCfg.Server.IdleTimeout,
		MaxRequestSize: appCfg.Server.MaxRequestSize,
		RateLimit:      &appCfg.Server.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
	}
}
