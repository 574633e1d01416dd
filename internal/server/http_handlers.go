package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"talentalign/internal/errors"
)

// healthHandler reports service health including the similarity
// backend currently in use and storage availability
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "talentalign",
		"version": s.Version,
	}

	if s.Backend != nil {
		backend := map[string]any{
			"neural_configured": s.AppConfig.Embedding.Provider == "gemini",
			"using_fallback":    s.Backend.UsingFallback(),
		}
		response["similarity_backend"] = backend
	}

	if s.Engine != nil {
		stats := s.Engine.CacheStats()
		response["comparison_cache"] = map[string]any{
			"entries": stats.Entries,
			"hits":    stats.Hits,
			"misses":  stats.Misses,
		}
	}

	storageHealthy := true
	if s.Store != nil {
		if _, err := s.Store.ListRoles(r.Context(), 1); err != nil {
			storageHealthy = false
			response["storage"] = map[string]any{
				"healthy": false,
				"error":   err.Error(),
			}
		} else {
			response["storage"] = map[string]any{"healthy": true}
		}
	}

	if !storageHealthy {
		response["status"] = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	writeJSON(w, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "talentalign",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	if s.Engine != nil {
		stats := s.Engine.CacheStats()
		response["comparison_cache"] = map[string]any{
			"entries": stats.Entries,
			"hits":    stats.Hits,
			"misses":  stats.Misses,
		}
	}

	writeJSON(w, response)
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeJSON writes a JSON response body
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   error,
		Message: message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode error response: %v", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}

// writeAppError maps application error types onto HTTP status codes
func writeAppError(w http.ResponseWriter, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		writeErrorResponse(w, "Internal error", err.Error(), http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case appErr.Code == errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case appErr.Type == errors.ErrorTypeValidation:
		status = http.StatusBadRequest
	case appErr.Code == errors.ErrCodeUnsupportedFormat:
		status = http.StatusUnsupportedMediaType
	case appErr.Code == errors.ErrCodeStorageUnavailable:
		status = http.StatusServiceUnavailable
	case appErr.Type == errors.ErrorTypeEmbedding:
		status = http.StatusBadGateway
	}

	writeErrorResponse(w, appErr.Code, appErr.Message, status)
}
