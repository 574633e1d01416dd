package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"talentalign/internal/errors"
	"talentalign/internal/types"
)

// storageRequired rejects requests that need persistence when none is
// configured
func (s *Server) storageRequired(w http.ResponseWriter) bool {
	if s.Store == nil {
		writeErrorResponse(w, "Storage not configured",
			"This endpoint requires a storage backend", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func validateRoleRequest(req *RoleRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Role title must not be empty", nil)
	}
	if strings.TrimSpace(req.JDText) == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Role job description must not be empty", nil)
	}
	if req.Mode == "" {
		req.Mode = types.ModeStandard
	}
	if !req.Mode.Valid() {
		return errors.NewValidationError(errors.ErrCodeInvalidMode,
			"Mode must be one of: standard, strict", nil)
	}
	return nil
}

func rolePathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Role id must be a positive integer", err)
	}
	return id, nil
}

func (s *Server) listRolesHandler(w http.ResponseWriter, r *http.Request) {
	if !s.storageRequired(w) {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeErrorResponse(w, "Invalid limit", "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	roles, err := s.Store.ListRoles(r.Context(), limit)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, map[string]any{"roles": roles, "count": len(roles)})
}

func (s *Server) createRoleHandler(w http.ResponseWriter, r *http.Request) {
	if !s.storageRequired(w) {
		return
	}

	var req RoleRequest
	if err := parseJSONRequest(r, &req); err != nil {
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if err := validateRoleRequest(&req); err != nil {
		writeAppError(w, err)
		return
	}

	role, err := s.Store.CreateRole(r.Context(), req.Title, req.JDText, req.Mode)
	if err != nil {
		writeAppError(w, err)
		return
	}

	s.Logger.Info("Role profile created", "role_id", role.ID, "title", role.Title)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, role)
}

func (s *Server) getRoleHandler(w http.ResponseWriter, r *http.Request) {
	if !s.storageRequired(w) {
		return
	}

	id, err := rolePathID(r)
	if err != nil {
		writeAppError(w, err)
		return
	}

	role, err := s.Store.GetRole(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, role)
}

func (s *Server) updateRoleHandler(w http.ResponseWriter, r *http.Request) {
	if !s.storageRequired(w) {
		return
	}

	id, err := rolePathID(r)
	if err != nil {
		writeAppError(w, err)
		return
	}

	var req RoleRequest
	if err := parseJSONRequest(r, &req); err != nil {
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if err := validateRoleRequest(&req); err != nil {
		writeAppError(w, err)
		return
	}

	role, err := s.Store.UpdateRole(r.Context(), id, req.Title, req.JDText, req.Mode)
	if err != nil {
		writeAppError(w, err)
		return
	}

	s.Logger.Info("Role profile updated", "role_id", role.ID, "title", role.Title)
	writeJSON(w, role)
}

func (s *Server) deleteRoleHandler(w http.ResponseWriter, r *http.Request) {
	if !s.storageRequired(w) {
		return
	}

	id, err := rolePathID(r)
	if err != nil {
		writeAppError(w, err)
		return
	}

	if err := s.Store.DeleteRole(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}

	s.Logger.Info("Role profile deleted", "role_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createShareHandler(w http.ResponseWriter, r *http.Request) {
	if !s.storageRequired(w) {
		return
	}

	var req ShareRequest
	if err := parseJSONRequest(r, &req); err != nil {
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.AnalysisID <= 0 {
		writeErrorResponse(w, "Invalid analysis id", "analysisId must be a positive integer", http.StatusBadRequest)
		return
	}

	share, err := s.Store.CreateShare(r.Context(), req.AnalysisID, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		writeAppError(w, err)
		return
	}

	s.Logger.Info("Share token minted",
		"analysis_id", req.AnalysisID,
		"expires_at", share.ExpiresAt)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, share)
}

func (s *Server) resolveShareHandler(w http.ResponseWriter, r *http.Request) {
	if !s.storageRequired(w) {
		return
	}

	token := r.PathValue("token")
	if token == "" {
		writeErrorResponse(w, "Missing token", "Share token is required", http.StatusBadRequest)
		return
	}

	record, err := s.Store.ResolveShare(r.Context(), token)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, record)
}
