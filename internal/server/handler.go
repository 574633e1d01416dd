package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"talentalign/internal/common"
	"talentalign/internal/engine"
	"talentalign/internal/errors"
	"talentalign/internal/extract"
	"talentalign/internal/observability"
	"talentalign/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// createAnalyzeHandler wraps the analyze handler with observability
func (s *Server) createAnalyzeHandler(om *observability.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("talentalign.api")
		ctx, span := tracer.Start(ctx, "api.analyze")
		defer span.End()

		req, err := s.parseAnalyzeRequest(r)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			var appErr *errors.AppError
			if stderrors.As(err, &appErr) {
				writeAppError(w, err)
			} else {
				writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			}
			return
		}

		mode := req.Mode
		if mode == "" {
			mode = types.ModeStandard
		}
		if err := common.ValidateAnalysisInput(req.ResumeText, req.JobDescriptionText, mode, s.AppConfig.Engine.MinTextLength); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeAppError(w, err)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.Int("request.jd_length", len(req.JobDescriptionText)),
			attribute.String("request.mode", string(mode)),
		)

		var result *types.AnalysisResult
		err = om.TrackAnalysis(ctx, "analyze", func(ctx context.Context) error {
			var analyzeErr error
			result, analyzeErr = s.Engine.Analyze(ctx, req.ResumeText, req.JobDescriptionText, mode)
			return analyzeErr
		})
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "analysis"))
			writeAppError(w, err)
			return
		}

		response := AnalyzeResponse{AnalysisResult: result}
		if req.Persist && s.Store != nil {
			candidate := req.CandidateName
			if candidate == "" {
				candidate = "Candidate"
			}
			recordID, err := s.Store.SaveAnalysis(ctx, candidate,
				engine.ContentDigest(req.ResumeText), 0, "Ad-hoc", result)
			if err != nil {
				s.Logger.LogError(err, "Failed to persist analysis record")
			} else {
				response.RecordID = recordID
			}
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Float64("score", result.Score),
		)
		writeJSON(w, response)
	}
}

// parseAnalyzeRequest decodes an analyze request from either a JSON
// body or a multipart upload carrying resume/JD documents
func (s *Server) parseAnalyzeRequest(r *http.Request) (*AnalyzeRequest, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err == nil && mediaType == "multipart/form-data" {
		return s.parseAnalyzeUpload(r)
	}

	var req AnalyzeRequest
	if err := parseJSONRequest(r, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// parseAnalyzeUpload reads a multipart analyze request. File fields
// "resume" and "jobDescription" are extracted to plain text and take
// precedence over the matching text form values.
func (s *Server) parseAnalyzeUpload(r *http.Request) (*AnalyzeRequest, error) {
	if err := r.ParseMultipartForm(s.MaxRequestSize); err != nil {
		return nil, fmt.Errorf("failed to parse multipart form: %w", err)
	}

	req := AnalyzeRequest{
		ResumeText:         r.FormValue("resumeText"),
		JobDescriptionText: r.FormValue("jobDescriptionText"),
		Mode:               types.AnalysisMode(r.FormValue("mode")),
		CandidateName:      r.FormValue("candidateName"),
		Persist:            r.FormValue("persist") == "true",
	}

	if text, err := formFileText(r, "resume"); err != nil {
		return nil, err
	} else if text != "" {
		req.ResumeText = text
	}
	if text, err := formFileText(r, "jobDescription"); err != nil {
		return nil, err
	} else if text != "" {
		req.JobDescriptionText = text
	}

	return &req, nil
}

// formFileText extracts plain text from an uploaded document field.
// A missing field is not an error; the caller may have sent raw text
// instead.
func formFileText(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if stderrors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s upload: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read %s upload: %w", field, err)
	}
	return extract.FromBytes(header.Filename, data)
}

// createCompareHandler wraps the compare handler with observability
func (s *Server) createCompareHandler(om *observability.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("talentalign.api")
		ctx, span := tracer.Start(ctx, "api.compare")
		defer span.End()

		var req CompareRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.ResumeText) == "" {
			writeErrorResponse(w, "Missing resume text", "resumeText field is required", http.StatusBadRequest)
			return
		}

		targets, err := s.resolveTargets(r, req.Targets)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeAppError(w, err)
			return
		}
		if err := common.ValidateTargets(targets); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeAppError(w, err)
			return
		}

		span.SetAttributes(attribute.Int("request.target_count", len(targets)))

		before := s.Engine.CacheStats()
		ranked, err := s.Engine.RankTargets(ctx, req.CandidateName, req.ResumeText, targets)
		if err != nil {
			span.RecordError(err)
			writeAppError(w, err)
			return
		}
		after := s.Engine.CacheStats()

		metrics := om.GetMetrics()
		observability.Count(ctx, metrics.ComparisonsRanked,
			attribute.Int("target_count", len(targets)))
		if metrics.CacheHits != nil {
			metrics.CacheHits.Add(ctx, int64(after.Hits-before.Hits))
			metrics.CacheMisses.Add(ctx, int64(after.Misses-before.Misses))
		}

		span.SetAttributes(attribute.Bool("success", true))
		writeJSON(w, ranked)
	}
}

// resolveTargets loads stored role profiles for targets referenced by
// id and passes inline targets through
func (s *Server) resolveTargets(r *http.Request, requested []CompareTarget) ([]types.Target, error) {
	targets := make([]types.Target, 0, len(requested))
	for _, t := range requested {
		if t.RoleID > 0 {
			if s.Store == nil {
				return nil, errors.NewValidationError(errors.ErrCodeMalformedCompare,
					"Stored role targets require persistence to be configured", nil)
			}
			role, err := s.Store.GetRole(r.Context(), t.RoleID)
			if err != nil {
				return nil, err
			}
			target := role.Target()
			if t.Mode != "" {
				target.Mode = t.Mode
			}
			targets = append(targets, target)
			continue
		}
		targets = append(targets, types.Target{
			Title:  t.Title,
			JDText: t.JDText,
			Mode:   t.Mode,
		})
	}
	return targets, nil
}

// createInterviewKitHandler wraps the interview kit handler with observability
func (s *Server) createInterviewKitHandler(om *observability.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("talentalign.api")
		ctx, span := tracer.Start(ctx, "api.interview_kit")
		defer span.End()

		var req InterviewKitRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		input := types.SkillGapInput{
			OverlappingSkills: req.OverlappingSkills,
			MissingSkills:     req.MissingSkills,
		}
		var kitAnalysisID int64

		switch {
		// an analysis id pulls the skill gap from a persisted record
		case req.AnalysisID > 0:
			if !s.storageRequired(w) {
				return
			}
			rec, err := s.Store.GetAnalysis(ctx, req.AnalysisID)
			if err != nil {
				span.RecordError(err)
				writeAppError(w, err)
				return
			}
			input.OverlappingSkills = rec.Result.OverlappingSkills
			input.MissingSkills = rec.Result.MissingSkills
			kitAnalysisID = rec.ID

		// a resume/JD pair derives the skill gap through a full analysis
		case len(input.OverlappingSkills) == 0 && len(input.MissingSkills) == 0 &&
			req.ResumeText != "" && req.JobDescriptionText != "":
			if err := common.ValidateAnalysisInput(req.ResumeText, req.JobDescriptionText,
				types.ModeStandard, s.AppConfig.Engine.MinTextLength); err != nil {
				span.RecordError(err)
				writeAppError(w, err)
				return
			}
			result, err := s.Engine.Analyze(ctx, req.ResumeText, req.JobDescriptionText, types.ModeStandard)
			if err != nil {
				span.RecordError(err)
				writeAppError(w, err)
				return
			}
			input.OverlappingSkills = result.OverlappingSkills
			input.MissingSkills = result.MissingSkills
		}

		kit := engine.GenerateInterviewKit(input)

		if req.Persist && s.Store != nil {
			if _, err := s.Store.SaveInterviewKit(ctx, kitAnalysisID, &kit); err != nil {
				s.Logger.LogError(err, "Failed to persist interview kit")
			}
		}

		metrics := om.GetMetrics()
		observability.Count(ctx, metrics.KitsGenerated)

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("missing_skills", len(input.MissingSkills)),
		)
		writeJSON(w, kit)
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.Manager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				observability.Count(r.Context(), metrics.RateLimitHits,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
