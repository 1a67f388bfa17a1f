package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AliTechM/ai-profile-personalization-engine/internal/enhance"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/llm"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/mapping"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/parsing"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/pipeline"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/rendering"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/types"
)

// EnhanceRequest is the body for POST /v1/enhance and /v1/enhance/stream.
type EnhanceRequest struct {
	Resume         *types.Resume         `json:"resume" validate:"required"`
	JobDescription *types.JobDescription `json:"job_description" validate:"required"`
	Mode           string                `json:"mode"`
}

// ParseRequest is the body for the parse endpoints.
type ParseRequest struct {
	Text string `json:"text" validate:"required"`
}

// ExportRequest is the body for POST /v1/export/html.
type ExportRequest struct {
	Resume *types.Resume `json:"resume" validate:"required"`
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.errorResponse(w, http.StatusUnprocessableEntity, "invalid request: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	var req EnhanceRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	mode, err := enhance.ParseMode(req.Mode)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := s.runner.Run(r.Context(), *req.Resume, *req.JobDescription, mode)
	if err != nil {
		s.errorResponse(w, statusForError(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, state)
}

func (s *Server) handleEnhanceStream(w http.ResponseWriter, r *http.Request) {
	var req EnhanceRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	events := make(chan pipeline.StreamEvent, 16)
	g, ctx := errgroup.WithContext(r.Context())

	g.Go(func() error {
		defer close(events)
		return s.runner.RunStream(ctx, *req.Resume, *req.JobDescription, events)
	})
	g.Go(func() error {
		for ev := range events {
			if err := sse.WriteEvent(string(ev.Type), ev); err != nil {
				return err
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		// The terminal error event already went over the wire; nothing
		// useful can be added to a committed SSE response.
		s.log.Warn("streaming run failed", zap.Error(err))
	}
}

func (s *Server) handleParseResume(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	text, err := s.extractor.Extract([]byte(req.Text))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	resume, _, err := parsing.ParseResume(r.Context(), s.client, text, s.log)
	if err != nil {
		s.errorResponse(w, statusForError(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, resume)
}

func (s *Server) handleParseJob(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	text, err := s.extractor.Extract([]byte(req.Text))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	jd, _, err := parsing.ParseJobDescription(r.Context(), s.client, text, s.log)
	if err != nil {
		s.errorResponse(w, statusForError(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, jd)
}

func (s *Server) handleExportHTML(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	html, err := rendering.RenderHTML(*req.Resume)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(html) //nolint:errcheck
}

// statusForError maps pipeline failures onto HTTP statuses. Model output
// that violates a contract is a bad gateway, contract violations in the
// request are unprocessable, and transient upstream trouble is 503.
func statusForError(err error) int {
	var scoreErr *mapping.ScoreRangeError
	var stateErr *pipeline.StateError
	switch {
	case errors.As(err, &scoreErr):
		return http.StatusBadGateway
	case errors.As(err, &stateErr):
		return http.StatusUnprocessableEntity
	case llm.IsMalformed(err):
		return http.StatusBadGateway
	case llm.IsTransient(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
