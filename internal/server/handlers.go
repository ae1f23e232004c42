package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jonathan/winlab-analyzer/internal/archive"
	"github.com/jonathan/winlab-analyzer/internal/db"
	"github.com/jonathan/winlab-analyzer/internal/export"
	"github.com/jonathan/winlab-analyzer/internal/types"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps request bodies; profiles are short form submissions.
const maxBodyBytes = 1 << 20

// maxListLimit caps the limit query parameter.
const maxListLimit = 500

// analysisResponse is returned by POST /api/v1/analyses. ID and ShareToken
// are set only when the report was stored.
type analysisResponse struct {
	ID             *uuid.UUID    `json:"id,omitempty"`
	ShareToken     string        `json:"share_token,omitempty"`
	ShareExpiresAt *time.Time    `json:"share_expires_at,omitempty"`
	Report         *types.Report `json:"report"`
}

type shareResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type statusUpdate struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	if s.store == nil {
		s.jsonResponse(w, r, http.StatusOK, resp)
		return
	}

	if err := s.store.Ping(r.Context()); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("database ping failed")
		resp["status"] = "degraded"
		resp["database"] = "unavailable"
		s.jsonResponse(w, r, http.StatusServiceUnavailable, resp)
		return
	}
	resp["database"] = "ok"
	s.jsonResponse(w, r, http.StatusOK, resp)
}

func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var profile types.BusinessProfile
	if err := decodeBody(w, r, &profile); err != nil {
		s.writeError(w, r, err)
		return
	}

	report, err := s.analyzer.ProduceReport(ctx, &profile)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := analysisResponse{Report: report}
	if s.store == nil {
		s.jsonResponse(w, r, http.StatusOK, resp)
		return
	}

	id, err := s.store.SaveReport(ctx, report, &profile)
	if err != nil {
		// The analysis itself succeeded; return it unsaved.
		logger.Error().Err(err).Msg("failed to save report")
		s.jsonResponse(w, r, http.StatusOK, resp)
		return
	}
	resp.ID = &id

	if s.shares != nil {
		token, expiresAt, err := s.shares.GenerateToken(id)
		if err != nil {
			logger.Error().Err(err).Msg("failed to issue share token")
		} else {
			resp.ShareToken = token
			resp.ShareExpiresAt = &expiresAt
		}
	}

	s.jsonResponse(w, r, http.StatusCreated, resp)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, db.DefaultListLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	reports, err := s.store.ListReports(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if reports == nil {
		reports = []db.ReportSummary{}
	}
	s.jsonResponse(w, r, http.StatusOK, map[string]any{"reports": reports})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	stored, ok := s.loadReport(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, r, http.StatusOK, stored)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.store.DeleteReport(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	stored, ok := s.loadReport(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteReport(&buf, stored.Report); err != nil {
		s.writeError(w, r, fmt.Errorf("failed to export report %s: %w", stored.ID, err))
		return
	}

	filename := archive.SanitizeName(stored.BusinessName) + "-ai-analysis.xlsx"
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write export")
	}
}

func (s *Server) handleShareReport(w http.ResponseWriter, r *http.Request) {
	if s.shares == nil {
		s.writeError(w, r, &ErrUnavailable{Feature: "report sharing"})
		return
	}
	stored, ok := s.loadReport(w, r)
	if !ok {
		return
	}

	token, expiresAt, err := s.shares.GenerateToken(stored.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, r, http.StatusCreated, shareResponse{Token: token, ExpiresAt: expiresAt})
}

func (s *Server) handleSharedReport(w http.ResponseWriter, r *http.Request) {
	if s.shares == nil {
		s.writeError(w, r, &ErrUnavailable{Feature: "report sharing"})
		return
	}

	id, err := s.shares.ValidateToken(chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	stored, err := s.store.GetReport(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if stored == nil {
		s.writeError(w, r, &ErrNotFound{Resource: "report", ID: id.String()})
		return
	}
	// Shared views omit the contact email.
	s.jsonResponse(w, r, http.StatusOK, stored.Report)
}

func (s *Server) handleCreateConsultation(w http.ResponseWriter, r *http.Request) {
	var req types.ConsultationRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	consultation, err := s.store.CreateConsultation(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, r, http.StatusCreated, consultation)
}

func (s *Server) handleListConsultations(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !slices.Contains(db.ConsultationStatuses, status) {
		s.writeError(w, r, &types.ValidationError{Field: "status", Message: "unknown consultation status"})
		return
	}

	consultations, err := s.store.ListConsultations(r.Context(), status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if consultations == nil {
		consultations = []db.Consultation{}
	}
	s.jsonResponse(w, r, http.StatusOK, map[string]any{"consultations": consultations})
}

func (s *Server) handleUpdateConsultation(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var update statusUpdate
	if err := decodeBody(w, r, &update); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.store.UpdateConsultationStatus(r.Context(), id, update.Status); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 100)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	events, err := s.store.ListEvents(r.Context(), r.URL.Query().Get("type"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if events == nil {
		events = []db.Event{}
	}
	s.jsonResponse(w, r, http.StatusOK, map[string]any{"events": events})
}

// loadReport resolves the {id} URL parameter to a stored report, writing
// the error response itself when it cannot.
func (s *Server) loadReport(w http.ResponseWriter, r *http.Request) (*db.StoredReport, bool) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}

	stored, err := s.store.GetReport(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	if stored == nil {
		s.writeError(w, r, &ErrNotFound{Resource: "report", ID: id.String()})
		return nil, false
	}
	return stored, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &ErrBadRequest{Message: fmt.Sprintf("invalid request body: %v", err)}
	}
	return nil
}

func parseID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &ErrBadRequest{Message: fmt.Sprintf("invalid %s: %q", param, raw)}
	}
	return id, nil
}

func parseLimit(r *http.Request, defaultLimit int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, &ErrBadRequest{Message: fmt.Sprintf("invalid limit: %q", raw)}
	}
	return min(limit, maxListLimit), nil
}
