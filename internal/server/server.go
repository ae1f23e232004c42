// Package server provides the HTTP REST API for the business analyzer.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jonathan/winlab-analyzer/internal/db"
	"github.com/jonathan/winlab-analyzer/internal/server/ratelimit"
	"github.com/jonathan/winlab-analyzer/internal/types"
	"github.com/rs/zerolog"
)

// Analyzer produces a report for a business profile.
type Analyzer interface {
	ProduceReport(ctx context.Context, profile *types.BusinessProfile) (*types.Report, error)
}

// Store persists reports, consultations and events.
type Store interface {
	Ping(ctx context.Context) error
	SaveReport(ctx context.Context, report *types.Report, profile *types.BusinessProfile) (uuid.UUID, error)
	GetReport(ctx context.Context, id uuid.UUID) (*db.StoredReport, error)
	ListReports(ctx context.Context, limit int) ([]db.ReportSummary, error)
	DeleteReport(ctx context.Context, id uuid.UUID) error
	CreateConsultation(ctx context.Context, req *types.ConsultationRequest) (*db.Consultation, error)
	ListConsultations(ctx context.Context, status string) ([]db.Consultation, error)
	UpdateConsultationStatus(ctx context.Context, id uuid.UUID, status string) error
	ListEvents(ctx context.Context, eventType string, limit int) ([]db.Event, error)
}

// Dependencies are the collaborators behind the API. Store and Shares may be
// nil; the endpoints that need them then answer 503.
type Dependencies struct {
	Analyzer Analyzer
	Store    Store
	Shares   *ShareService
}

// Config holds server configuration
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	RateLimit       *ratelimit.Config
}

// Server represents the HTTP server
type Server struct {
	router      *chi.Mux
	httpServer  *http.Server
	logger      *zerolog.Logger
	analyzer    Analyzer
	store       Store
	shares      *ShareService
	rateLimiter *ratelimit.Limiter
	shutdown    time.Duration
}

// New creates a new server instance
func New(logger zerolog.Logger, cfg Config, deps Dependencies) *Server {
	s := &Server{
		logger:      &logger,
		analyzer:    deps.Analyzer,
		store:       deps.Store,
		shares:      deps.Shares,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		shutdown:    cfg.ShutdownTimeout,
	}
	if s.shutdown <= 0 {
		s.shutdown = 10 * time.Second
	}

	router := chi.NewRouter()
	router.Use(requestLogger(&logger))
	router.Use(middleware.Recoverer)
	router.Use(withCORS)
	router.Use(ratelimit.Middleware(s.rateLimiter))

	router.Get("/health", s.handleHealth)
	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyses", s.handleCreateAnalysis)

		r.Group(func(r chi.Router) {
			r.Use(s.requireStore)

			r.Get("/reports", s.handleListReports)
			r.Get("/reports/{id}", s.handleGetReport)
			r.Delete("/reports/{id}", s.handleDeleteReport)
			r.Get("/reports/{id}/export.xlsx", s.handleExportReport)
			r.Post("/reports/{id}/share", s.handleShareReport)
			r.Get("/shared/{token}", s.handleSharedReport)

			r.Post("/consultations", s.handleCreateConsultation)
			r.Get("/consultations", s.handleListConsultations)
			r.Patch("/consultations/{id}", s.handleUpdateConsultation)

			r.Get("/events", s.handleListEvents)
		})
	})

	s.router = router
	s.httpServer = &http.Server{
		Addr:        cfg.Addr,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		// Analyses wait on the completion service.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("starting server")
		serverErrors <- s.httpServer.ListenAndServe()
	}()

	defer s.rateLimiter.Stop()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("graceful shutdown failed")
			return s.httpServer.Close()
		}
		s.logger.Info().Msg("server stopped")
		return nil
	}
}

// requestLogger attaches a request-scoped logger to the context and logs
// each completed request.
func requestLogger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := logger.With().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_ip", r.RemoteAddr).
				Logger()
			r = r.WithContext(reqLogger.WithContext(r.Context()))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			reqLogger.Info().
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(start)).
				Msg("request completed")
		})
	}
}

// withCORS adds CORS headers
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil {
			s.writeError(w, r, &ErrUnavailable{Feature: "report storage"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode JSON response")
	}
}

// writeError maps err to a status code and writes it as JSON.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	logger := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	s.jsonResponse(w, r, status, newErrorBody(err, status))
}
