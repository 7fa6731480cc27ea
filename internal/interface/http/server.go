// Package http exposes the tracker operations as a JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/alem-hub/internship-hub/internal/application/command"
	"github.com/alem-hub/internship-hub/internal/application/query"
	"github.com/alem-hub/internship-hub/internal/domain/shared"
	"github.com/alem-hub/internship-hub/internal/interface/http/handlers"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// MaxBodyBytes limits request bodies, curriculum imports included.
	MaxBodyBytes int64
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		MaxBodyBytes: 1 << 20,
	}
}

// Address returns the server address string.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Dependencies contains all handlers served over HTTP.
type Dependencies struct {
	// Commands
	Curriculum       *command.CurriculumHandler
	Reorder          *command.ReorderHandler
	ImportCurriculum *command.ImportCurriculumHandler
	StartInternship  *command.StartInternshipHandler
	FinishInternship *command.FinishInternshipHandler
	CancelInternship *command.CancelInternshipHandler
	CompleteTraining *command.CompleteTrainingHandler
	RecordStep       *command.RecordStepHandler

	// Queries
	CurriculumTree *query.GetCurriculumTreeHandler
	Progress       *query.GetProgressHandler
	ListSessions   *query.ListSessionsHandler

	HealthChecker handlers.HealthChecker
	Logger        *slog.Logger
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server represents the HTTP server.
type Server struct {
	config     Config
	deps       Dependencies
	httpServer *http.Server
	router     *http.ServeMux
	logger     *slog.Logger

	mu        sync.RWMutex
	running   bool
	startedAt time.Time
}

// NewServer creates a new HTTP server with the given configuration and dependencies.
func NewServer(config Config, deps Dependencies) *Server {
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}
	s := &Server{
		config: config,
		deps:   deps,
		router: http.NewServeMux(),
		logger: deps.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "http")

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         config.Address(),
		Handler:      s.Handler(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return s
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return handlers.Chain(s.router,
		handlers.RequestID,
		handlers.Recovery(s.logger),
		handlers.Logging(s.logger),
		handlers.SecurityHeaders,
		handlers.RequestSizeLimit(s.config.MaxBodyBytes),
	)
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTING
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Health
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /healthz", s.handleHealth)

	// ─────────────────────────────────────────────────────────────────────────
	// Curriculum catalog
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /api/v1/curriculum", s.handleGetCurriculum)
	s.router.HandleFunc("POST /api/v1/curriculum/parts", s.handleCreatePart)
	s.router.HandleFunc("POST /api/v1/curriculum/parts/{id}/sections", s.handleCreateSection)
	s.router.HandleFunc("POST /api/v1/curriculum/sections/{id}/steps", s.handleCreateStep)
	s.router.HandleFunc("PATCH /api/v1/curriculum/{level}/{id}", s.handleRename)
	s.router.HandleFunc("DELETE /api/v1/curriculum/{level}/{id}", s.handleDelete)
	s.router.HandleFunc("POST /api/v1/curriculum/reorder", s.handleReorder)
	s.router.HandleFunc("POST /api/v1/curriculum/import", s.handleImport)

	// ─────────────────────────────────────────────────────────────────────────
	// Trainees and sessions
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /api/v1/trainees/{id}/sessions", s.handleListSessions)
	s.router.HandleFunc("POST /api/v1/trainees/{id}/sessions", s.handleStartInternship)
	s.router.HandleFunc("GET /api/v1/trainees/{id}/progress", s.handleTraineeProgress)
	s.router.HandleFunc("POST /api/v1/trainees/{id}/training/complete", s.handleCompleteTraining)

	s.router.HandleFunc("GET /api/v1/sessions/{id}/progress", s.handleSessionProgress)
	s.router.HandleFunc("POST /api/v1/sessions/{id}/finish", s.handleFinishInternship)
	s.router.HandleFunc("POST /api/v1/sessions/{id}/cancel", s.handleCancelInternship)
	s.router.HandleFunc("POST /api/v1/sessions/{id}/steps/{stepID}/toggle", s.handleToggleStep)
	s.router.HandleFunc("POST /api/v1/sessions/{id}/steps/{stepID}/media", s.handleSubmitMedia)
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("starting HTTP server", "address", s.config.Address())

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// JSONResponse represents a standard JSON response.
type JSONResponse struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(JSONResponse{
		Success:   status >= 200 && status < 300,
		Data:      data,
		RequestID: handlers.RequestIDFrom(r.Context()),
	})
}

func writeJSONError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(JSONResponse{
		Success:   false,
		Error:     &APIError{Code: code, Message: message},
		RequestID: handlers.RequestIDFrom(r.Context()),
	})
}

// writeError maps domain error kinds to HTTP statuses. Store failures and
// unknown errors are logged and hidden behind a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			"path", r.URL.Path,
			"request_id", handlers.RequestIDFrom(r.Context()),
			"error", err,
		)
		writeJSONError(w, r, status, code, "An unexpected error occurred")
		return
	}

	msg := err.Error()
	var de *shared.DomainError
	if errors.As(err, &de) {
		msg = de.Message
	}
	writeJSONError(w, r, status, code, msg)
}

func statusFor(err error) (int, string) {
	switch {
	case shared.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	case shared.IsInvalidState(err):
		return http.StatusConflict, "invalid_state"
	case shared.IsValidation(err):
		return http.StatusUnprocessableEntity, "validation_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
