// Package http exposes editor sessions over a JSON API with a server-sent
// event feed of graph diffs.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/recoverly/flowedit/internal/logging"
	"github.com/recoverly/flowedit/pkg/domain"
	"github.com/recoverly/flowedit/pkg/editor"
	"github.com/recoverly/flowedit/pkg/ports"
	"github.com/recoverly/flowedit/pkg/session"
)

// Server serves the editor API on top of a session manager.
type Server struct {
	Sessions  *session.Manager
	Templates ports.TemplateLoader // Optional
	Streams   *StreamManager

	spec    *openapi3.T
	metrics http.Handler
	version string
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithTemplates enables the template routes and template_id on session open.
func WithTemplates(loader ports.TemplateLoader) Option {
	return func(s *Server) { s.Templates = loader }
}

// WithStreams shares a StreamManager that is also the manager's publisher.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) { s.Streams = sm }
}

// WithMetrics mounts a metrics handler on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithVersion sets the build version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewHandler builds the chi router for the API.
func NewHandler(mgr *session.Manager, opts ...Option) (http.Handler, error) {
	s := &Server{
		Sessions: mgr,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}

	spec, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}
	s.spec = spec
	validate, err := validateRequests(spec)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(enableCORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/info", s.info)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(validate)

		r.Get("/templates", s.listTemplates)
		r.Get("/templates/{templateId}", s.getTemplate)

		r.Get("/automations", s.listAutomations)
		r.Get("/automations/{automationId}", s.getAutomation)
		r.Delete("/automations/{automationId}", s.deleteAutomation)
		r.Get("/automations/{automationId}/events", s.subscribeEvents)

		r.Get("/sessions", s.listSessions)
		r.Post("/sessions", s.openSession)
		r.Get("/sessions/{sessionId}", s.getSession)
		r.Delete("/sessions/{sessionId}", s.closeSession)
		r.Post("/sessions/{sessionId}/edits", s.applyEdit)
		r.Post("/sessions/{sessionId}/undo", s.undo)
		r.Post("/sessions/{sessionId}/redo", s.redo)
		r.Post("/sessions/{sessionId}/save", s.save)
	})

	return r, nil
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// info reports the API and build versions.
func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"title":       s.spec.Info.Title,
		"api_version": s.spec.Info.Version,
		"version":     s.version,
	})
}

// -- Templates --

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	if s.Templates == nil {
		writeJSON(w, http.StatusOK, []string{})
		return
	}
	ids, err := s.Templates.ListTemplates(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) getTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "templateId")
	t, err := s.template(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "template_id", id)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) template(ctx context.Context, id string) (*domain.Template, error) {
	if s.Templates == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, id)
	}
	return s.Templates.GetTemplate(ctx, id)
}

// -- Automations --

func (s *Server) listAutomations(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.Automations(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) getAutomation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "automationId")
	a, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "automation_id", id)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) deleteAutomation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "automationId")
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err, "automation_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -- Sessions --

type openBody struct {
	AutomationID string `json:"automation_id"`
	TenantID     string `json:"tenant_id"`
	Name         string `json:"name"`
	TemplateID   string `json:"template_id"`
}

// stepResponse is the session after an undo or redo. Moved is false at the
// history boundary.
type stepResponse struct {
	*session.Info
	Moved bool `json:"moved"`
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sessions.List())
}

func (s *Server) openSession(w http.ResponseWriter, r *http.Request) {
	var body openBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, r, &domain.InvalidOperationError{Op: "open", Reason: "invalid request body", Err: err})
		return
	}

	req := session.OpenRequest{
		AutomationID: body.AutomationID,
		TenantID:     body.TenantID,
		Name:         body.Name,
	}
	if body.TemplateID != "" {
		t, err := s.template(r.Context(), body.TemplateID)
		if err != nil {
			s.fail(w, r, err, "template_id", body.TemplateID)
			return
		}
		req.Initial = &t.Graph
		if req.Name == "" {
			req.Name = t.Name
		}
	}

	info, err := s.Sessions.Open(r.Context(), req)
	if err != nil {
		s.fail(w, r, err, "automation_id", body.AutomationID)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	info, err := s.Sessions.Snapshot(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "session_id", id)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	if err := s.Sessions.Close(r.Context(), id); err != nil {
		s.fail(w, r, err, "session_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) applyEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.fail(w, r, &domain.InvalidOperationError{Op: "decode", Reason: "invalid request body", Err: err}, "session_id", id)
		return
	}
	e, err := editor.DecodeEdit(raw)
	if err != nil {
		s.fail(w, r, err, "session_id", id)
		return
	}

	info, err := s.Sessions.Apply(r.Context(), id, e)
	if err != nil {
		s.fail(w, r, err, "session_id", id, "op", string(e.Op))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, s.Sessions.Undo)
}

func (s *Server) redo(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, s.Sessions.Redo)
}

func (s *Server) step(w http.ResponseWriter, r *http.Request, move func(context.Context, string) (*session.Info, bool, error)) {
	id := chi.URLParam(r, "sessionId")
	info, moved, err := move(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "session_id", id)
		return
	}
	writeJSON(w, http.StatusOK, stepResponse{Info: info, Moved: moved})
}

func (s *Server) save(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	a, err := s.Sessions.Save(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "session_id", id)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
