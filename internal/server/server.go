// Package server exposes the radial layout pipeline over HTTP.
//
// Endpoints:
//
//	GET  /healthz               liveness and version
//	POST /v1/layout             descriptor bundle as JSON
//	POST /v1/render/{format}    chart as svg, pdf or json
//
// Both POST endpoints take the widget update shape:
//
//	{"rows": [...], "fieldRoles": {...}, "config": {...}, "surfaceSize": {...}}
//
// Failures are answered with {"kind", "title", "message"}, the same report
// a widget hands to its host.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/radials/pkg/buildinfo"
	"github.com/matzehuels/radials/pkg/errors"
	"github.com/matzehuels/radials/pkg/pipeline"
	"github.com/matzehuels/radials/pkg/radial"
	"github.com/matzehuels/radials/pkg/widget"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes = 10 << 20
)

// Server is the HTTP API server.
type Server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	timeout time.Duration
	origins []string
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option { return func(s *Server) { s.timeout = d } }

// WithCORSOrigins sets the origins allowed to call the API from a browser.
// The default allows any origin.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

// New creates a server that runs requests through runner.
func New(runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	s := &Server{runner: runner, logger: logger, timeout: DefaultTimeout, origins: []string{"*"}}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader, "ETag"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/render/{format}", s.handleRender)
	})

	return r
}

// layoutRequest is the body of both POST endpoints.
type layoutRequest struct {
	widget.Request
	Title string `json:"title,omitempty"`
}

type layoutResponse struct {
	Bundle radial.Bundle `json:"bundle"`
	Stats  radial.Stats  `json:"stats"`
	Cached bool          `json:"cached"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Get().Version,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	bundle, stats, cached, err := s.runner.LayoutWithCacheInfo(r.Context(), s.options(r, req, nil))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{Bundle: bundle, Stats: stats, Cached: cached})
}

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	req, err := decodeRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), s.options(r, req, []string{format}))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("ETag", `"`+result.LayoutHash[:16]+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func (s *Server) options(r *http.Request, req layoutRequest, formats []string) pipeline.Options {
	return pipeline.Options{
		Rows:    req.Rows,
		Roles:   req.Roles,
		Config:  req.Config,
		Width:   req.Size.Width,
		Height:  req.Size.Height,
		Formats: formats,
		Title:   req.Title,
		Logger:  s.logger.With("request_id", RequestIDFromContext(r.Context())),
	}
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (layoutRequest, error) {
	var req layoutRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return req, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return req, nil
}

// statusFor maps error codes to HTTP statuses. The layout taxonomy means
// the request was well-formed but cannot be charted.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeMissingFields, errors.ErrCodeNoValidData, errors.ErrCodeInvalidConfiguration:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", RequestIDFromContext(r.Context()), "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, widget.ErrorReport{Kind: code, Title: errors.Title(code), Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
