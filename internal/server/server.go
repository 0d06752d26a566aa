// Package server exposes the scatter pipeline over HTTP.
//
// Rendered documents live in a [store.Store]; every edit decodes the state
// embedded in the stored SVG, applies the ops and stores the re-rendered
// document, so the SVG itself stays the single source of truth.
//
// # Routes
//
//	GET    /healthz
//	GET    /api/version
//	POST   /api/compositions                        generate and store
//	GET    /api/compositions                        list stored documents
//	GET    /api/compositions/{id}                   stored SVG
//	GET    /api/compositions/{id}/state             decoded composition
//	POST   /api/compositions/{id}/edits             apply []edit.Op
//	GET    /api/compositions/{id}/export/{format}   svg, json, png, pdf, preview
//	DELETE /api/compositions/{id}
//	POST   /api/decode                              raw SVG → composition or null
//	POST   /api/stamps                              image → stamp pool
//
// Errors are JSON objects {"error": message, "code": CODE}.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/scatter/pkg/pipeline"
	"github.com/matzehuels/scatter/pkg/store"
)

// Defaults.
const (
	DefaultAddr = "127.0.0.1:8080"

	// DefaultMaxBodyBytes bounds request bodies (SVGs, images, options).
	DefaultMaxBodyBytes = 16 << 20

	shutdownTimeout = 10 * time.Second
)

// Config wires a Server.
type Config struct {
	Runner       *pipeline.Runner
	Store        store.Store
	Logger       *log.Logger
	MaxBodyBytes int64
}

// Server serves the HTTP API.
type Server struct {
	runner  *pipeline.Runner
	store   store.Store
	logger  *log.Logger
	maxBody int64
	router  chi.Router
}

// New creates a server. Nil fields get working defaults: an uncached
// runner, an in-memory store and the default logger.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Store == nil {
		cfg.Store = store.NewMemoryStore()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	s := &Server{
		runner:  cfg.Runner,
		store:   store.Instrument(cfg.Store),
		logger:  cfg.Logger,
		maxBody: cfg.MaxBodyBytes,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", s.handleVersion)
		r.Post("/decode", s.handleDecode)
		r.Post("/stamps", s.handleStamps)

		r.Route("/compositions", func(r chi.Router) {
			r.Post("/", s.handleCreate)
			r.Get("/", s.handleList)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGet)
				r.Delete("/", s.handleDelete)
				r.Get("/state", s.handleState)
				r.Post("/edits", s.handleEdits)
				r.Get("/export/{format}", s.handleExport)
			})
		})
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
