// Package api exposes the checker over HTTP for CI systems that upload
// documents instead of sharing a filesystem. The batch checker itself
// never touches the network; serve mode is an operational wrapper.
package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/plancheck/internal/conformance"
	"github.com/dgallion1/plancheck/internal/config"
	"github.com/dgallion1/plancheck/internal/doctree"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for plancheck.
type Server struct {
	router chi.Router
	log    *slog.Logger
	cfg    config.Config
	opt    conformance.Optionality

	// Global template, parsed once at startup and reused for every
	// request that does not upload its own.
	global *doctree.Document
}

// NewServer creates and configures the HTTP server. global may be nil
// when no template is configured; requests must then upload one.
func NewServer(global *doctree.Document, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		log:    log,
		cfg:    cfg,
		opt:    cfg.Optionality(),
		global: global,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Checked endpoints, behind bearer auth when a key is configured.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey))
		}
		r.Post("/api/check", s.handleCheck)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
