// Package web provides the HTTP API for extracting report tables.
package web

import (
	"context"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/tablewrap/internal/coerce"
	"github.com/JonMunkholm/tablewrap/internal/config"
	"github.com/JonMunkholm/tablewrap/internal/logging"
	"github.com/JonMunkholm/tablewrap/internal/report"
	"github.com/JonMunkholm/tablewrap/internal/store"
	"github.com/JonMunkholm/tablewrap/internal/web/middleware"
)

// Saver persists extracted records. *store.Store satisfies it.
type Saver interface {
	Save(ctx context.Context, def *report.Definition, res *report.Result) (*store.Import, error)
}

// Server is the HTTP server for report extraction.
type Server struct {
	cfg      *config.Config
	saver    Saver
	coercion coerce.Cells
	comma    rune
	limiter  *limiter
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new Server instance. saver may be nil, in which case
// requests with save=true are rejected.
func NewServer(cfg *config.Config, saver Saver) (*Server, error) {
	loc, err := cfg.Import.Location()
	if err != nil {
		return nil, fmt.Errorf("import time zone: %w", err)
	}
	comma, _ := utf8.DecodeRuneInString(cfg.Import.Comma)

	s := &Server{
		cfg:      cfg,
		saver:    saver,
		coercion: coerce.Cells{Location: loc, TwoDigitYearPivot: cfg.Import.TwoDigitYearPivot},
		comma:    comma,
		limiter:  newLimiter(cfg.Import.MaxConcurrent, cfg.Import.QueueTimeout),
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Server.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]any{
			"status":      "ok",
			"shapes":      report.Count(),
			"saving":      s.saver != nil,
			"extractions": s.limiter.status(),
		})
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(s.cfg.Server.APIKeys))

		// Shape catalogue
		r.Get("/shapes", s.handleListShapes)
		r.Get("/shapes/{key}", s.handleGetShape)

		// Extraction
		r.Post("/extract/{key}", s.handleExtract)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	logging.FromContext(context.Background()).Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and waits for running extractions.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	return s.limiter.drain(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// The API serves JSON only
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		w.Header().Set("Referrer-Policy", "no-referrer")

		next.ServeHTTP(w, r)
	})
}
