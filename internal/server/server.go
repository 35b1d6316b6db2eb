/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/friendsincode/bankscope/internal/config"
	"github.com/friendsincode/bankscope/internal/events"
	"github.com/friendsincode/bankscope/internal/session"
	"github.com/friendsincode/bankscope/internal/telemetry"
)

// Server exposes a session over HTTP. It never writes to the scanned tree.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	closers    []func() error

	session     *session.Session
	bus         *events.Bus
	scanLimiter *rate.Limiter
}

// New constructs the server and registers routes.
func New(cfg *config.Config, sess *session.Session, bus *events.Bus, logger zerolog.Logger) *Server {
	logger = logger.With().Str("component", "http").Logger()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	router.Use(telemetry.TracingMiddleware("bankscope-api"))
	router.Use(telemetry.MetricsMiddleware)
	// Event streams are long-lived; everything else gets a request deadline.
	router.Use(func(next http.Handler) http.Handler {
		timeout := middleware.Timeout(60 * time.Second)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
				next.ServeHTTP(w, r)
				return
			}
			timeout(next).ServeHTTP(w, r)
		})
	})

	limit, burst := rate.Inf, 1
	if cfg.ScanRateLimit > 0 {
		limit, burst = rate.Limit(cfg.ScanRateLimit), cfg.ScanRateBurst
	}

	srv := &Server{
		cfg:         cfg,
		logger:      logger,
		router:      router,
		session:     sess,
		bus:         bus,
		scanLimiter: rate.NewLimiter(limit, burst),
	}
	srv.configureRoutes()

	srv.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// requestLogger logs one line per request through zerolog.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Str("request_id", middleware.GetReqID(r.Context())).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		})
	}
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", telemetry.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/scan", s.handleScan)
		r.Get("/catalog", s.handleCatalog)
		r.Get("/languages", s.handleLanguages)
		r.Get("/view", s.handleView)

		r.Route("/filters", func(r chi.Router) {
			r.Get("/", s.handleListFilters)
			r.Post("/", s.handleAddFilter)
			r.Put("/", s.handleSetFilters)
			r.Delete("/", s.handleClearFilters)
			r.Put("/{index}", s.handleReplaceFilter)
			r.Delete("/{index}", s.handleRemoveFilter)
		})

		r.Get("/logs", s.handleLogs)
		r.Delete("/logs", s.handleClearLogs)

		r.Get("/ws/events", s.handleEvents)
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer exposes the underlying net/http server.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// Close releases owned resources in reverse order.
func (s *Server) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return fmt.Errorf("close server: %w", firstErr)
	}
	return nil
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}
