// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It connects handlers, middleware, and
// routes, and decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// WHY SEPARATE FROM main.go?
// Keeping server setup in its own package makes it:
// - Testable (we can create a test server without running main)
// - Reusable (the CLI lookup command builds the same profile pipeline)
// - Clean (main.go stays minimal: load config, start the server)
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config → NewProfileFetcher:
//	    github.Client (provider) → ProfileService → cache.Profiles
//	cache.Profiles → ProfileHandler → routes
//
// This is the "composition root" pattern: all dependencies are wired in one
// place (New / NewProfileFetcher) rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/cors"

	"github.com/sakif/devprofile/internal/cache"
	"github.com/sakif/devprofile/internal/config"
	"github.com/sakif/devprofile/internal/handler"
	"github.com/sakif/devprofile/internal/metrics"
	"github.com/sakif/devprofile/internal/middleware"
	ghprovider "github.com/sakif/devprofile/internal/provider/github"
	"github.com/sakif/devprofile/internal/service"
	"github.com/sakif/devprofile/internal/skills"
)

// shutdownTimeout is how long in-flight requests get to finish on shutdown.
const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server and all its dependencies.
type Server struct {
	router   *chi.Mux
	config   *config.Config
	logger   *slog.Logger
	profiles handler.ProfileFetcher
	metrics  *metrics.Metrics
}

// New creates a Server from cfg, building the whole lookup pipeline.
//
// Metrics go to a private registry (plus the Go runtime and process
// collectors), which is what GET /metrics exposes.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	profiles, err := NewProfileFetcher(cfg, m, logger)
	if err != nil {
		return nil, err
	}
	return newServer(cfg, profiles, m, logger), nil
}

// NewProfileFetcher builds GitHub client → ProfileService → cache.
// With cfg.Cache.Size == 0 the service is returned uncached. m may be nil.
func NewProfileFetcher(cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) (handler.ProfileFetcher, error) {
	gh, err := ghprovider.New(ghprovider.Config{
		Token:   cfg.GitHub.Token,
		BaseURL: cfg.GitHub.BaseURL,
		Timeout: cfg.GitHub.HTTPTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating GitHub client: %w", err)
	}
	if cfg.GitHub.Token == "" {
		logger.Warn("no GitHub token configured; requests are limited to 60/hour")
	}

	svc := service.NewProfileService(
		gh,
		skills.New(skills.DefaultVocabulary),
		m,
		logger,
		service.Options{
			IncludeStarred:    cfg.GitHub.IncludeStarred,
			ReadmeConcurrency: cfg.Readme.Concurrency,
			ReadmeTimeout:     cfg.Readme.Timeout,
		},
	)

	if cfg.Cache.Size == 0 {
		return svc, nil
	}
	cached, err := cache.New(svc, cache.Config{Size: cfg.Cache.Size, TTL: cfg.Cache.TTL}, m)
	if err != nil {
		return nil, fmt.Errorf("creating profile cache: %w", err)
	}
	return cached, nil
}

func newServer(cfg *config.Config, profiles handler.ProfileFetcher, m *metrics.Metrics, logger *slog.Logger) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		profiles: profiles,
		metrics:  m,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET /healthz               → liveness probe
// GET /metrics               → Prometheus exposition
// GET /profile/{username}    → profile summary (JSON)
// GET /profile?user=...      → same, accepts a full profile URL
// GET /api/github/{username} → same, under the path the web UI calls
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added. Our order:
// 1. CORS: answers preflight requests before anything else runs
// 2. RequestID: assigns unique ID to each request (for tracing)
// 3. RealIP: extracts real client IP from proxy headers
// 4. Logger: logs each request with timing info, records HTTP metrics
// 5. Recoverer: catches panics and returns 500 instead of crashing
func (s *Server) setupRoutes() {
	s.router.Use(cors.New(cors.Options{
		AllowedOrigins: s.config.CORS.Origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
	}).Handler)
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger, s.metrics))
	s.router.Use(chimiddleware.Recoverer)

	profileHandler := handler.NewProfileHandler(s.profiles, s.logger)

	s.router.Get("/healthz", handler.HandleHealth)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	s.router.Get("/profile", profileHandler.HandleGetProfile)
	s.router.Get("/profile/{username}", profileHandler.HandleGetProfile)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/github/{username}", profileHandler.HandleGetProfile)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// httpServer builds the listener config. WriteTimeout comes from config
// because one request may fan out into a README fetch per repository.
func (s *Server) httpServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
}

// Run serves until ctx is cancelled.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
//
func (s *Server) Run(ctx context.Context) error {
	srv := s.httpServer()

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
