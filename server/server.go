// Package server provides HTTP server management and lifecycle handling for the status
// service. It builds the middleware chain, applies the status directives to their
// location and mounts it next to the health and metrics endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/giygas/nginx-status/config"
	"github.com/giygas/nginx-status/directives"
	"github.com/giygas/nginx-status/handlers"
	"github.com/giygas/nginx-status/health"
	"github.com/giygas/nginx-status/interfaces"
	"github.com/giygas/nginx-status/logging"
	"github.com/giygas/nginx-status/metrics"
	"github.com/giygas/nginx-status/stats"
	"github.com/giygas/nginx-status/status"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP server
type Server struct {
	server   *http.Server
	router   chi.Router
	config   *config.Config
	tracker  *stats.Tracker
	source   interfaces.CounterSource
	store    interfaces.SnapshotStore
	limiter  *RateLimiter
	registry *prometheus.Registry
	location *directives.Location
}

// NewServer creates a new server instance. The tracker always observes the
// server; it only feeds the status report when STATUS_COUNTERS is live.
func NewServer(cfg *config.Config, tracker *stats.Tracker, store interfaces.SnapshotStore) (*Server, error) {
	source, err := status.NewSource(cfg.StatusCounters, tracker)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter source: %w", err)
	}

	router := chi.NewRouter()

	s := &Server{
		server: &http.Server{
			Handler:        router,
			Addr:           net.JoinHostPort(cfg.Address, cfg.Port),
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: int(cfg.MaxHeaderSize),
			ConnState:      tracker.TrackConnState,
		},
		router:   router,
		config:   cfg,
		tracker:  tracker,
		source:   source,
		store:    store,
		limiter:  NewRateLimiter(),
		registry: metrics.NewRegistry(source),
	}

	location, err := s.configureLocation()
	if err != nil {
		return nil, err
	}
	s.location = location

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// configureLocation applies the status directives from cfg in the blocks they
// appear in and returns the resulting location
func (s *Server) configureLocation() (*directives.Location, error) {
	module := directives.NewModule(status.NewResponder(s.source, s.config.MaxRequestBody))
	loc := &directives.Location{Path: s.config.StatusLocation}

	if s.config.StatusFormat != nil {
		if err := module.Apply(directives.MainConf, loc, "status_format", s.config.StatusFormat...); err != nil {
			return nil, fmt.Errorf("failed to apply status_format: %w", err)
		}
	}

	if s.config.StatusZone != nil {
		if err := module.Apply(directives.SrvConf, loc, "status_zone", s.config.StatusZone...); err != nil {
			return nil, fmt.Errorf("failed to apply status_zone: %w", err)
		}
	}

	if s.config.StatusEnabled {
		if err := module.Apply(directives.LocConf, loc, "status"); err != nil {
			return nil, fmt.Errorf("failed to apply status: %w", err)
		}
	}

	return loc, nil
}

func (s *Server) logger() *slog.Logger {
	if logging.DefaultLoggingService != nil && logging.DefaultLoggingService.Logger != nil {
		return logging.DefaultLoggingService.Logger
	}
	return slog.Default()
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(BlockDirectAccessMiddleware) // before RealIPMiddleware to see the original RemoteAddr
	s.router.Use(RealIPMiddleware)
	s.router.Use(s.tracker.Middleware)
	s.router.Use(metrics.Metrics)
	s.router.Use(logging.LoggingMiddleware(s.logger()))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(s.limiter.Middleware)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	if s.location.Handler != nil {
		s.router.Handle(s.location.Path, s.location.Handler)
		logging.Info("Status location mounted", "path", s.location.Path)
	}

	checker := health.NewHealthChecker(s.store, s.config.SnapshotInterval, s.StatusMounted())
	s.router.Get("/health", handlers.HealthCheck(checker, s.store.GetServerStartTime()))

	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
}

// Source returns the counter source served by the status location
func (s *Server) Source() interfaces.CounterSource {
	return s.source
}

// Limiter returns the rate limiter so its idle buckets can be cleaned up
func (s *Server) Limiter() *RateLimiter {
	return s.limiter
}

// StatusMounted reports whether the status directive attached a handler
func (s *Server) StatusMounted() bool {
	return s.location.Handler != nil
}

// Start starts the server
func (s *Server) Start() error {
	logging.Info(fmt.Sprintf("Starting server at: %s", s.server.Addr),
		"env", s.config.Env.String(),
		"counters", s.config.StatusCounters)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}
