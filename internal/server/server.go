package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"socks-bot/internal/config"
	custommiddleware "socks-bot/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// HealthChecker reports the state of a backing store
type HealthChecker interface {
	Health(ctx context.Context) map[string]string
}

// Server is the operations HTTP server. Chat traffic never passes through it.
type Server struct {
	*http.Server
	logger    *zap.Logger
	resources []io.Closer
}

// NewServer builds the ops router; resources are closed by Close
func NewServer(cfg *config.Config, logger *zap.Logger, health HealthChecker, gatherer prometheus.Gatherer, resources ...io.Closer) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(custommiddleware.HTTPLogging(logger))

	router.Get("/health", healthHandler(health))
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		logger:    logger,
		resources: resources,
	}
}

func healthHandler(health HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := health.Health(r.Context())

		status := http.StatusOK
		if stats["status"] != "up" {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(stats)
	}
}

// Close releases the resources handed to NewServer
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	for _, r := range s.resources {
		if err := r.Close(); err != nil {
			s.logger.Error("Failed to close resource", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}

// StaticHealth reports a fixed status, used when no database is configured
type StaticHealth map[string]string

func (h StaticHealth) Health(ctx context.Context) map[string]string {
	return h
}
