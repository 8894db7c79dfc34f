// Package httpapi is the oracle's inbound HTTP surface: POST /verify,
// GET /healthz, and GET /metrics on a gorilla/mux router, adapted from the
// teacher's internal/api server shape (same router setup, with recover and
// logging middleware; no CORS middleware) trimmed to the handful of routes
// this oracle actually exposes.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hot-dao/hot-validation-oracle/internal/orchestrator"
)

// Server is the oracle's HTTP front door.
type Server struct {
	orchestrator *orchestrator.Orchestrator
	router       *mux.Router
	server       *http.Server
	logger       zerolog.Logger
	authSecret   string
}

// NewServer builds a Server listening on addr, wired to orch.
func NewServer(addr string, authSecret string, orch *orchestrator.Orchestrator, logger zerolog.Logger) *Server {
	router := mux.NewRouter()

	s := &Server{
		orchestrator: orch,
		router:       router,
		logger:       logger.With().Str("component", "httpapi").Logger(),
		authSecret:   authSecret,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.router.Handle("/verify", s.requireBearer(http.HandlerFunc(s.handleVerify))).Methods(http.MethodPost)

	s.router.Use(s.recoverMiddleware)
	s.router.Use(s.loggingMiddleware)
}

// Start blocks serving HTTP until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.server.Addr).Msg("starting http server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("httpapi: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("stopping http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
