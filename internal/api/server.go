// Package api exposes the engine to UI callers over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/repcard/engine/internal/engine/flow"
	"github.com/repcard/engine/internal/infra/rpc/provider"
	"github.com/repcard/engine/internal/infra/storage"
)

// HealthChecker reports a collaborator's liveness.
type HealthChecker func(ctx context.Context) error

// ProviderHealthFunc reports per-provider RPC health for the detailed
// health endpoint.
type ProviderHealthFunc func() map[string]provider.HealthStatus

// Server hosts the transaction, outcome history, health and metrics
// endpoints.
type Server struct {
	flow      *flow.Flow
	outcomes  storage.OutcomeRepository
	checks    map[string]HealthChecker
	providers ProviderHealthFunc
	server    *http.Server
}

// NewServer creates the API server.
func NewServer(f *flow.Flow, outcomes storage.OutcomeRepository, checks map[string]HealthChecker, providers ProviderHealthFunc, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		flow:      f,
		outcomes:  outcomes,
		checks:    checks,
		providers: providers,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	mux.HandleFunc("POST /v1/transactions", s.handleExecute)
	mux.HandleFunc("GET /v1/outcomes", s.handleOutcomes)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/detailed", s.handleDetailed)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
