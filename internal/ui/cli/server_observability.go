// Package cli hosts the HTTP surface of the command line tool: the
// Prometheus metrics endpoint, the health check and a small JSON view
// over recorded analysis runs.
package cli

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"hookdeps/internal/core/app"
	"hookdeps/internal/data/history"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ObservabilityServer struct {
	addr          string
	healthService *app.HealthService
	store         *history.Store
	server        *http.Server
}

// NewObservabilityServer wires the endpoints. The store may be nil
// when run history is disabled; /runs then reports 404.
func NewObservabilityServer(addr string, healthService *app.HealthService, store *history.Store) *ObservabilityServer {
	return &ObservabilityServer{
		addr:          addr,
		healthService: healthService,
		store:         store,
	}
}

func (s *ObservabilityServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/runs", s.handleRuns)

	s.server = &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	slog.Info("observability server starting", "addr", s.addr)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("observability server failed", "error", err)
		}
	}()

	return nil
}

func (s *ObservabilityServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.healthService.Check(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if status.Status != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(status)
}

func (s *ObservabilityServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "run history is disabled", http.StatusNotFound)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := s.store.RecentRuns(limit)
	if err != nil {
		slog.Error("failed to load recent runs", "error", err)
		http.Error(w, "failed to load recent runs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

func (s *ObservabilityServer) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
