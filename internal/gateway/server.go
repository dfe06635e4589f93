// Package gateway exposes the alert, metrics, csrf and log-ingestion HTTP
// endpoints.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/sentinel/internal/alerting"
	"github.com/vietddude/sentinel/internal/metrics"
)

// Server provides the HTTP API for the signal pipeline.
type Server struct {
	router    *alerting.Router
	collector *metrics.Collector
	log       *slog.Logger
	server    *http.Server
}

// NewServer creates a new gateway server.
func NewServer(router *alerting.Router, collector *metrics.Collector, log *slog.Logger, port int) *Server {
	if log == nil {
		log = slog.Default()
	}

	mux := http.NewServeMux()
	s := &Server{
		router:    router,
		collector: collector,
		log:       log,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/api/alerts", s.handleAlerts)
	mux.HandleFunc("/api/metrics", s.handleMetrics)
	mux.HandleFunc("/api/csrf", s.handleCSRF)
	mux.HandleFunc("/api/logs", s.handleLogs)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
