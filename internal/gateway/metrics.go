package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vietddude/sentinel/internal/metrics"
)

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.exportMetrics(w, r)
	case http.MethodPost:
		s.recordMetric(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) exportMetrics(w http.ResponseWriter, r *http.Request) {
	rng, _ := metrics.ParseRange(r.URL.Query().Get("range"))

	switch r.URL.Query().Get("format") {
	case "prometheus":
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(s.collector.Exposition()))
	case "", "json":
		writeJSON(w, http.StatusOK, s.collector.Snapshot(rng))
	default:
		writeError(w, http.StatusBadRequest, "format must be json or prometheus")
	}
}

func (s *Server) recordMetric(w http.ResponseWriter, r *http.Request) {
	var sample metrics.Sample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.collector.Record(sample); err != nil {
		if errors.Is(err, metrics.ErrInvalidSample) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error("metric recording failed", "name", sample.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record sample")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}
