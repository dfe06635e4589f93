package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vietddude/sentinel/internal/alerting"
	"github.com/vietddude/sentinel/internal/core/domain"
	"github.com/vietddude/sentinel/internal/metrics"
)

// errorRateThreshold is the per-batch error-entry count above which a rate
// warning is emitted.
const errorRateThreshold = 10

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var entries []domain.LogEntry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	processed, dropped, errorCount := 0, 0, 0
	for _, entry := range entries {
		if !entry.Valid() {
			dropped++
			metrics.LogEntriesDroppedTotal.Inc()
			continue
		}
		processed++

		attrs := []any{
			"client_ts", entry.Timestamp,
			"component", entry.Component,
			"session_id", entry.SessionID,
		}
		switch entry.Level {
		case domain.LogDebug:
			s.log.Debug(entry.Message, attrs...)
		case domain.LogInfo:
			s.log.Info(entry.Message, attrs...)
		case domain.LogWarn:
			s.log.Warn(entry.Message, attrs...)
		case domain.LogError:
			errorCount++
			s.log.Error(entry.Message, attrs...)
		case domain.LogCritical:
			s.log.Error(entry.Message, attrs...)
			s.surfaceCritical(r, entry)
		}
	}

	if errorCount > errorRateThreshold {
		s.log.Warn("elevated client error rate in log batch",
			"errors", errorCount, "batch_size", len(entries))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "processed",
		"processed": processed,
		"dropped":   dropped,
	})
}

// surfaceCritical turns a critical client log entry into a critical alert
// so it rides the immediate escalation path.
func (s *Server) surfaceCritical(r *http.Request, entry domain.LogEntry) {
	component := entry.Component
	if component == "" {
		component = "client"
	}
	_, err := s.router.Submit(r.Context(), alerting.Event{
		Type:        domain.AlertError,
		Severity:    domain.SeverityCritical,
		Title:       fmt.Sprintf("critical client log from %s", component),
		Description: entry.Message,
		Timestamp:   entry.Timestamp,
	})
	if err != nil {
		s.log.Error("failed to surface critical log entry",
			"error", err, "component", component)
	}
}
