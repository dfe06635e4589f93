package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/vietddude/sentinel/internal/alerting"
	"github.com/vietddude/sentinel/internal/infra/storage"
)

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.submitAlert(w, r)
	case http.MethodGet:
		s.getAlerts(w, r)
	case http.MethodPut:
		s.resolveAlert(w, r)
	case http.MethodDelete:
		s.deleteAlert(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) submitAlert(w http.ResponseWriter, r *http.Request) {
	var event alerting.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	receipt, err := s.router.Submit(r.Context(), event)
	if err != nil {
		var rejection *alerting.RejectionError
		if errors.As(err, &rejection) {
			writeError(w, http.StatusBadRequest, rejection.Reason)
			return
		}
		s.log.Error("alert submission failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to process alert")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "received",
		"alertId":   receipt.ID,
		"timestamp": receipt.Timestamp.Format(time.RFC3339),
		"action":    receipt.Action,
	})
}

func (s *Server) getAlerts(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("id"); id != "" {
		alert, err := s.router.Get(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		if err != nil {
			s.log.Error("alert lookup failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load alert")
			return
		}
		writeJSON(w, http.StatusOK, alert)
		return
	}

	alerts, err := s.router.List(r.Context())
	if err != nil {
		s.log.Error("alert listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts, "count": len(alerts)})
}

func (s *Server) resolveAlert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AlertID    string `json:"alertId"`
		Resolved   bool   `json:"resolved"`
		Resolution string `json:"resolution,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.router.Resolve(r.Context(), req.AlertID, req.Resolved, req.Resolution)
	if errors.Is(err, alerting.ErrMissingID) {
		writeError(w, http.StatusBadRequest, "alertId is required")
		return
	}
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "alert not found")
		return
	}
	if err != nil {
		s.log.Error("alert update failed", "id", req.AlertID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update alert")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "updated", "alertId": req.AlertID})
}

func (s *Server) deleteAlert(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	err := s.router.Delete(r.Context(), id)
	if errors.Is(err, alerting.ErrMissingID) {
		writeError(w, http.StatusBadRequest, "id query parameter is required")
		return
	}
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "alert not found")
		return
	}
	if err != nil {
		s.log.Error("alert deletion failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete alert")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted", "alertId": id})
}
