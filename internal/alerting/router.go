// Package alerting validates incoming alert events, classifies them by
// severity and dispatches them to the matching escalation path.
package alerting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/sentinel/internal/core/domain"
	"github.com/vietddude/sentinel/internal/infra/storage"
	"github.com/vietddude/sentinel/internal/metrics"
)

// Event is an incoming alert submission.
type Event struct {
	Type        domain.AlertType `json:"type"`
	Severity    domain.Severity  `json:"severity"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	ID          string           `json:"id,omitempty"`
	Timestamp   string           `json:"timestamp,omitempty"`
}

// Receipt acknowledges an accepted event. Action describes which
// escalation path was taken.
type Receipt struct {
	ID        string    `json:"alertId"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
}

// ErrMissingID is returned by id-keyed operations when the id is absent.
var ErrMissingID = errors.New("missing alert identifier")

// RejectionError reports a shape or enumeration violation. No side effect
// has occurred when it is returned.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string { return e.Reason }

// Router routes validated alert events to storage and escalation.
type Router struct {
	repo     storage.AlertRepository
	pager    Pager
	incident IncidentCreator
	notifier Notifier
	log      *slog.Logger
}

// NewRouter creates a router. Escalation collaborators may be nil, in which
// case the corresponding path degrades to logging.
func NewRouter(
	repo storage.AlertRepository,
	pager Pager,
	incident IncidentCreator,
	notifier Notifier,
	log *slog.Logger,
) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		repo:     repo,
		pager:    pager,
		incident: incident,
		notifier: notifier,
		log:      log,
	}
}

// Submit validates and routes one event. Validation order: required fields,
// then type enumeration, then severity enumeration; the first failing check
// determines the rejection reason. For critical severity the immediate
// escalation path completes before Submit returns; high severity is
// dispatched fire-and-forget.
func (r *Router) Submit(ctx context.Context, event Event) (*Receipt, error) {
	if err := validate(event); err != nil {
		metrics.AlertsRejectedTotal.Inc()
		return nil, err
	}

	alert := &domain.Alert{
		ID:          event.ID,
		Type:        event.Type,
		Severity:    event.Severity,
		Title:       event.Title,
		Description: event.Description,
		Timestamp:   parseTimestamp(event.Timestamp),
	}
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}

	if err := r.repo.Save(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to store alert: %w", err)
	}

	r.log.Info("alert received",
		"id", alert.ID,
		"type", string(alert.Type),
		"severity", string(alert.Severity),
		"title", alert.Title,
	)
	metrics.AlertsTotal.WithLabelValues(string(alert.Severity)).Inc()

	return &Receipt{
		ID:        alert.ID,
		Timestamp: alert.Timestamp,
		Action:    r.escalate(ctx, alert),
	}, nil
}

// escalate dispatches severity side effects and returns the action taken.
// The action names only the paths that were actually dispatched: with no
// collaborator wired, the path degrades to logging and says so.
func (r *Router) escalate(ctx context.Context, alert *domain.Alert) string {
	switch alert.Severity {
	case domain.SeverityCritical:
		metrics.EscalationsTotal.WithLabelValues("immediate").Inc()
		action := "logged"
		if r.pager != nil {
			if err := r.pager.Page(ctx, alert); err != nil {
				r.log.Error("failed to page on-call", "id", alert.ID, "error", err)
			}
			action += ", on-call paged"
		}
		if r.incident != nil {
			if err := r.incident.CreateIncident(ctx, alert); err != nil {
				r.log.Error("failed to create incident", "id", alert.ID, "error", err)
			}
			action += ", incident created"
		}
		return action

	case domain.SeverityHigh:
		metrics.EscalationsTotal.WithLabelValues("deferred").Inc()
		if r.notifier == nil {
			return "logged"
		}
		// Non-blocking by design: team notification is not on the
		// response path.
		copied := *alert
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := r.notifier.Notify(ctx, &copied); err != nil {
				r.log.Error("failed to notify team", "id", copied.ID, "error", err)
			}
		}()
		return "logged, team notified"

	default:
		metrics.EscalationsTotal.WithLabelValues("log").Inc()
		return "logged"
	}
}

// Get returns a stored alert by id.
func (r *Router) Get(ctx context.Context, id string) (*domain.Alert, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	return r.repo.Get(ctx, id)
}

// List returns all stored alerts, newest first.
func (r *Router) List(ctx context.Context) ([]*domain.Alert, error) {
	return r.repo.List(ctx)
}

// Resolve updates the resolution state of an alert. Pass-through state
// transition: presence of the id is the only business rule.
func (r *Router) Resolve(ctx context.Context, id string, resolved bool, resolution string) error {
	if id == "" {
		return ErrMissingID
	}
	return r.repo.SetResolved(ctx, id, resolved, resolution)
}

// Delete removes an alert by id.
func (r *Router) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	return r.repo.Delete(ctx, id)
}

func validate(event Event) error {
	var missing []string
	if event.Type == "" {
		missing = append(missing, "type")
	}
	if event.Severity == "" {
		missing = append(missing, "severity")
	}
	if event.Title == "" {
		missing = append(missing, "title")
	}
	if event.Description == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return &RejectionError{
			Reason: fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")),
		}
	}

	if !domain.ValidAlertType(event.Type) {
		return &RejectionError{
			Reason: fmt.Sprintf("invalid type %q, must be one of: %s",
				event.Type, joinTypes(domain.AlertTypes)),
		}
	}
	if !domain.ValidSeverity(event.Severity) {
		return &RejectionError{
			Reason: fmt.Sprintf("invalid severity %q, must be one of: %s",
				event.Severity, joinSeverities(domain.Severities)),
		}
	}
	return nil
}

func parseTimestamp(s string) time.Time {
	if s != "" {
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			return ts
		}
	}
	return time.Now().UTC()
}

func joinTypes(types []domain.AlertType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

func joinSeverities(sevs []domain.Severity) string {
	parts := make([]string, len(sevs))
	for i, s := range sevs {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
