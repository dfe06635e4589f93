package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vietddude/sentinel/internal/core/domain"
	"github.com/vietddude/sentinel/internal/errs"
	"github.com/vietddude/sentinel/internal/retry"
)

// Pager pages the on-call engineer. Immediate escalation path for
// critical alerts.
type Pager interface {
	Page(ctx context.Context, alert *domain.Alert) error
}

// IncidentCreator opens an incident in the external tracker.
type IncidentCreator interface {
	CreateIncident(ctx context.Context, alert *domain.Alert) error
}

// Notifier sends a non-paging team notification. Deferred escalation path
// for high alerts.
type Notifier interface {
	Notify(ctx context.Context, alert *domain.Alert) error
}

// Webhook delivers alerts to an external escalation endpoint. External
// calls are fallible: each delivery is guarded by its own timeout and
// bounded retry.
type Webhook struct {
	url    string
	client *http.Client
	policy retry.Policy
}

// NewWebhook creates a webhook escalator for the given endpoint. The policy
// governs delivery retries; a zero policy falls back to a short default
// suited to the synchronous escalation path.
func NewWebhook(url string, timeout time.Duration, policy retry.Policy) *Webhook {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if policy.MaxAttempts < 1 {
		policy = retry.Policy{
			MaxAttempts: 3,
			BaseDelay:   500 * time.Millisecond,
			MaxDelay:    5 * time.Second,
			Multiplier:  2.0,
		}
	}
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: timeout},
		policy: policy,
	}
}

// Page implements Pager.
func (w *Webhook) Page(ctx context.Context, alert *domain.Alert) error {
	return w.deliver(ctx, "page", alert)
}

// CreateIncident implements IncidentCreator.
func (w *Webhook) CreateIncident(ctx context.Context, alert *domain.Alert) error {
	return w.deliver(ctx, "incident", alert)
}

// Notify implements Notifier.
func (w *Webhook) Notify(ctx context.Context, alert *domain.Alert) error {
	return w.deliver(ctx, "notify", alert)
}

func (w *Webhook) deliver(ctx context.Context, action string, alert *domain.Alert) error {
	payload, err := json.Marshal(map[string]any{
		"action": action,
		"alert":  alert,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal escalation payload: %w", err)
	}

	return retry.Do(ctx, w.policy, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.client.Do(req)
		if err != nil {
			return err
		}
		defer func() {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}()

		if resp.StatusCode >= 400 {
			return &errs.APIStatusError{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("escalation endpoint returned %s", resp.Status),
			}
		}
		return nil
	})
}
