package alerting

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vietddude/sentinel/internal/core/domain"
	"github.com/vietddude/sentinel/internal/infra/storage"
	"github.com/vietddude/sentinel/internal/infra/storage/memory"
)

// =============================================================================
// Mock escalators
// =============================================================================

type mockEscalator struct {
	mu        sync.Mutex
	paged     []*domain.Alert
	incidents []*domain.Alert
	notified  []*domain.Alert
	err       error
}

func (m *mockEscalator) Page(ctx context.Context, a *domain.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paged = append(m.paged, a)
	return m.err
}

func (m *mockEscalator) CreateIncident(ctx context.Context, a *domain.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incidents = append(m.incidents, a)
	return m.err
}

func (m *mockEscalator) Notify(ctx context.Context, a *domain.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified = append(m.notified, a)
	return m.err
}

func (m *mockEscalator) counts() (paged, incidents, notified int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.paged), len(m.incidents), len(m.notified)
}

func newTestRouter(esc *mockEscalator) *Router {
	repo := memory.NewAlertRepo(memory.NewMemoryStorage())
	return NewRouter(repo, esc, esc, esc, nil)
}

func validEvent(severity domain.Severity) Event {
	return Event{
		Type:        domain.AlertError,
		Severity:    severity,
		Title:       "DB down",
		Description: "primary database unreachable",
	}
}

// =============================================================================
// Escalation paths
// =============================================================================

func TestSubmit_CriticalEscalatesSynchronously(t *testing.T) {
	esc := &mockEscalator{}
	router := newTestRouter(esc)

	receipt, err := router.Submit(context.Background(), validEvent(domain.SeverityCritical))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Immediate path completes before Submit returns
	paged, incidents, _ := esc.counts()
	if paged != 1 {
		t.Errorf("expected on-call paged once, got %d", paged)
	}
	if incidents != 1 {
		t.Errorf("expected one incident created, got %d", incidents)
	}
	if !strings.Contains(receipt.Action, "paged") || !strings.Contains(receipt.Action, "incident") {
		t.Errorf("action must describe immediate escalation, got %q", receipt.Action)
	}
}

func TestSubmit_HighNotifiesDeferred(t *testing.T) {
	esc := &mockEscalator{}
	router := newTestRouter(esc)

	receipt, err := router.Submit(context.Background(), validEvent(domain.SeverityHigh))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(receipt.Action, "team notified") {
		t.Errorf("action must describe deferred notification, got %q", receipt.Action)
	}

	// Fire-and-forget: allow the goroutine to land
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, _, notified := esc.counts(); notified == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("team notification never dispatched")
		}
		time.Sleep(5 * time.Millisecond)
	}

	paged, incidents, _ := esc.counts()
	if paged != 0 || incidents != 0 {
		t.Error("high severity must not page or open incidents")
	}
}

func TestSubmit_LowIsLogOnly(t *testing.T) {
	esc := &mockEscalator{}
	router := newTestRouter(esc)

	receipt, err := router.Submit(context.Background(), validEvent(domain.SeverityLow))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.Action != "logged" {
		t.Errorf("expected log-only action, got %q", receipt.Action)
	}

	time.Sleep(20 * time.Millisecond)
	paged, incidents, notified := esc.counts()
	if paged+incidents+notified != 0 {
		t.Error("low severity must trigger no escalation side effects")
	}
}

func TestSubmit_ActionReflectsWiredCollaborators(t *testing.T) {
	repo := memory.NewAlertRepo(memory.NewMemoryStorage())
	router := NewRouter(repo, nil, nil, nil, nil)

	receipt, err := router.Submit(context.Background(), validEvent(domain.SeverityCritical))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.Action != "logged" {
		t.Errorf("critical without collaborators degrades to logging, got %q", receipt.Action)
	}

	receipt, err = router.Submit(context.Background(), validEvent(domain.SeverityHigh))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.Action != "logged" {
		t.Errorf("high without notifier degrades to logging, got %q", receipt.Action)
	}

	esc := &mockEscalator{}
	router = NewRouter(repo, esc, nil, nil, nil)
	receipt, err = router.Submit(context.Background(), validEvent(domain.SeverityCritical))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.Action != "logged, on-call paged" {
		t.Errorf("action must name only the dispatched paths, got %q", receipt.Action)
	}
}

func TestSubmit_PagerFailureDoesNotRejectAlert(t *testing.T) {
	esc := &mockEscalator{err: errors.New("pager service down")}
	router := newTestRouter(esc)

	receipt, err := router.Submit(context.Background(), validEvent(domain.SeverityCritical))
	if err != nil {
		t.Fatalf("escalation failure must not reject the alert: %v", err)
	}
	if receipt.ID == "" {
		t.Error("expected alert id in receipt")
	}
}

// =============================================================================
// Validation
// =============================================================================

func TestSubmit_RejectsMissingFields(t *testing.T) {
	router := newTestRouter(&mockEscalator{})

	_, err := router.Submit(context.Background(), Event{Type: domain.AlertError})
	var rejection *RejectionError
	if !errors.As(err, &rejection) {
		t.Fatalf("expected RejectionError, got %v", err)
	}
	for _, field := range []string{"severity", "title", "description"} {
		if !strings.Contains(rejection.Reason, field) {
			t.Errorf("reason must name missing field %q: %q", field, rejection.Reason)
		}
	}
}

func TestSubmit_RejectsUnknownSeverity(t *testing.T) {
	router := newTestRouter(&mockEscalator{})

	event := validEvent("extreme")
	_, err := router.Submit(context.Background(), event)

	var rejection *RejectionError
	if !errors.As(err, &rejection) {
		t.Fatalf("expected RejectionError, got %v", err)
	}
	// Reason names the allowed severities
	for _, allowed := range []string{"low", "medium", "high", "critical"} {
		if !strings.Contains(rejection.Reason, allowed) {
			t.Errorf("reason must name %q: %q", allowed, rejection.Reason)
		}
	}
}

func TestSubmit_RejectsUnknownType(t *testing.T) {
	router := newTestRouter(&mockEscalator{})

	event := validEvent(domain.SeverityLow)
	event.Type = "weather"
	_, err := router.Submit(context.Background(), event)

	var rejection *RejectionError
	if !errors.As(err, &rejection) {
		t.Fatalf("expected RejectionError, got %v", err)
	}
	if !strings.Contains(rejection.Reason, "performance") {
		t.Errorf("reason must name allowed types: %q", rejection.Reason)
	}
}

func TestSubmit_NoSideEffectOnRejection(t *testing.T) {
	esc := &mockEscalator{}
	router := newTestRouter(esc)

	event := validEvent("extreme")
	_, _ = router.Submit(context.Background(), event)

	paged, incidents, notified := esc.counts()
	if paged+incidents+notified != 0 {
		t.Error("rejected event must cause no side effects")
	}
	alerts, _ := router.List(context.Background())
	if len(alerts) != 0 {
		t.Error("rejected event must not be stored")
	}
}

// =============================================================================
// Id-keyed operations
// =============================================================================

func TestResolve_RequiresID(t *testing.T) {
	router := newTestRouter(&mockEscalator{})

	if err := router.Resolve(context.Background(), "", true, "fixed"); !errors.Is(err, ErrMissingID) {
		t.Errorf("expected ErrMissingID, got %v", err)
	}
	if err := router.Delete(context.Background(), ""); !errors.Is(err, ErrMissingID) {
		t.Errorf("expected ErrMissingID, got %v", err)
	}
}

func TestResolve_PassThrough(t *testing.T) {
	router := newTestRouter(&mockEscalator{})

	receipt, err := router.Submit(context.Background(), validEvent(domain.SeverityMedium))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if err := router.Resolve(context.Background(), receipt.ID, true, "restarted db"); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	alert, err := router.Get(context.Background(), receipt.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !alert.Resolved || alert.Resolution != "restarted db" {
		t.Errorf("expected resolved alert, got %+v", alert)
	}

	// Unresolve is an accepted transition too
	if err := router.Resolve(context.Background(), receipt.ID, false, ""); err != nil {
		t.Fatalf("unresolve failed: %v", err)
	}
	alert, _ = router.Get(context.Background(), receipt.ID)
	if alert.Resolved {
		t.Error("expected alert back to unresolved")
	}
}

func TestDelete_RemovesAlert(t *testing.T) {
	router := newTestRouter(&mockEscalator{})

	receipt, err := router.Submit(context.Background(), validEvent(domain.SeverityLow))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if err := router.Delete(context.Background(), receipt.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := router.Get(context.Background(), receipt.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
