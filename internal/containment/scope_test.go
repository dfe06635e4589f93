package containment

import (
	"errors"
	"sync"
	"testing"
)

func hasAction(actions []Action, want Action) bool {
	for _, a := range actions {
		if a == want {
			return true
		}
	}
	return false
}

// =============================================================================
// Action sets
// =============================================================================

func TestScope_PageActions(t *testing.T) {
	scope := NewScope(LevelPage)
	actions := scope.Actions()

	for _, want := range []Action{ActionRetry, ActionHome, ActionReload, ActionToggleDetails, ActionSendFeedback} {
		if !hasAction(actions, want) {
			t.Errorf("page scope missing action %s", want)
		}
	}
	if len(actions) != 5 {
		t.Errorf("expected 5 page actions, got %d", len(actions))
	}
}

func TestScope_SectionActions(t *testing.T) {
	scope := NewScope(LevelSection)
	actions := scope.Actions()

	if !hasAction(actions, ActionRetry) || !hasAction(actions, ActionToggleDetails) {
		t.Errorf("section scope missing expected actions: %v", actions)
	}
	if len(actions) != 2 {
		t.Errorf("expected 2 section actions, got %d", len(actions))
	}
}

func TestScope_ComponentActions(t *testing.T) {
	scope := NewScope(LevelComponent)
	actions := scope.Actions()

	if len(actions) != 1 || actions[0] != ActionRetry {
		t.Errorf("component scope must expose only retry, got %v", actions)
	}
}

func TestScope_DisallowedActionsRejected(t *testing.T) {
	scope := NewScope(LevelComponent)
	scope.Capture(errors.New("boom"))

	if err := scope.ToggleDetails(); !errors.Is(err, ErrActionNotAllowed) {
		t.Errorf("component toggle-details: expected ErrActionNotAllowed, got %v", err)
	}
	if _, err := scope.SendFeedback(); !errors.Is(err, ErrActionNotAllowed) {
		t.Errorf("component send-feedback: expected ErrActionNotAllowed, got %v", err)
	}
	if err := scope.Reload(); !errors.Is(err, ErrActionNotAllowed) {
		t.Errorf("component reload: expected ErrActionNotAllowed, got %v", err)
	}
	if err := scope.Home(); !errors.Is(err, ErrActionNotAllowed) {
		t.Errorf("component home: expected ErrActionNotAllowed, got %v", err)
	}
}

// =============================================================================
// Lifecycle
// =============================================================================

func TestScope_CaptureActivates(t *testing.T) {
	var captured Capture
	scope := NewScope(LevelPage,
		WithOrigin("/dashboard/orders"),
		WithNotifier(func(c Capture) { captured = c }),
	)

	if scope.Active() {
		t.Fatal("new scope must be inert")
	}

	boom := errors.New("subtree failed")
	scope.Capture(boom)

	if !scope.Active() {
		t.Fatal("scope must be active after capture")
	}
	err, correlationID := scope.CapturedError()
	if err != boom {
		t.Errorf("expected captured error, got %v", err)
	}
	if correlationID == "" {
		t.Error("expected fresh correlation id")
	}
	if captured.CorrelationID != correlationID {
		t.Error("notifier must receive the same correlation id")
	}
	if captured.Origin != "/dashboard/orders" {
		t.Errorf("notifier must receive ambient origin, got %q", captured.Origin)
	}
	if captured.Level != LevelPage {
		t.Errorf("notifier must receive scope level, got %s", captured.Level)
	}
}

func TestScope_RetryResetsState(t *testing.T) {
	scope := NewScope(LevelSection)
	scope.Capture(errors.New("boom"))
	if err := scope.ToggleDetails(); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	if err := scope.Retry(); err != nil {
		t.Fatalf("retry failed: %v", err)
	}

	if scope.Active() {
		t.Error("scope must be inert after retry")
	}
	if err, id := scope.CapturedError(); err != nil || id != "" {
		t.Error("captured state must be cleared")
	}
	if scope.DetailsVisible() {
		t.Error("details visibility must be cleared")
	}
}

func TestScope_FreshCorrelationIDPerCapture(t *testing.T) {
	scope := NewScope(LevelComponent)

	scope.Capture(errors.New("first"))
	_, first := scope.CapturedError()

	if err := scope.Retry(); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	scope.Capture(errors.New("second"))
	_, second := scope.CapturedError()

	if first == second {
		t.Error("each capture must generate a fresh correlation id")
	}
}

func TestScope_HomeDestroys(t *testing.T) {
	scope := NewScope(LevelPage)
	scope.Capture(errors.New("boom"))

	if err := scope.Home(); err != nil {
		t.Fatalf("home failed: %v", err)
	}
	if !scope.Destroyed() {
		t.Error("scope must be destroyed, not reset")
	}
	if err := scope.Retry(); !errors.Is(err, ErrScopeDestroyed) {
		t.Errorf("destroyed scope must refuse transitions, got %v", err)
	}
}

func TestScope_ToggleRequiresActiveScope(t *testing.T) {
	scope := NewScope(LevelSection)

	if err := scope.ToggleDetails(); err != nil {
		t.Fatalf("inert toggle: unexpected error %v", err)
	}
	if scope.DetailsVisible() {
		t.Error("inert scope has no detail to show")
	}

	scope.Capture(errors.New("boom"))
	if err := scope.ToggleDetails(); err != nil {
		t.Fatalf("active toggle failed: %v", err)
	}
	if !scope.DetailsVisible() {
		t.Error("active scope must flip detail visibility")
	}
}

// =============================================================================
// Feedback idempotence
// =============================================================================

func TestScope_SendFeedbackOnce(t *testing.T) {
	sideEffects := 0
	scope := NewScope(LevelPage, WithFeedback(func(string) { sideEffects++ }))
	scope.Capture(errors.New("boom"))

	fired, err := scope.SendFeedback()
	if err != nil || !fired {
		t.Fatalf("first send: expected fire, got fired=%v err=%v", fired, err)
	}

	fired, err = scope.SendFeedback()
	if err != nil {
		t.Fatalf("second send: unexpected error %v", err)
	}
	if fired {
		t.Error("second send must be a no-op")
	}

	if sideEffects != 1 {
		t.Errorf("expected exactly one feedback side effect, got %d", sideEffects)
	}
	if !scope.FeedbackSent() {
		t.Error("feedbackSent flag must remain set")
	}
}

func TestScope_FeedbackRequiresActiveScope(t *testing.T) {
	scope := NewScope(LevelPage, WithFeedback(func(string) {
		t.Error("feedback must not fire on inert scope")
	}))

	fired, err := scope.SendFeedback()
	if err != nil || fired {
		t.Errorf("inert scope: expected no-op, got fired=%v err=%v", fired, err)
	}
}

// =============================================================================
// Containment guarantees
// =============================================================================

func TestScope_NotifierPanicContained(t *testing.T) {
	scope := NewScope(LevelPage,
		WithNotifier(func(Capture) { panic("notifier exploded") }),
		WithOnError(func(error) { panic("handler exploded") }),
	)

	// Must not propagate to the caller (the parent scope)
	scope.Capture(errors.New("boom"))

	if !scope.Active() {
		t.Error("scope must still capture despite hook panic")
	}
}

func TestScope_RacingCapturesFirstWins(t *testing.T) {
	notifications := 0
	var mu sync.Mutex
	scope := NewScope(LevelSection, WithNotifier(func(Capture) {
		mu.Lock()
		notifications++
		mu.Unlock()
	}))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scope.Capture(errors.New("racing failure"))
		}()
	}
	wg.Wait()

	if !scope.Active() {
		t.Fatal("scope must be active")
	}
	mu.Lock()
	defer mu.Unlock()
	if notifications != 1 {
		t.Errorf("expected exactly one notification, got %d", notifications)
	}
}
