// Package containment isolates failures to a bounded region and offers
// recovery actions scoped to that region's blast radius.
package containment

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/vietddude/sentinel/internal/metrics"
)

// Level is the blast radius of a containment scope.
type Level string

const (
	LevelPage      Level = "page"
	LevelSection   Level = "section"
	LevelComponent Level = "component"
)

// Action is a recovery action a scope may expose.
type Action string

const (
	ActionRetry         Action = "retry"
	ActionHome          Action = "home"
	ActionReload        Action = "reload"
	ActionToggleDetails Action = "toggle_details"
	ActionSendFeedback  Action = "send_feedback"
)

// levelActions maps each level to its allowed recovery actions. The blast
// radius determines how much the user may affect: a component-level failure
// must not offer a full-page reload.
var levelActions = map[Level][]Action{
	LevelPage:      {ActionRetry, ActionHome, ActionReload, ActionToggleDetails, ActionSendFeedback},
	LevelSection:   {ActionRetry, ActionToggleDetails},
	LevelComponent: {ActionRetry},
}

var (
	// ErrActionNotAllowed rejects an action outside the scope's level set.
	ErrActionNotAllowed = errors.New("action not allowed for this containment level")
	// ErrScopeDestroyed rejects operations on an abandoned scope.
	ErrScopeDestroyed = errors.New("containment scope destroyed")
)

// Capture carries everything the notifier needs to correlate a user report
// with server-side logs.
type Capture struct {
	Err           error
	Level         Level
	CorrelationID string
	Origin        string
}

// Notifier forwards captured failures to the alerting/telemetry path.
type Notifier func(Capture)

// Scope contains failures from one region of work. Created inert; becomes
// active on the first observed failure and stays active until an explicit
// recovery action. Safe for concurrent use.
type Scope struct {
	mu sync.Mutex

	level  Level
	origin string

	active         bool
	destroyed      bool
	capturedErr    error
	correlationID  string
	detailsVisible bool
	feedbackSent   bool

	notify   Notifier
	onError  func(error)
	feedback func(correlationID string)
}

// Option configures a Scope.
type Option func(*Scope)

// WithNotifier sets the hook invoked when a failure is captured.
func WithNotifier(n Notifier) Option {
	return func(s *Scope) { s.notify = n }
}

// WithOnError sets an optional caller-supplied failure handler.
func WithOnError(fn func(error)) Option {
	return func(s *Scope) { s.onError = fn }
}

// WithFeedback sets the side effect behind the send-feedback action.
func WithFeedback(fn func(correlationID string)) Option {
	return func(s *Scope) { s.feedback = fn }
}

// WithOrigin records ambient context (e.g. the originating URL) forwarded
// with every capture.
func WithOrigin(origin string) Option {
	return func(s *Scope) { s.origin = origin }
}

// NewScope creates an inert scope for the given level.
func NewScope(level Level, opts ...Option) *Scope {
	s := &Scope{level: level}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Level returns the scope's blast radius.
func (s *Scope) Level() Level { return s.level }

// Actions returns the recovery actions this scope's level exposes.
func (s *Scope) Actions() []Action {
	actions := levelActions[s.level]
	out := make([]Action, len(actions))
	copy(out, actions)
	return out
}

func (s *Scope) allows(a Action) bool {
	for _, allowed := range levelActions[s.level] {
		if allowed == a {
			return true
		}
	}
	return false
}

// Capture observes a failure from the scope's subtree. The first failure
// wins: a racing second capture is dropped, by design and not by accident.
// Errors or panics raised by the notification path are swallowed and
// logged; containment failures never propagate to ancestor scopes.
func (s *Scope) Capture(err error) {
	s.mu.Lock()
	if s.destroyed || s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.capturedErr = err
	s.correlationID = uuid.New().String()
	capture := Capture{
		Err:           err,
		Level:         s.level,
		CorrelationID: s.correlationID,
		Origin:        s.origin,
	}
	notify := s.notify
	onError := s.onError
	s.mu.Unlock()

	metrics.ContainmentCapturesTotal.WithLabelValues(string(s.level)).Inc()

	if notify != nil {
		safeInvoke("notifier", func() { notify(capture) })
	}
	if onError != nil {
		safeInvoke("error handler", func() { onError(err) })
	}
}

// Active reports whether the scope currently holds a captured failure.
func (s *Scope) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// CapturedError returns the held failure and its correlation id.
func (s *Scope) CapturedError() (error, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capturedErr, s.correlationID
}

// Retry clears all captured state and returns the scope to inert. The
// caller re-mounts or re-executes the subtree.
func (s *Scope) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return ErrScopeDestroyed
	}
	s.active = false
	s.capturedErr = nil
	s.correlationID = ""
	s.detailsVisible = false
	s.feedbackSent = false
	return nil
}

// ToggleDetails flips detail visibility on an active scope. An inert scope
// holds no failure detail, so the call is a no-op.
func (s *Scope) ToggleDetails() error {
	if !s.allows(ActionToggleDetails) {
		return ErrActionNotAllowed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return ErrScopeDestroyed
	}
	if !s.active {
		return nil
	}
	s.detailsVisible = !s.detailsVisible
	return nil
}

// DetailsVisible reports whether error detail is shown.
func (s *Scope) DetailsVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detailsVisible
}

// SendFeedback fires the feedback side effect exactly once per captured
// failure. Repeated calls after the flag is set are no-ops; the return
// value reports whether the side effect fired.
func (s *Scope) SendFeedback() (bool, error) {
	if !s.allows(ActionSendFeedback) {
		return false, ErrActionNotAllowed
	}
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return false, ErrScopeDestroyed
	}
	if !s.active || s.feedbackSent {
		s.mu.Unlock()
		return false, nil
	}
	s.feedbackSent = true
	correlationID := s.correlationID
	feedback := s.feedback
	s.mu.Unlock()

	if feedback != nil {
		safeInvoke("feedback", func() { feedback(correlationID) })
	}
	return true, nil
}

// FeedbackSent reports whether feedback was already sent.
func (s *Scope) FeedbackSent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feedbackSent
}

// Home abandons the containing region; the scope is destroyed, not reset.
func (s *Scope) Home() error {
	if !s.allows(ActionHome) {
		return ErrActionNotAllowed
	}
	s.destroy()
	return nil
}

// Reload abandons the containing region; the scope is destroyed, not reset.
func (s *Scope) Reload() error {
	if !s.allows(ActionReload) {
		return ErrActionNotAllowed
	}
	s.destroy()
	return nil
}

// Destroy tears the scope down with its owning region.
func (s *Scope) Destroy() { s.destroy() }

// Destroyed reports whether the scope was abandoned.
func (s *Scope) Destroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

func (s *Scope) destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = true
	s.active = false
	s.capturedErr = nil
}

func safeInvoke(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("containment hook panicked", "hook", name, "panic", r)
		}
	}()
	fn()
}
