// Package retry provides a bounded-retry wrapper with exponential backoff
// around any fallible operation.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/vietddude/sentinel/internal/errs"
	"github.com/vietddude/sentinel/internal/metrics"
)

// Policy defines retry behavior. Attempts are 1-indexed.
type Policy struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
	Multiplier  float64       `yaml:"multiplier"`
}

// DefaultPolicy provides sensible defaults: 1s, 2s, 4s (capped at 30s).
var DefaultPolicy = Policy{
	MaxAttempts: 3,
	BaseDelay:   1 * time.Second,
	MaxDelay:    30 * time.Second,
	Multiplier:  2.0,
}

// Delay returns the wait before the given attempt: BaseDelay *
// Multiplier^(attempt-2), capped at MaxDelay. There is no delay before the
// first attempt. No jitter.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(p.BaseDelay) * math.Pow(mult, float64(attempt-2))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// Retryable reports whether a failure of the given kind is worth another
// attempt. Transient kinds (network, server) are retried; validation, auth,
// permission and storage failures are permanent and fail fast. Unknown is
// retried as the safe default.
func Retryable(kind errs.Kind) bool {
	switch kind {
	case errs.KindNetwork, errs.KindServer, errs.KindUnknown:
		return true
	default:
		return false
	}
}

// Do runs op up to MaxAttempts times with exponential backoff between
// attempts. Context cancellation aborts the backoff wait immediately. On
// exhaustion the final attempt's error is returned; earlier errors are
// discarded.
func Do(ctx context.Context, policy Policy, op func(context.Context) error) error {
	_, err := DoValue(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, policy Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(policy.Delay(attempt)):
			}
		}

		metrics.RetryAttemptsTotal.Inc()
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !Retryable(errs.Classify(err)) {
			return zero, err
		}
	}

	return zero, fmt.Errorf("failed after %d attempts: %w", policy.MaxAttempts, lastErr)
}
