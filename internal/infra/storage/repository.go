package storage

import (
	"context"
	"errors"

	"github.com/vietddude/sentinel/internal/core/domain"
)

var (
	// ErrNotFound is returned when no alert exists for the given id
	ErrNotFound = errors.New("alert not found")
)

// AlertRepository handles alert storage operations
type AlertRepository interface {
	// Save persists a new alert
	Save(ctx context.Context, alert *domain.Alert) error

	// Get retrieves an alert by id
	Get(ctx context.Context, id string) (*domain.Alert, error)

	// List retrieves all alerts, newest first
	List(ctx context.Context) ([]*domain.Alert, error)

	// SetResolved updates the resolution state of an alert
	SetResolved(ctx context.Context, id string, resolved bool, resolution string) error

	// Delete removes an alert by id
	Delete(ctx context.Context, id string) error

	// Count returns the count of stored alerts
	Count(ctx context.Context) (int, error)
}
