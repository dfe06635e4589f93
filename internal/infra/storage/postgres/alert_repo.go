package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vietddude/sentinel/internal/core/domain"
	"github.com/vietddude/sentinel/internal/infra/storage"
)

// AlertRepo implements storage.AlertRepository using PostgreSQL.
type AlertRepo struct {
	db *DB
}

// NewAlertRepo creates a new PostgreSQL alert repository.
func NewAlertRepo(db *DB) *AlertRepo {
	return &AlertRepo{db: db}
}

// Save persists a new alert.
func (r *AlertRepo) Save(ctx context.Context, alert *domain.Alert) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO alerts (id, type, severity, title, description, timestamp, resolved, resolution, resolved_at)
		VALUES (:id, :type, :severity, :title, :description, :timestamp, :resolved, :resolution, :resolved_at)`,
		alert,
	)
	if err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}

// Get retrieves an alert by id.
func (r *AlertRepo) Get(ctx context.Context, id string) (*domain.Alert, error) {
	var alert domain.Alert
	err := r.db.GetContext(ctx, &alert, `SELECT * FROM alerts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return &alert, nil
}

// List retrieves all alerts, newest first.
func (r *AlertRepo) List(ctx context.Context) ([]*domain.Alert, error) {
	var alerts []*domain.Alert
	err := r.db.SelectContext(ctx, &alerts, `SELECT * FROM alerts ORDER BY timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

// SetResolved updates the resolution state of an alert.
func (r *AlertRepo) SetResolved(
	ctx context.Context,
	id string,
	resolved bool,
	resolution string,
) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE alerts
		SET resolved = $2,
		    resolution = $3,
		    resolved_at = CASE WHEN $2 THEN now() ELSE NULL END
		WHERE id = $1`,
		id, resolved, resolution,
	)
	if err != nil {
		return fmt.Errorf("failed to update alert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update alert: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Delete removes an alert by id.
func (r *AlertRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Count returns the count of stored alerts.
func (r *AlertRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT count(*) FROM alerts`); err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return count, nil
}
