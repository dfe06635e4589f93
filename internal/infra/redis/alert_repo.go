package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/sentinel/internal/core/domain"
	"github.com/vietddude/sentinel/internal/infra/storage"
)

const alertIndexKey = "alerts:index"

func alertKey(id string) string {
	return fmt.Sprintf("alerts:%s", id)
}

// AlertRepo implements storage.AlertRepository on Redis. Alerts are stored
// as JSON values with a sorted-set index scored by timestamp for
// newest-first listing.
type AlertRepo struct {
	client *Client
}

// NewAlertRepo creates a new Redis alert repository.
func NewAlertRepo(client *Client) *AlertRepo {
	return &AlertRepo{client: client}
}

// Save persists a new alert.
func (r *AlertRepo) Save(ctx context.Context, alert *domain.Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	pipe := r.client.rdb.TxPipeline()
	pipe.Set(ctx, alertKey(alert.ID), data, 0)
	pipe.ZAdd(ctx, alertIndexKey, redis.Z{
		Score:  float64(alert.Timestamp.UnixNano()),
		Member: alert.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}

// Get retrieves an alert by id.
func (r *AlertRepo) Get(ctx context.Context, id string) (*domain.Alert, error) {
	data, err := r.client.rdb.Get(ctx, alertKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}

	var alert domain.Alert
	if err := json.Unmarshal(data, &alert); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alert: %w", err)
	}
	return &alert, nil
}

// List retrieves all alerts, newest first.
func (r *AlertRepo) List(ctx context.Context) ([]*domain.Alert, error) {
	ids, err := r.client.rdb.ZRevRange(ctx, alertIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	alerts := make([]*domain.Alert, 0, len(ids))
	for _, id := range ids {
		alert, err := r.Get(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			continue // index entry outlived the value
		}
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
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
	alert, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	alert.Resolved = resolved
	alert.Resolution = resolution
	if resolved {
		now := time.Now().UTC()
		alert.ResolvedAt = &now
	} else {
		alert.ResolvedAt = nil
	}

	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}
	if err := r.client.rdb.Set(ctx, alertKey(id), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to update alert: %w", err)
	}
	return nil
}

// Delete removes an alert by id.
func (r *AlertRepo) Delete(ctx context.Context, id string) error {
	deleted, err := r.client.rdb.Del(ctx, alertKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	if deleted == 0 {
		return storage.ErrNotFound
	}
	if err := r.client.rdb.ZRem(ctx, alertIndexKey, id).Err(); err != nil {
		return fmt.Errorf("failed to remove alert from index: %w", err)
	}
	return nil
}

// Count returns the count of stored alerts.
func (r *AlertRepo) Count(ctx context.Context) (int, error) {
	n, err := r.client.rdb.ZCard(ctx, alertIndexKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return int(n), nil
}
