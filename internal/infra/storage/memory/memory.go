package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vietddude/sentinel/internal/core/domain"
	"github.com/vietddude/sentinel/internal/infra/storage"
)

// MemoryStorage backs the alert repository when no external store is
// configured. Process-lifetime only.
type MemoryStorage struct {
	alerts map[string]*domain.Alert
	mu     sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		alerts: make(map[string]*domain.Alert),
	}
}

// -----------------------------------------------------------------------------
// Alert Repository
// -----------------------------------------------------------------------------

type AlertRepo struct {
	store *MemoryStorage
}

func NewAlertRepo(store *MemoryStorage) *AlertRepo {
	return &AlertRepo{store: store}
}

func (r *AlertRepo) Save(ctx context.Context, alert *domain.Alert) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored := *alert
	r.store.alerts[alert.ID] = &stored
	return nil
}

func (r *AlertRepo) Get(ctx context.Context, id string) (*domain.Alert, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	alert, ok := r.store.alerts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *alert
	return &out, nil
}

func (r *AlertRepo) List(ctx context.Context) ([]*domain.Alert, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*domain.Alert, 0, len(r.store.alerts))
	for _, alert := range r.store.alerts {
		a := *alert
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (r *AlertRepo) SetResolved(
	ctx context.Context,
	id string,
	resolved bool,
	resolution string,
) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	alert, ok := r.store.alerts[id]
	if !ok {
		return storage.ErrNotFound
	}
	alert.Resolved = resolved
	alert.Resolution = resolution
	if resolved {
		now := time.Now().UTC()
		alert.ResolvedAt = &now
	} else {
		alert.ResolvedAt = nil
	}
	return nil
}

func (r *AlertRepo) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.alerts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(r.store.alerts, id)
	return nil
}

func (r *AlertRepo) Count(ctx context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.alerts), nil
}
