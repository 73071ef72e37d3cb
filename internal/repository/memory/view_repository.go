// Package memory keeps view instances in process memory. It is the default store.
package memory

import (
	"context"
	"sync"
	"time"

	"javinity/internal/domain"
	"javinity/internal/repository"
)

type viewKey struct {
	sessionID string
	kind      domain.ViewKind
}

type ViewRepository struct {
	mu    sync.RWMutex
	views map[viewKey]domain.ViewRecord
}

func NewViewRepository() repository.ViewRepository {
	return &ViewRepository{views: make(map[viewKey]domain.ViewRecord)}
}

func (r *ViewRepository) Init(ctx context.Context) error {
	return nil
}

func (r *ViewRepository) Save(ctx context.Context, rec *domain.ViewRecord) error {
	stored := *rec
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}
	stored.State = append([]byte(nil), rec.State...)

	r.mu.Lock()
	r.views[viewKey{rec.SessionID, rec.Kind}] = stored
	r.mu.Unlock()

	rec.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *ViewRepository) Get(ctx context.Context, sessionID string, kind domain.ViewKind) (*domain.ViewRecord, error) {
	r.mu.RLock()
	rec, ok := r.views[viewKey{sessionID, kind}]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	rec.State = append([]byte(nil), rec.State...)
	return &rec, nil
}

func (r *ViewRepository) Delete(ctx context.Context, sessionID string, kind domain.ViewKind) error {
	r.mu.Lock()
	delete(r.views, viewKey{sessionID, kind})
	r.mu.Unlock()
	return nil
}

func (r *ViewRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for key, rec := range r.views {
		if rec.UpdatedAt.Before(before) {
			delete(r.views, key)
			n++
		}
	}
	return n, nil
}
