package repository

import (
	"context"
	"errors"
	"time"

	"javinity/internal/domain"
)

// ErrNotFound is returned when no view instance is stored for a session and kind.
var ErrNotFound = errors.New("view not found")

// ViewRepository stores the live view instances of visitor sessions.
type ViewRepository interface {
	Init(ctx context.Context) error
	// Save replaces whatever instance of rec.Kind the session already holds.
	Save(ctx context.Context, rec *domain.ViewRecord) error
	Get(ctx context.Context, sessionID string, kind domain.ViewKind) (*domain.ViewRecord, error)
	Delete(ctx context.Context, sessionID string, kind domain.ViewKind) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
