package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"javinity/internal/domain"
	"javinity/internal/repository"
)

var (
	// ErrViewNotFound indicates the view id is not the session's live instance of that page.
	ErrViewNotFound = errors.New("view not found")
	// ErrSubmitInProgress is returned when a form is submitted while a previous submission still runs.
	ErrSubmitInProgress = errors.New("submission already in progress")
)

// viewStore serializes view state into the view repository.
type viewStore struct {
	repo repository.ViewRepository
	now  func() time.Time
}

func (s viewStore) load(ctx context.Context, sessionID string, kind domain.ViewKind, viewID string, dst any) error {
	rec, err := s.repo.Get(ctx, sessionID, kind)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrViewNotFound
		}
		return fmt.Errorf("load %s view: %w", kind, err)
	}
	if rec.ViewID != viewID {
		return ErrViewNotFound
	}
	if err := json.Unmarshal(rec.State, dst); err != nil {
		return fmt.Errorf("decode %s view: %w", kind, err)
	}
	return nil
}

func (s viewStore) save(ctx context.Context, sessionID string, kind domain.ViewKind, viewID string, state any) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode %s view: %w", kind, err)
	}
	rec := &domain.ViewRecord{
		SessionID: sessionID,
		Kind:      kind,
		ViewID:    viewID,
		State:     data,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		return fmt.Errorf("save %s view: %w", kind, err)
	}
	return nil
}

func (s viewStore) unmount(ctx context.Context, sessionID string, kind domain.ViewKind, viewID string) error {
	rec, err := s.repo.Get(ctx, sessionID, kind)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrViewNotFound
		}
		return fmt.Errorf("load %s view: %w", kind, err)
	}
	if rec.ViewID != viewID {
		return ErrViewNotFound
	}
	return s.repo.Delete(ctx, sessionID, kind)
}
