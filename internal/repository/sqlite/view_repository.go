package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"javinity/internal/domain"
	"javinity/internal/repository"
)

const createViewsTable = `
CREATE TABLE IF NOT EXISTS views (
	session_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	view_id TEXT NOT NULL,
	state BLOB NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (session_id, kind)
);
`

const createViewsUpdatedIndex = `CREATE INDEX IF NOT EXISTS idx_views_updated_at ON views(updated_at);`

type ViewRepository struct {
	db *sql.DB
}

func NewViewRepository(db *sql.DB) repository.ViewRepository {
	return &ViewRepository{db: db}
}

func (r *ViewRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createViewsTable); err != nil {
		return fmt.Errorf("create views table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createViewsUpdatedIndex); err != nil {
		return fmt.Errorf("create views index: %w", err)
	}
	return nil
}

func (r *ViewRepository) Save(ctx context.Context, rec *domain.ViewRecord) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	rec.UpdatedAt = rec.UpdatedAt.UTC()

	_, err := r.db.ExecContext(ctx, `
INSERT INTO views (session_id, kind, view_id, state, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(session_id, kind) DO UPDATE SET
	view_id = excluded.view_id,
	state = excluded.state,
	updated_at = excluded.updated_at`,
		rec.SessionID,
		string(rec.Kind),
		rec.ViewID,
		rec.State,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save view: %w", err)
	}
	return nil
}

func (r *ViewRepository) Get(ctx context.Context, sessionID string, kind domain.ViewKind) (*domain.ViewRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT session_id, kind, view_id, state, updated_at
FROM views
WHERE session_id = ? AND kind = ?`,
		sessionID,
		string(kind),
	)
	return scanView(row)
}

func (r *ViewRepository) Delete(ctx context.Context, sessionID string, kind domain.ViewKind) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM views WHERE session_id = ? AND kind = ?`, sessionID, string(kind)); err != nil {
		return fmt.Errorf("delete view: %w", err)
	}
	return nil
}

func (r *ViewRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM views WHERE updated_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired views: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expired views rows affected: %w", err)
	}
	return n, nil
}

func scanView(row interface {
	Scan(dest ...any) error
}) (*domain.ViewRecord, error) {
	var (
		rec  domain.ViewRecord
		kind string
	)
	if err := row.Scan(
		&rec.SessionID,
		&kind,
		&rec.ViewID,
		&rec.State,
		&rec.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan view: %w", err)
	}
	rec.Kind = domain.ViewKind(kind)
	return &rec, nil
}
