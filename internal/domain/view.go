package domain

import "time"

// ViewKind names the page a stored view instance belongs to.
type ViewKind string

const (
	ViewKindBlog ViewKind = "blog"
	ViewKindAuth ViewKind = "auth"
)

// ViewRecord is a serialized view instance owned by one visitor session.
// A session holds at most one live instance per kind.
type ViewRecord struct {
	SessionID string
	Kind      ViewKind
	ViewID    string
	State     []byte
	UpdatedAt time.Time
}
