package auth

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned by a SessionStore when the id is unknown.
var ErrSessionNotFound = errors.New("session not found")

// Session is a server-side login record.
type Session struct {
	ID        string
	UserID    uint
	CreatedAt time.Time
	LastSeen  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionStore persists sessions. Save is an upsert keyed by ID.
type SessionStore interface {
	Save(ctx context.Context, s Session) error
	Load(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}
