package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DefaultIdleTimeout is how long a session survives without requests.
const DefaultIdleTimeout = 30 * time.Minute

// Manager issues, validates and revokes server-side sessions.
type Manager struct {
	Store       SessionStore
	Secret      []byte
	IdleTimeout time.Duration
	Secure      bool
	// Verify, when set, drops sessions whose user no longer exists.
	Verify UserVerifier
	Now    func() time.Time
}

// NewManager builds a Manager with the default clock.
func NewManager(store SessionStore, secret string, idle time.Duration, secure bool) *Manager {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Manager{
		Store:       store,
		Secret:      []byte(secret),
		IdleTimeout: idle,
		Secure:      secure,
		Now:         time.Now,
	}
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

type expiredPruner interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Create starts a session for userID and sets the session cookie.
func (m *Manager) Create(ctx context.Context, w http.ResponseWriter, userID uint) (Session, error) {
	now := m.now()
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		LastSeen:  now,
		ExpiresAt: now.Add(m.IdleTimeout),
	}
	if err := m.Store.Save(ctx, sess); err != nil {
		return Session{}, err
	}
	if p, ok := m.Store.(expiredPruner); ok {
		if _, err := p.DeleteExpired(ctx, now); err != nil {
			slog.Warn("session prune failed", "err", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sign(m.Secret, sess.ID),
		Path:     "/",
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

// Clear deletes the request's session record, if any, and expires the cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) {
	if id, ok := m.sessionID(r); ok {
		if err := m.Store.Delete(r.Context(), id); err != nil {
			slog.Warn("session delete failed", "err", err)
		}
	}
	m.clearCookie(w)
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return verify(m.Secret, c.Value)
}

// Resolve returns the live session for the request and slides its expiry.
// Expired sessions are deleted. ok is false when the request is anonymous.
func (m *Manager) Resolve(r *http.Request) (sess Session, ok bool, err error) {
	id, found := m.sessionID(r)
	if !found {
		return Session{}, false, nil
	}
	ctx := r.Context()
	sess, err = m.Store.Load(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, err
	}
	now := m.now()
	if sess.Expired(now) {
		return Session{}, false, m.Store.Delete(ctx, id)
	}
	if m.Verify != nil && !m.Verify(ctx, sess.UserID) {
		return Session{}, false, m.Store.Delete(ctx, id)
	}
	sess.LastSeen = now
	sess.ExpiresAt = now.Add(m.IdleTimeout)
	if err := m.Store.Save(ctx, sess); err != nil {
		return Session{}, false, err
	}
	return sess, true, nil
}

// Middleware attaches the user id to the request context when the session is live.
// A stale cookie is cleared so the browser stops sending it.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok, err := m.Resolve(r)
		if err != nil {
			slog.Error("session lookup failed", "err", err)
		}
		if ok {
			ctx := WithUserID(r.Context(), sess.UserID)
			r = r.WithContext(withSessionID(ctx, sess.ID))
		} else if _, had := m.sessionID(r); had {
			m.clearCookie(w)
		}
		next.ServeHTTP(w, r)
	})
}
