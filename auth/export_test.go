package auth

import (
	"net/http"
	"time"
)

// SessionIDFromCookie exposes the signed cookie payload to external tests.
func SessionIDFromCookie(m *Manager, c *http.Cookie) (string, bool) {
	return verify(m.Secret, c.Value)
}

// SetRedisClock pins the clock the store uses to compute key TTLs.
func SetRedisClock(s *RedisStore, now func() time.Time) {
	s.now = now
}
