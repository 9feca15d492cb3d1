package gate

import (
	"context"
	"errors"
	"sync"
	"time"
)

// CachedResolver wraps a ProfileResolver with TTL-based caching so that
// authorization checks and session verification share one lookup per subject
// per TTL window. Errors are never cached.
type CachedResolver[U comparable] struct {
	inner ProfileResolver[U]
	ttl   time.Duration
	now   func() time.Time

	mu        sync.RWMutex
	entries   map[U]cacheEntry
	nextSweep time.Time
}

type cacheEntry struct {
	profile   Profile
	expiresAt time.Time
}

// NewCachedResolver wraps inner; resolved profiles are reused for ttl.
func NewCachedResolver[U comparable](inner ProfileResolver[U], ttl time.Duration) *CachedResolver[U] {
	return &CachedResolver[U]{
		inner:   inner,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[U]cacheEntry),
	}
}

// Resolve returns the cached profile of subject, asking inner on a miss.
func (r *CachedResolver[U]) Resolve(ctx context.Context, subject U) (Profile, error) {
	now := r.now()
	r.mu.RLock()
	e, ok := r.entries[subject]
	r.mu.RUnlock()
	if ok && now.Before(e.expiresAt) {
		return e.profile, nil
	}

	p, err := r.inner.Resolve(ctx, subject)
	if err != nil {
		return nil, err
	}
	r.store(subject, p, now)
	return p, nil
}

// Known reports whether subject still exists. Only ErrUnknownSubject counts
// as absence; other resolver failures leave the subject in place so a
// transient outage does not end sessions.
func (r *CachedResolver[U]) Known(ctx context.Context, subject U) bool {
	_, err := r.Resolve(ctx, subject)
	return !errors.Is(err, ErrUnknownSubject)
}

// store records p and drops expired entries at most once per TTL.
func (r *CachedResolver[U]) store(subject U, p Profile, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !now.Before(r.nextSweep) {
		for k, e := range r.entries {
			if !now.Before(e.expiresAt) {
				delete(r.entries, k)
			}
		}
		r.nextSweep = now.Add(r.ttl)
	}
	r.entries[subject] = cacheEntry{profile: p, expiresAt: now.Add(r.ttl)}
}

// Invalidate removes a subject from the cache.
func (r *CachedResolver[U]) Invalidate(subject U) {
	r.mu.Lock()
	delete(r.entries, subject)
	r.mu.Unlock()
}

// InvalidateAll clears the entire cache.
func (r *CachedResolver[U]) InvalidateAll() {
	r.mu.Lock()
	r.entries = make(map[U]cacheEntry)
	r.mu.Unlock()
}
