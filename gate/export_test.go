package gate

import "time"

// SetClock replaces the cache clock.
func SetClock[U comparable](r *CachedResolver[U], now func() time.Time) { r.now = now }

// CacheLen reports how many entries the cache holds.
func CacheLen[U comparable](r *CachedResolver[U]) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
