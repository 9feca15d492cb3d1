package policy

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/diewo77/dealflow/auth"
	"github.com/diewo77/dealflow/gate"
	"github.com/diewo77/dealflow/httpx"
	"github.com/diewo77/dealflow/internal/store"
)

// AuthGate holds the configured gate with caching.
// Use this as a central authorization point in your application.
type AuthGate struct {
	Gate          *gate.Gate[uint]
	CacheResolver *gate.CachedResolver[uint]
}

// NewAuthGate creates a gate whose user profiles are cached for cacheTTL.
func NewAuthGate(s *store.Store, cacheTTL time.Duration) *AuthGate {
	cached := gate.NewCachedResolver[uint](NewDBProfileResolver(s), cacheTTL)
	return &AuthGate{
		Gate:          gate.New[uint](cached),
		CacheResolver: cached,
	}
}

// Authorize checks if the current user holds resource:action.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resourceType string) error {
	userID, _ := auth.UserIDFromContext(ctx)
	return ag.Gate.Authorize(ctx, userID, action, resourceType)
}

// Can is a convenience method that returns bool instead of error.
func (ag *AuthGate) Can(ctx context.Context, action gate.Action, resourceType string) bool {
	return ag.Authorize(ctx, action, resourceType) == nil
}

// KnownUser reports whether userID still exists, answering from the profile
// cache when it can. It backs session verification.
func (ag *AuthGate) KnownUser(ctx context.Context, userID uint) bool {
	return ag.CacheResolver.Known(ctx, userID)
}

// InvalidateUser clears the cached profile of one user.
func (ag *AuthGate) InvalidateUser(userID uint) {
	ag.CacheResolver.Invalidate(userID)
}

// RequirePermission returns middleware that answers 403 unless the user
// holds resourceType:action.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := ag.Authorize(r.Context(), action, resourceType); err != nil {
				uid, _ := auth.UserIDFromContext(r.Context())
				slog.Info("access denied", "user_id", uid, "permission", string(gate.NewPermission(resourceType, action)), "path", r.URL.Path)
				httpx.Forbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
