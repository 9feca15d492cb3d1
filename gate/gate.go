// Package gate provides a small profile/permission authorization checkpoint.
// A subject is resolved to a Profile, and the profile decides whether it holds
// a "resource:action" Permission. The package has no dependency on domain
// models and is generic over the subject type:
//   - Gate[uint] for user id based checks
//   - Gate[string] for role name based checks
package gate

import "context"

// Gate is the central authorization checkpoint.
// U is the subject type; its zero value means "nobody".
type Gate[U comparable] struct {
	resolver ProfileResolver[U]
}

// New creates a gate backed by the given profile resolver.
func New[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{resolver: resolver}
}

// Authorize returns nil when subject holds resource:action.
// ErrUnauthenticated is returned for the zero subject, ErrForbidden when the
// subject has no profile, the resolver fails, or the permission is missing.
func (g *Gate[U]) Authorize(ctx context.Context, subject U, action Action, resourceType string) error {
	var zero U
	if subject == zero {
		return ErrUnauthenticated
	}
	profile, err := g.resolver.Resolve(ctx, subject)
	if err != nil || profile == nil {
		return ErrForbidden
	}
	if !profile.HasPermission(NewPermission(resourceType, action)) {
		return ErrForbidden
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate[U]) Can(ctx context.Context, subject U, action Action, resourceType string) bool {
	return g.Authorize(ctx, subject, action, resourceType) == nil
}
