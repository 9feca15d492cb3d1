package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/dealflow/gate"
	"github.com/diewo77/dealflow/internal/store"
)

// DBProfileResolver maps a user id to the profile of the user's role.
type DBProfileResolver struct {
	store *store.Store
}

func NewDBProfileResolver(s *store.Store) *DBProfileResolver {
	return &DBProfileResolver{store: s}
}

// Resolve returns gate.ErrUnknownSubject for missing users. A role outside
// the table resolves to an empty profile that grants nothing.
func (r *DBProfileResolver) Resolve(ctx context.Context, userID uint) (gate.Profile, error) {
	u, err := r.store.Users().FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("user %d: %w", userID, gate.ErrUnknownSubject)
	}
	if err != nil {
		return nil, err
	}
	if p := ProfileFor(u.Role); p != nil {
		return p, nil
	}
	return gate.NewStaticProfile(string(u.Role)), nil
}
