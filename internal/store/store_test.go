package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/diewo77/dealflow/internal/db"
	"github.com/diewo77/dealflow/internal/models"
	"github.com/diewo77/dealflow/internal/store"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	conn, err := db.OpenTest(t.Name())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	return store.New(conn)
}

func TestUsers_DuplicateUsername(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Users().Create(ctx, &models.User{Username: "alice", Password: "x", Role: models.RoleManager}))
	err := s.Users().Create(ctx, &models.User{Username: "alice", Password: "y", Role: models.RoleRetailer})
	require.ErrorIs(t, err, store.ErrDuplicateKey)

	users, err := s.Users().List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, models.RoleManager, users[0].Role)
}

func TestUsers_FindByUsernameMissing(t *testing.T) {
	s := newStore(t)
	_, err := s.Users().FindByUsername(context.Background(), "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers_UpdatePassword(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u := models.User{Username: "bob", Password: "old", Role: models.RoleFinancer}
	require.NoError(t, s.Users().Create(ctx, &u))

	require.NoError(t, s.Users().UpdatePassword(ctx, u.ID, "new"))
	got, err := s.Users().FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "new", got.Password)

	require.ErrorIs(t, s.Users().UpdatePassword(ctx, 999, "x"), store.ErrNotFound)
}

func TestFindOrCreateByName_Reuses(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	a1, created, err := s.LegalAdvisors().FindOrCreateByName(ctx, "Dewey & Co")
	require.NoError(t, err)
	require.True(t, created)
	a2, created, err := s.LegalAdvisors().FindOrCreateByName(ctx, "Dewey & Co")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, a1.ID, a2.ID)

	m1, created, err := s.Manufacturers().FindOrCreateByName(ctx, "Acme")
	require.NoError(t, err)
	require.True(t, created)
	m2, _, err := s.Manufacturers().FindOrCreateByName(ctx, "Acme")
	require.NoError(t, err)
	require.Equal(t, m1.ID, m2.ID)

	ms, err := s.Manufacturers().List(ctx)
	require.NoError(t, err)
	require.Len(t, ms, 1)
}

func TestDeals_LinkIdempotent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	m, _, err := s.Manufacturers().FindOrCreateByName(ctx, "Acme")
	require.NoError(t, err)
	d, err := s.Deals().Create(ctx, "open", m.ID)
	require.NoError(t, err)
	ph, err := s.ProfitHandlers().Create(ctx, "PH One")
	require.NoError(t, err)

	linked, err := s.Deals().LinkProfitHandler(ctx, d.ID, ph.ID)
	require.NoError(t, err)
	require.True(t, linked)
	linked, err = s.Deals().LinkProfitHandler(ctx, d.ID, ph.ID)
	require.NoError(t, err)
	require.False(t, linked)

	got, err := s.Deals().FindByID(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, got.ProfitHandlers, 1)
	require.Equal(t, "Acme", got.Manufacturer.Name)
}

func TestDeals_CreateUnknownManufacturer(t *testing.T) {
	s := newStore(t)
	_, err := s.Deals().Create(context.Background(), "open", 4242)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeals_ListByRetailerAndManufacturer(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	acme, _, _ := s.Manufacturers().FindOrCreateByName(ctx, "Acme")
	globex, _, _ := s.Manufacturers().FindOrCreateByName(ctx, "Globex")
	d1, err := s.Deals().Create(ctx, "open", acme.ID)
	require.NoError(t, err)
	d2, err := s.Deals().Create(ctx, "signed", acme.ID)
	require.NoError(t, err)
	_, err = s.Deals().Create(ctx, "draft", globex.ID)
	require.NoError(t, err)

	shop, err := s.Retailers().Create(ctx, "Corner Shop")
	require.NoError(t, err)
	other, err := s.Retailers().Create(ctx, "Mall")
	require.NoError(t, err)
	_, err = s.Deals().LinkRetailer(ctx, d2.ID, shop.ID)
	require.NoError(t, err)
	_, err = s.Deals().LinkRetailer(ctx, d1.ID, other.ID)
	require.NoError(t, err)

	byShop, err := s.Deals().ListByRetailer(ctx, shop.ID)
	require.NoError(t, err)
	require.Len(t, byShop, 1)
	require.Equal(t, d2.ID, byShop[0].ID)

	byAcme, err := s.Deals().ListByManufacturer(ctx, acme.ID)
	require.NoError(t, err)
	require.Len(t, byAcme, 2)

	all, err := s.Deals().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestTransaction_RollsBack(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx *store.Store) error {
		if _, err := tx.Managers().Create(ctx, "Temp"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	ms, err := s.Managers().List(ctx)
	require.NoError(t, err)
	require.Empty(t, ms)
}

func TestAccountants_UnknownProfitHandler(t *testing.T) {
	s := newStore(t)
	_, err := s.Accountants().Create(context.Background(), "Ann", 77)
	require.ErrorIs(t, err, store.ErrNotFound)
}
