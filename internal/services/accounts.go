package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/dealflow/auth"
	"github.com/diewo77/dealflow/internal/models"
	"github.com/diewo77/dealflow/internal/store"
	"github.com/diewo77/dealflow/validation"
)

// MinPasswordLength applies to password changes.
const MinPasswordLength = 8

// Identity is the authenticated view of a user passed between layers.
type Identity struct {
	UserID         uint        `json:"user_id"`
	Username       string      `json:"username"`
	Role           models.Role `json:"role"`
	ManagerID      *uint       `json:"manager_id,omitempty"`
	ManufacturerID *uint       `json:"manufacturer_id,omitempty"`
	RetailerID     *uint       `json:"retailer_id,omitempty"`
}

func identityOf(u models.User) Identity {
	return Identity{
		UserID:         u.ID,
		Username:       u.Username,
		Role:           u.Role,
		ManagerID:      u.ManagerID,
		ManufacturerID: u.ManufacturerID,
		RetailerID:     u.RetailerID,
	}
}

type NewUser struct {
	Username       string
	Password       string
	Role           models.Role
	ManagerID      *uint
	ManufacturerID *uint
	RetailerID     *uint
}

type AccountService struct {
	store     *store.Store
	cost      int
	dummyHash string
}

// NewAccountService builds the service; cost is the bcrypt cost (0 for default).
func NewAccountService(s *store.Store, cost int) *AccountService {
	// A real hash to compare against when the username is unknown, so both
	// failure paths spend the same bcrypt time.
	dummy, err := auth.HashPassword("dealflow-timing-equalizer", cost)
	if err != nil {
		panic(fmt.Sprintf("bcrypt dummy hash: %v", err))
	}
	return &AccountService{store: s, cost: cost, dummyHash: dummy}
}

// Authenticate verifies username and password. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (Identity, error) {
	u, err := s.store.Users().FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		auth.CheckPassword(s.dummyHash, password)
		return Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return Identity{}, fmt.Errorf("lookup user: %w", err)
	}
	if !auth.CheckPassword(u.Password, password) {
		return Identity{}, ErrInvalidCredentials
	}
	return identityOf(u), nil
}

// Identity loads the current identity for a session's user id.
func (s *AccountService) Identity(ctx context.Context, userID uint) (Identity, error) {
	u, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return Identity{}, err
	}
	return identityOf(u), nil
}

// CreateUser provisions an account. Only administrators may call it.
// Roles outside the known set are stored as given and grant nothing.
func (s *AccountService) CreateUser(ctx context.Context, in NewUser, requester Identity) (models.User, error) {
	if requester.Role != models.RoleAdmin {
		return models.User{}, ErrPermissionDenied
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Role = models.Role(strings.TrimSpace(string(in.Role)))
	v := validation.Violations{}
	validation.Required("username", in.Username, v)
	validation.Required("password", in.Password, v)
	validation.Required("role", string(in.Role), v)
	if err := invalid(v); err != nil {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(in.Password, s.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := models.User{
		Username:       in.Username,
		Password:       hash,
		Role:           in.Role,
		ManagerID:      in.ManagerID,
		ManufacturerID: in.ManufacturerID,
		RetailerID:     in.RetailerID,
	}
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		if in.ManagerID != nil {
			if _, err := tx.Managers().FindByID(ctx, *in.ManagerID); err != nil {
				return fmt.Errorf("manager %d: %w", *in.ManagerID, err)
			}
		}
		if in.ManufacturerID != nil {
			if _, err := tx.Manufacturers().FindByID(ctx, *in.ManufacturerID); err != nil {
				return fmt.Errorf("manufacturer %d: %w", *in.ManufacturerID, err)
			}
		}
		if in.RetailerID != nil {
			if _, err := tx.Retailers().FindByID(ctx, *in.RetailerID); err != nil {
				return fmt.Errorf("retailer %d: %w", *in.RetailerID, err)
			}
		}
		return tx.Users().Create(ctx, &u)
	})
	if errors.Is(err, store.ErrDuplicateKey) {
		return models.User{}, ErrDuplicateUsername
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// ChangePassword replaces the caller's own password after verifying the current one.
func (s *AccountService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	v := validation.Violations{}
	validation.Required("current_password", current, v)
	validation.MinLength("new_password", next, MinPasswordLength, v)
	if err := invalid(v); err != nil {
		return err
	}
	u, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.Password, current) {
		return ErrInvalidCredentials
	}
	hash, err := auth.HashPassword(next, s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.Users().UpdatePassword(ctx, userID, hash)
}

func (s *AccountService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.Users().List(ctx)
}
