package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/diewo77/dealflow/auth"
	"github.com/diewo77/dealflow/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SeedOptions describes the bootstrap administrator.
type SeedOptions struct {
	AdminUsername string
	// AdminPassword may be empty, in which case a random one is generated and logged once.
	AdminPassword string
	BcryptCost    int
}

// Seed creates the administrator account when no user has that username.
// It never touches an existing account. The returned password is non-empty only
// when one was generated.
func Seed(ctx context.Context, conn *gorm.DB, opts SeedOptions) (string, error) {
	username := strings.TrimSpace(opts.AdminUsername)
	if username == "" {
		username = "admin"
	}

	var existing models.User
	err := conn.WithContext(ctx).Where("username = ?", username).First(&existing).Error
	if err == nil {
		return "", nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("lookup admin: %w", err)
	}

	password, generated := opts.AdminPassword, ""
	if password == "" {
		password = strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
		generated = password
	}
	hash, err := auth.HashPassword(password, opts.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.User{Username: username, Password: hash, Role: models.RoleAdmin}
	if err := conn.WithContext(ctx).Where(models.User{Username: username}).FirstOrCreate(&admin).Error; err != nil {
		return "", fmt.Errorf("create admin: %w", err)
	}
	if generated != "" {
		slog.Warn("generated administrator password, change it after first login",
			"username", username, "password", generated)
	} else {
		slog.Info("administrator account created", "username", username)
	}
	return generated, nil
}
