package db

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/diewo77/dealflow/auth"
	"github.com/diewo77/dealflow/internal/config"
	"github.com/diewo77/dealflow/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres database driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate runs AutoMigrate for all models, including the custom join tables.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Deal{}, "ProfitHandlers", &models.DealProfitHandler{}); err != nil {
		return fmt.Errorf("setup deal_profit_handler: %w", err)
	}
	if err := db.SetupJoinTable(&models.Deal{}, "Retailers", &models.RetailerDeal{}); err != nil {
		return fmt.Errorf("setup retailer_deal: %w", err)
	}
	all := append(models.All(), &auth.SessionRecord{})
	for _, m := range all {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// MigrateSQL applies the embedded versioned migrations with golang-migrate.
// Only postgres is supported.
func MigrateSQL(url string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Apply runs the migration strategy selected by MIGRATIONS.
func Apply(conn *gorm.DB, cfg *config.Config) error {
	switch cfg.App.Migrations {
	case "off":
		slog.Info("migrations disabled")
		return nil
	case "sql":
		slog.Info("running sql migrations")
		if err := MigrateSQL(cfg.Database.MigrateURL()); err != nil {
			return fmt.Errorf("sql migrations: %w", err)
		}
	default:
		if err := Migrate(conn); err != nil {
			return err
		}
	}
	for _, table := range []string{"users", "deals", "sessions"} {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}
