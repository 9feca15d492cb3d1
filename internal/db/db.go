package db

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/diewo77/dealflow/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database. Postgres connections are retried
// to give a freshly started container time to accept connections.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	switch cfg.Driver {
	case "sqlite":
		slog.Info("opening database", "driver", "sqlite", "path", cfg.SQLitePath)
		return gorm.Open(sqlite.Open(cfg.SQLiteDSN()), gcfg)
	case "postgres":
		slog.Info("opening database", "driver", "postgres", "host", cfg.Host, "port", cfg.Port, "dbname", cfg.DBName, "user", cfg.User)
		var (
			conn *gorm.DB
			err  error
		)
		for i := 0; i < 10; i++ {
			conn, err = gorm.Open(postgres.Open(cfg.DSN()), gcfg)
			if err == nil {
				break
			}
			slog.Warn("retrying database connection", "attempt", i+1, "err", err)
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			return nil, fmt.Errorf("connect database after retries: %w", err)
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

// OpenTest opens a private in-memory sqlite database named after the test.
func OpenTest(name string) (*gorm.DB, error) {
	dsn := "file:" + name + "?mode=memory&cache=shared&_foreign_keys=1"
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
}
