// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	App      AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig selects the driver and holds its connection settings.
type DatabaseConfig struct {
	Driver string // "sqlite" or "postgres"
	// URL, when set, overrides the discrete postgres fields.
	URL        string
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
	Debug      bool
}

// SessionConfig holds login session settings.
type SessionConfig struct {
	IdleTimeout  time.Duration
	Secret       string
	SecureCookie bool
	Store        string // "gorm" or "redis"
	RedisAddr    string
	RedisDB      int
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev bool
	// Migrations is "auto" (GORM AutoMigrate), "sql" (versioned files) or "off".
	Migrations    string
	AdminUsername string
	AdminPassword string
	BcryptCost    int
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// MigrateURL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) MigrateURL() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// SQLiteDSN returns the sqlite file DSN with foreign keys enforced.
// Transactions take the write lock at BEGIN so overlapping read-then-write
// transactions queue on the busy timeout instead of failing with SQLITE_BUSY.
func (d DatabaseConfig) SQLiteDSN() string {
	return "file:" + d.SQLitePath + "?_foreign_keys=1&_txlock=immediate&_busy_timeout=5000"
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "sqlite"),
			URL:        getEnv("DATABASE_URL", ""),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvInt("DB_PORT", 5432),
			User:       getEnv("DB_USER", "dealflow"),
			Password:   getEnv("DB_PASSWORD", "dealflow"),
			DBName:     getEnv("DB_NAME", "dealflow"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "dealflow.db"),
			Debug:      getEnvBool("DB_DEBUG", false),
		},
		Session: SessionConfig{
			IdleTimeout:  getEnvDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
			Secret:       getEnv("SESSION_SECRET", "devsessionsecret"),
			SecureCookie: getEnvBool("SESSION_SECURE_COOKIE", false),
			Store:        getEnv("SESSION_STORE", "gorm"),
			RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
			RedisDB:      getEnvInt("REDIS_DB", 0),
		},
		App: AppConfig{
			Dev:           getEnvBool("DEV", true),
			Migrations:    getEnv("MIGRATIONS", "auto"),
			AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
			BcryptCost:    getEnvInt("BCRYPT_COST", 0),
		},
	}
}

// Validate rejects combinations the server cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.App.Migrations {
	case "auto", "off":
	case "sql":
		if c.Database.Driver != "postgres" {
			return fmt.Errorf("MIGRATIONS=sql requires DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported MIGRATIONS %q", c.App.Migrations)
	}
	switch c.Session.Store {
	case "gorm", "redis":
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.Session.Store)
	}
	if c.Session.IdleTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
	}
	if !c.App.Dev && c.Session.Secret == "devsessionsecret" {
		return fmt.Errorf("SESSION_SECRET must be set outside dev mode")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

// getEnvDuration parses values like "30m" or "90s".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
