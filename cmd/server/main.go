package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/dealflow/auth"
	"github.com/diewo77/dealflow/internal/config"
	"github.com/diewo77/dealflow/internal/db"
	"github.com/diewo77/dealflow/internal/policy"
	"github.com/diewo77/dealflow/view"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogger(cfg.App.Dev)

	if err := cfg.Validate(); err != nil {
		fatal("invalid configuration", err)
	}
	view.SetDev(cfg.App.Dev)

	dbConn, err := db.Open(cfg.Database)
	if err != nil {
		fatal("failed to connect to database", err)
	}

	if *migrateOnlyFlag {
		if err := db.Apply(dbConn, cfg); err != nil {
			fatal("migration failed", err)
		}
		slog.Info("migrations completed")
		return
	}

	if *seedOnlyFlag {
		if err := seed(dbConn, cfg); err != nil {
			fatal("seeding failed", err)
		}
		slog.Info("seeding completed")
		return
	}

	if err := db.Apply(dbConn, cfg); err != nil {
		fatal("migration failed", err)
	}
	if err := seed(dbConn, cfg); err != nil {
		fatal("seeding failed", err)
	}

	sessionStore, closeStore, err := newSessionStore(dbConn, cfg.Session)
	if err != nil {
		fatal("failed to set up session store", err)
	}
	defer closeStore()

	sessions := auth.NewManager(sessionStore, cfg.Session.Secret, cfg.Session.IdleTimeout, cfg.Session.SecureCookie)
	routerCfg := policy.NewRouterConfig(dbConn, sessions, cfg.App.BcryptCost)
	appHandler := NewApp(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      withRecover(withLogging(appHandler)),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port, "dev", cfg.App.Dev, "session_store", cfg.Session.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("error during shutdown", "err", err)
	}
	slog.Info("server stopped gracefully")
}

func setupLogger(dev bool) {
	var h slog.Handler
	if dev {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		h = slog.NewJSONHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(h))
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}

func seed(conn *gorm.DB, cfg *config.Config) error {
	_, err := db.Seed(context.Background(), conn, db.SeedOptions{
		AdminUsername: cfg.App.AdminUsername,
		AdminPassword: cfg.App.AdminPassword,
		BcryptCost:    cfg.App.BcryptCost,
	})
	return err
}

// newSessionStore returns the configured session backend and its cleanup func.
func newSessionStore(conn *gorm.DB, cfg config.SessionConfig) (auth.SessionStore, func(), error) {
	if cfg.Store != "redis" {
		return auth.NewGormStore(conn), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return auth.NewRedisStore(client), func() { _ = client.Close() }, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging middleware.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}

// withRecover turns a handler panic into a 500.
func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				slog.Error("panic serving request", "method", r.Method, "path", r.URL.Path, "panic", v)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
