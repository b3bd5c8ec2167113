// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Torii authentication server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables (.env in development).
//  3. Connect to PostgreSQL (pgxpool) pinned to the configured schema.
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Parse the four RSA signing key pairs.
//  7. Wire stores, token engine, services, and HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/taibuivan/torii/internal/admin"
	"github.com/taibuivan/torii/internal/api"
	"github.com/taibuivan/torii/internal/auth"
	"github.com/taibuivan/torii/internal/platform/config"
	"github.com/taibuivan/torii/internal/platform/constants"
	"github.com/taibuivan/torii/internal/platform/geo"
	"github.com/taibuivan/torii/internal/platform/mailer"
	"github.com/taibuivan/torii/internal/platform/migration"
	pgstore "github.com/taibuivan/torii/internal/platform/postgres"
	redisstore "github.com/taibuivan/torii/internal/platform/redis"
	"github.com/taibuivan/torii/internal/platform/state"
	"github.com/taibuivan/torii/internal/token"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Torii] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	// Development convenience only; a missing .env is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	must(log, err, "load configuration")

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, cfg.DatabaseSchema, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Signing Keys ───────────────────────────────────────────────────
	keys, err := token.LoadKeys(cfg)
	must(log, err, "parse signing keys")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	sharedState := state.New(pool, rdb, cfg)

	var locator geo.Locator = geo.NullLocator{}
	if cfg.IPInfoAPIKey != "" {
		locator = geo.NewIPInfoLocator(cfg.IPInfoAPIKey)
	}

	var mail mailer.Mailer = mailer.NullMailer{}
	if cfg.PostmarkServerToken != "" {
		mail = mailer.NewPostmarkMailer(cfg.PostmarkServerToken, cfg.EmailFrom)
	}

	userStore := auth.NewUserStore(pool)
	sessionStore := auth.NewSessionStore(pool, locator, cfg.RefreshTokenExpiration)
	engine := token.NewEngine(sharedState, keys, sessionStore)

	authService := auth.NewService(userStore, sessionStore, engine, sharedState, mail, log)
	authHandler := auth.NewHandler(authService)

	adminStore := admin.NewStore(pool)
	adminService := admin.NewService(adminStore, sharedState, mail)
	adminHandler := admin.NewHandler(adminService)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Admin:     adminHandler,
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
