// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"minisite/internal/config"
	"minisite/internal/handler"
	"minisite/internal/middleware"
	"minisite/internal/session"
	"minisite/internal/store"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// Per-scope submission limits. One window per (scope, client IP).
const (
	submitLimit  = 5
	submitWindow = time.Minute
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "minisite - personal website backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISITE_SESSION_SECRET  Session/CSRF key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISITE_DB_PATH         SQLite database path (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISITE_SERVER_HOST     Server host (default: localhost)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISITE_SERVER_PORT     Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISITE_ENV             Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISITE_LOG_LEVEL       Log level: debug|info|warn|error (default: info)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("minisite %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	// Load configuration; startup fails fast on a missing database path
	// or session secret
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Open database, run migrations, seed the admin account
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	if err := store.Seed(context.Background(), db); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	// Sessions, CSRF, rate limiting
	sm := session.New(db, cfg.IsDevelopment())
	csrfGuard := middleware.NewCSRFGuard(sm, []byte(cfg.SessionSecret))
	limiter := middleware.NewLimiter()
	globalLimiter := middleware.NewGlobalRateLimiter(10, 20)

	// Handlers
	reviewsHandler := handler.NewReviewsHandler(db, csrfGuard)
	messagesHandler := handler.NewMessagesHandler(db)
	authHandler := handler.NewAuthHandler(db, sm, csrfGuard)
	adminHandler := handler.NewAdminHandler(db, csrfGuard)
	pagesHandler := handler.NewPagesHandler(db)
	healthHandler := handler.NewHealthHandler(db)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)

	// Liveness probe stays outside the session layer
	r.Get("/healthz", healthHandler.Healthz)

	r.Group(func(r chi.Router) {
		r.Use(sm.LoadAndSave)

		// Public reads
		r.Get("/reviews", reviewsHandler.List)
		r.Get("/pages/{slug}", pagesHandler.Get)
		r.Get("/admin/login", authHandler.LoginForm)

		// Public mutations: CSRF first, then the per-scope window, then
		// the handler validates and persists
		r.Group(func(r chi.Router) {
			r.Use(csrfGuard.Verify)
			r.Use(globalLimiter.Middleware())

			r.With(limiter.Middleware("review", submitLimit, submitWindow)).
				Post("/reviews", reviewsHandler.Create)
			r.With(limiter.Middleware("message", submitLimit, submitWindow)).
				Post("/messages", messagesHandler.Create)
			r.With(limiter.Middleware("login", submitLimit, submitWindow)).
				Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
		})

		// Admin routes: session auth on top of CSRF
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(sm, db))

			r.Get("/admin", adminHandler.Dashboard)

			r.Group(func(r chi.Router) {
				r.Use(csrfGuard.Verify)

				r.Post("/admin/reviews/{id}/status", adminHandler.UpdateReviewStatus)
				r.Post("/admin/messages/{id}/read", adminHandler.MarkMessageRead)
				r.Post("/admin/pages", pagesHandler.Create)
				r.Post("/admin/pages/{slug}", pagesHandler.Update)
			})
		})
	})

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
