package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ajei/internal/config"
	"ajei/internal/database"
	"ajei/internal/i18n"
	"ajei/internal/services"
	"ajei/internal/session"
	"ajei/internal/util"
	"ajei/internal/web"
)

const (
	shutdownTimeout = 30 * time.Second
	readTimeout     = 15 * time.Second
	writeTimeout    = 15 * time.Second
	idleTimeout     = 60 * time.Second
)

const defaultSecretKey = "your-secret-key-change-in-production"

func main() {
	if err := run(); err != nil {
		slog.Error("api exited with error", "component", "api", "error", err)
		os.Exit(1)
	}
}

// run wires the server and blocks until shutdown. Every resource opened here
// is released by a deferred call before it returns.
func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := util.InitLogger(cfg.App.LogLevel).With("component", "api")

	// Validate critical configuration
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	logger.Info("starting", "name", cfg.App.Name, "version", cfg.App.Version,
		"debug", cfg.App.Debug, "host", cfg.App.Host, "port", cfg.App.Port)

	// Initialize database
	if err := database.Init(); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	db := database.GetDB()
	defer func() {
		logger.Info("closing database connections")
		if err := database.Close(db); err != nil {
			logger.Error("error closing database", "error", err)
		}
	}()

	loc, err := cfg.Site.Location()
	if err != nil {
		return fmt.Errorf("invalid time zone: %w", err)
	}

	bundle, err := i18n.LoadDir(cfg.Site.LocaleDir, cfg.Site.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	store, closeStore, err := sessionStore(cfg)
	if err != nil {
		return fmt.Errorf("connect session store: %w", err)
	}
	defer closeStore()
	secure := strings.HasPrefix(cfg.App.BaseURL, "https://")
	sessions := session.NewManager(store, cfg.Session.CookieName, cfg.Session.TTL, secure)

	// Create service instances
	emailSvc := services.NewEmailService(&cfg.Email)
	notifier, err := services.NewSubmissionNotifier(emailSvc, cfg.Email.NotifyEmail, cfg.App.BaseURL)
	if err != nil {
		return fmt.Errorf("build notifier: %w", err)
	}
	intake := services.NewIntakeService(db, notifier)
	recorder := services.NewAsyncViewRecorder(services.NewGormViewLog(db), cfg.Tracking.QueueSize, cfg.Tracking.Workers)

	server := web.NewServer(web.Deps{
		Config:    cfg,
		Bundle:    bundle,
		Sessions:  sessions,
		Intake:    intake,
		Contacts:  services.NewContactService(db),
		Dashboard: services.NewDashboardService(db, loc),
		Settings:  services.NewSettingsService(db, cfg.Site.ContactFormEnabled),
		Auth:      services.NewAuthService(db, &cfg.Auth),
		Health:    services.NewHealthService(db, cfg.App.Name, cfg.App.Version),
		Tracker:   services.NewPageViewTracker(recorder),
		Location:  loc,
	})

	// Create HTTP server with timeouts
	addr := fmt.Sprintf("%s:%s", cfg.App.Host, cfg.App.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.Routes(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case runErr = <-serverErrors:
		logger.Error("server failed", "error", runErr)
	case sig := <-shutdown:
		logger.Info("starting graceful shutdown", "signal", sig.String())
	}

	// Graceful shutdown: stop taking requests, then drain background work
	// before the deferred store and database closes run.
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("error during graceful shutdown", "error", err)
		if errors.Is(err, context.DeadlineExceeded) {
			_ = httpServer.Close()
		}
	}
	if err := intake.Drain(ctx); err != nil {
		logger.Warn("lead notifications not drained", "error", err)
	}
	if err := recorder.Close(ctx); err != nil {
		logger.Warn("page view queue not drained", "error", err)
	}

	logger.Info("server shutdown complete")
	return runErr
}

// validateConfig validates critical configuration values
func validateConfig(cfg *config.Config) error {
	if cfg.App.Debug {
		return nil
	}
	if cfg.Auth.SecretKey == "" || cfg.Auth.SecretKey == defaultSecretKey {
		return fmt.Errorf("SECRET_KEY must be set and changed from default value")
	}
	if len(cfg.Auth.SecretKey) < 32 {
		return fmt.Errorf("SECRET_KEY must be at least 32 characters for security")
	}
	return nil
}

// sessionStore uses Redis when REDIS_URL is set and process memory otherwise.
func sessionStore(cfg *config.Config) (session.Store, func(), error) {
	if cfg.Session.RedisURL == "" {
		return session.NewMemoryStore(), func() {}, nil
	}
	store, err := session.NewRedisStore(cfg.Session.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}
