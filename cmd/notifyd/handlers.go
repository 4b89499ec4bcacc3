package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pulsefeed/notifyd/internal/auth"
	"github.com/pulsefeed/notifyd/internal/config"
	"github.com/pulsefeed/notifyd/internal/gateway"
	"github.com/pulsefeed/notifyd/internal/observability"
	"github.com/pulsefeed/notifyd/internal/store"
	"github.com/pulsefeed/notifyd/pkg/models"
)

// resolveConfigPath falls back to NOTIFYD_CONFIG when no flag was given.
// An empty result is valid and selects environment-only configuration.
func resolveConfigPath(path string) string {
	if path != "" {
		return path
	}
	return os.Getenv("NOTIFYD_CONFIG")
}

// runServe implements the serve command logic. It handles configuration
// loading, collaborator wiring, and graceful shutdown.
func runServe(ctx context.Context, configPath string, debug bool) error {
	configPath = resolveConfigPath(configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if debug {
		cfg.Log.Level = "debug"
	}
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting notifyd",
		"version", version,
		"commit", commit,
		"env", cfg.Environment,
		"config", configPath,
	)
	if cfg.Server.BaseURL != "" {
		logger.Info("broadcast endpoint reachable at", "url", cfg.Server.BaseURL+"/broadcast")
	}

	authService := auth.NewService(cfg.Auth)
	if !authService.Enabled() {
		logger.Warn("no jwt secret or api keys configured, token verification disabled")
	}

	unread, closeStore, err := buildUnreadStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	server := gateway.New(cfg, authService, unread, observability.NewMetrics(), logger)

	// Cancel on shutdown signals.
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(ctx)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	logger.Info("shutdown signal received, initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("notifyd stopped gracefully")
	return nil
}

// buildUnreadStore selects the unread-count source. A configured database
// URL selects Postgres; otherwise an in-memory store serves development and
// tests. A database that cannot be reached at startup is fatal.
func buildUnreadStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.UnreadCounter, func(), error) {
	if cfg.Store.DatabaseURL == "" {
		logger.Info("no database configured, using in-memory unread store")
		return store.NewMemoryUnreadStore(), func() {}, nil
	}

	pg, err := store.NewPostgresUnreadStore(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect unread store: %w", err)
	}
	logger.Info("connected to unread-count database")
	return pg, func() {
		if err := pg.Close(); err != nil {
			logger.Warn("closing unread store", "error", err)
		}
	}, nil
}

// runToken mints a JWT signed with the configured secret and prints it.
func runToken(cmd *cobra.Command, configPath, userID, email, name string) error {
	cfg, err := config.Load(resolveConfigPath(configPath))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret (or NOTIFYD_JWT_SECRET) is required to mint tokens")
	}

	authService := auth.NewService(cfg.Auth)
	token, err := authService.GenerateJWT(&models.User{ID: userID, Email: email, Name: name})
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
