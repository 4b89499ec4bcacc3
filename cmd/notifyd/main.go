// Package main provides the CLI entry point for notifyd, the real-time
// notification delivery gateway.
//
// notifyd accepts WebSocket connections from browser and mobile clients,
// tracks which connections belong to which user, and fans notifications
// out over an internal HTTP broadcast endpoint.
//
// # Basic Usage
//
// Start the server:
//
//	notifyd serve --config notifyd.yaml
//
// Mint a development token:
//
//	notifyd token --user u123
//
// # Environment Variables
//
// Configuration can be provided via environment variables:
//
//   - NOTIFYD_ENV: Deployment environment ("development" or "production")
//   - NOTIFYD_HOST / NOTIFYD_PORT: Listener address
//   - NOTIFYD_JWT_SECRET: HMAC secret for token verification
//   - NOTIFYD_DATABASE_URL: Postgres DSN for the unread-count source
//   - NOTIFYD_LOG_LEVEL / NOTIFYD_LOG_FORMAT: Logging controls
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pulsefeed/notifyd/internal/config"
)

// Build information - populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := buildRootCmd().Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
// Separated from main() to facilitate testing.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "notifyd",
		Short: "notifyd - Real-time notification delivery gateway",
		Long: `notifyd delivers notifications to connected clients over WebSocket.

Clients connect to /ws, register a user identity, and receive
notification frames pushed by the internal POST /broadcast endpoint.
Health and Prometheus metrics are served from the same port.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		buildServeCmd(),
		buildTokenCmd(),
	)

	return rootCmd
}

// newLogger builds the process logger from the log section of the config.
func newLogger(cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(cfg.Level)) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
