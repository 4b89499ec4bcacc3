package main

import (
	"github.com/spf13/cobra"
)

// buildServeCmd creates the "serve" command that starts the gateway.
// This is the primary command for running notifyd in production.
func buildServeCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the notification gateway",
		Long: `Start the notification gateway on a single listener.

The server will:
1. Load configuration from the specified file (or environment only)
2. Connect to the unread-count database when one is configured
3. Serve /ws upgrades, POST /broadcast, GET /health and GET /metrics
4. Sweep for unresponsive connections on the heartbeat interval

Graceful shutdown is handled on SIGINT/SIGTERM signals.`,
		Example: `  # Environment-only configuration
  notifyd serve

  # Explicit config file with debug logging
  notifyd serve --config /etc/notifyd/production.yaml --debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath, debug)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "",
		"Path to YAML configuration file (default $NOTIFYD_CONFIG, else environment only)")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false,
		"Enable debug logging (verbose output)")

	return cmd
}

// buildTokenCmd creates the "token" command that mints a signed JWT for a
// user, for local testing against a gateway sharing the same secret.
func buildTokenCmd() *cobra.Command {
	var (
		configPath string
		userID     string
		email      string
		name       string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a JWT for a user",
		Example: `  NOTIFYD_JWT_SECRET=dev-secret notifyd token --user u123
  notifyd token --config notifyd.yaml --user u123 --email u123@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(cmd, configPath, userID, email, name)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "",
		"Path to YAML configuration file (default $NOTIFYD_CONFIG, else environment only)")
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID (subject claim)")
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().StringVar(&name, "name", "", "Name claim")
	_ = cmd.MarkFlagRequired("user") //nolint:errcheck

	return cmd
}
