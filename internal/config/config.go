// Package config loads and validates the notifyd configuration.
package config

import (
	"fmt"
	"strings"
	"time"
)

// EnvProduction is the environment value that disables every development
// convenience, most importantly anonymous connections.
const EnvProduction = "production"

// Config is the root configuration for the notification gateway.
type Config struct {
	// Environment selects the deployment mode: "development" or "production".
	Environment string `yaml:"environment"`

	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Store   StoreConfig   `yaml:"store"`
	Gateway GatewayConfig `yaml:"gateway"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig configures the single HTTP/WebSocket listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// BaseURL is the address upstream callers use to reach the broadcast
	// endpoint. Informational; echoed by the serve command at startup.
	BaseURL string `yaml:"base_url"`
}

// AuthConfig configures token verification for the WebSocket handshake and
// the broadcast API.
type AuthConfig struct {
	JWTSecret   string         `yaml:"jwt_secret"`
	TokenExpiry time.Duration  `yaml:"token_expiry"`
	APIKeys     []APIKeyConfig `yaml:"api_keys"`

	// AllowAnonymous lets clients connect without a token. Refused at load
	// time when Environment is production.
	AllowAnonymous bool `yaml:"allow_anonymous"`

	// ProtectBroadcast requires a valid credential on POST /broadcast.
	// The endpoint is internal, so this defaults to off.
	ProtectBroadcast bool `yaml:"protect_broadcast"`
}

// APIKeyConfig declares a static API key and the identity it maps to.
type APIKeyConfig struct {
	Key    string `yaml:"key"`
	UserID string `yaml:"user_id"`
	Email  string `yaml:"email"`
	Name   string `yaml:"name"`
}

// StoreConfig configures the unread-count source.
type StoreConfig struct {
	// DatabaseURL is a Postgres DSN pointing at the application database
	// that owns the notifications table. Empty selects the in-memory store.
	DatabaseURL string `yaml:"database_url"`

	// QueryTimeout bounds every unread-count query so a hung database
	// stalls at most the one reply that triggered it.
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// GatewayConfig tunes connection handling.
type GatewayConfig struct {
	// HeartbeatInterval is the liveness sweep period. A connection that
	// misses two consecutive sweeps is reaped.
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`

	// WriteTimeout bounds each frame write to a client.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// SendBuffer is the per-connection outbound queue length. A full
	// buffer drops frames for that connection only.
	SendBuffer int `yaml:"send_buffer"`

	// MaxPayloadBytes limits inbound frame size.
	MaxPayloadBytes int64 `yaml:"max_payload_bytes"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// Default returns a configuration with development defaults applied.
func Default() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8081,
		},
		Auth: AuthConfig{
			TokenExpiry: 24 * time.Hour,
		},
		Store: StoreConfig{
			QueryTimeout: 5 * time.Second,
		},
		Gateway: GatewayConfig{
			HeartbeatInterval: 30 * time.Second,
			WriteTimeout:      10 * time.Second,
			SendBuffer:        64,
			MaxPayloadBytes:   1 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Production reports whether the config runs in production mode.
func (c *Config) Production() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), EnvProduction)
}

// Validate checks invariants that must hold before the process starts.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Production() && c.Auth.AllowAnonymous {
		return fmt.Errorf("auth.allow_anonymous must not be set in production")
	}
	if c.Production() && c.Auth.JWTSecret == "" && len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("production requires auth.jwt_secret or auth.api_keys")
	}
	if c.Gateway.HeartbeatInterval <= 0 {
		return fmt.Errorf("gateway.heartbeat_interval must be positive")
	}
	if c.Gateway.SendBuffer <= 0 {
		return fmt.Errorf("gateway.send_buffer must be positive")
	}
	if c.Store.QueryTimeout <= 0 {
		return fmt.Errorf("store.query_timeout must be positive")
	}
	return nil
}
