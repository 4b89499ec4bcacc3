package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file, expands ${VAR} references from the
// environment, applies NOTIFYD_* overrides, and validates the result.
// An empty path skips the file and builds the config from defaults and
// environment alone.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := decodeStrict([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func decodeStrict(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("expected a single YAML document")
	}
	return nil
}

// applyEnv layers NOTIFYD_* environment variables over the file values so
// the service can be configured without a file at all.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("NOTIFYD_ENV"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("NOTIFYD_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("NOTIFYD_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NOTIFYD_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("NOTIFYD_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("NOTIFYD_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("NOTIFYD_ALLOW_ANONYMOUS"); v != "" {
		allow, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("NOTIFYD_ALLOW_ANONYMOUS: %w", err)
		}
		cfg.Auth.AllowAnonymous = allow
	}
	if v := os.Getenv("NOTIFYD_DATABASE_URL"); v != "" {
		cfg.Store.DatabaseURL = v
	}
	if v := os.Getenv("NOTIFYD_HEARTBEAT_INTERVAL"); v != "" {
		interval, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("NOTIFYD_HEARTBEAT_INTERVAL: %w", err)
		}
		cfg.Gateway.HeartbeatInterval = interval
	}
	if v := os.Getenv("NOTIFYD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("NOTIFYD_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	return nil
}
