package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "notifyd.yaml")
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Server.Port != 8081 {
		t.Fatalf("default port = %d, want 8081", cfg.Server.Port)
	}
	if cfg.Gateway.HeartbeatInterval != 30*time.Second {
		t.Fatalf("default heartbeat = %v, want 30s", cfg.Gateway.HeartbeatInterval)
	}
	if cfg.Store.QueryTimeout != 5*time.Second {
		t.Fatalf("default query timeout = %v, want 5s", cfg.Store.QueryTimeout)
	}
	if cfg.Production() {
		t.Fatal("default config should not be production")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
environment: development
server:
  host: 127.0.0.1
  port: 9000
gateway:
  heartbeat_interval: 15s
  send_buffer: 128
store:
  query_timeout: 2s
log:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if cfg.Gateway.HeartbeatInterval != 15*time.Second {
		t.Fatalf("heartbeat = %v, want 15s", cfg.Gateway.HeartbeatInterval)
	}
	if cfg.Gateway.SendBuffer != 128 {
		t.Fatalf("send_buffer = %d, want 128", cfg.Gateway.SendBuffer)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Fatalf("log = %+v", cfg.Log)
	}
	// Unset fields keep their defaults.
	if cfg.Gateway.WriteTimeout != 10*time.Second {
		t.Fatalf("write_timeout = %v, want default 10s", cfg.Gateway.WriteTimeout)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
  extra: true
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadExpandsEnvironmentReferences(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", "expanded-secret")
	path := writeConfig(t, `
auth:
  jwt_secret: ${TEST_JWT_SECRET}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.JWTSecret != "expanded-secret" {
		t.Fatalf("jwt_secret = %q, want expanded-secret", cfg.Auth.JWTSecret)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("NOTIFYD_PORT", "7070")
	t.Setenv("NOTIFYD_HEARTBEAT_INTERVAL", "45s")
	t.Setenv("NOTIFYD_LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Fatalf("port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Gateway.HeartbeatInterval != 45*time.Second {
		t.Fatalf("heartbeat = %v, want 45s", cfg.Gateway.HeartbeatInterval)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("log level = %q, want warn", cfg.Log.Level)
	}
}

func TestLoadRejectsBadEnvValues(t *testing.T) {
	t.Setenv("NOTIFYD_PORT", "not-a-port")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for bad NOTIFYD_PORT")
	}
}

func TestValidateRejectsAnonymousInProduction(t *testing.T) {
	cfg := Default()
	cfg.Environment = "production"
	cfg.Auth.JWTSecret = "secret"
	cfg.Auth.AllowAnonymous = true

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "allow_anonymous") {
		t.Fatalf("expected allow_anonymous error, got %v", err)
	}
}

func TestValidateRequiresCredentialsInProduction(t *testing.T) {
	cfg := Default()
	cfg.Environment = "production"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "jwt_secret") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"huge port", func(c *Config) { c.Server.Port = 70000 }},
		{"zero heartbeat", func(c *Config) { c.Gateway.HeartbeatInterval = 0 }},
		{"zero send buffer", func(c *Config) { c.Gateway.SendBuffer = 0 }},
		{"zero query timeout", func(c *Config) { c.Store.QueryTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestProductionIsCaseInsensitive(t *testing.T) {
	cfg := Default()
	cfg.Environment = " Production "
	if !cfg.Production() {
		t.Fatal("Production() should trim and ignore case")
	}
}
