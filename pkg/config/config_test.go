package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate, got error: %v", err)
	}

	if cfg.Server.Address != ":3000" {
		t.Errorf("Server.Address = %q, want :3000", cfg.Server.Address)
	}
	if cfg.Realtime.StatsInterval.Std() != 5*time.Second {
		t.Errorf("StatsInterval = %v, want 5s", cfg.Realtime.StatsInterval.Std())
	}
	if cfg.Realtime.ChannelsInterval.Std() != 10*time.Second {
		t.Errorf("ChannelsInterval = %v, want 10s", cfg.Realtime.ChannelsInterval.Std())
	}
	if cfg.Auth.TokenTTL.Std() != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want 24h", cfg.Auth.TokenTTL.Std())
	}
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load("does-not-exist.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Address != ":3000" {
		t.Errorf("Server.Address = %q, want default", cfg.Server.Address)
	}
}

func TestLoad_ParsesDurationsAndOverrides(t *testing.T) {
	yaml := `
server:
  address: ":8080"
  read_timeout: 15s
realtime:
  stats_interval: 2s
  channels_interval: 500ms
auth:
  jwt_secret: "file-secret"
redis:
  enabled: true
  address: "redis.internal:6379"
  connect_backoff: 250ms
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Address != ":8080" {
		t.Errorf("Server.Address = %q, want :8080", cfg.Server.Address)
	}
	if cfg.Server.ReadTimeout.Std() != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want 15s", cfg.Server.ReadTimeout.Std())
	}
	if cfg.Realtime.StatsInterval.Std() != 2*time.Second {
		t.Errorf("StatsInterval = %v, want 2s", cfg.Realtime.StatsInterval.Std())
	}
	if cfg.Realtime.ChannelsInterval.Std() != 500*time.Millisecond {
		t.Errorf("ChannelsInterval = %v, want 500ms", cfg.Realtime.ChannelsInterval.Std())
	}
	if cfg.Redis.ConnectBackoff.Std() != 250*time.Millisecond {
		t.Errorf("ConnectBackoff = %v, want 250ms", cfg.Redis.ConnectBackoff.Std())
	}
	if cfg.Auth.JWTSecret != "file-secret" {
		t.Errorf("JWTSecret = %q", cfg.Auth.JWTSecret)
	}

	// Untouched keys keep their defaults.
	if cfg.Server.WriteTimeout.Std() != 30*time.Second {
		t.Errorf("WriteTimeout = %v, want default 30s", cfg.Server.WriteTimeout.Std())
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  read_timeout: soon\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load() must reject an unparsable duration")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STREAMDASH_SERVER_ADDRESS", ":9000")
	t.Setenv("STREAMDASH_JWT_SECRET", "env-secret")
	t.Setenv("STREAMDASH_LOG_LEVEL", "debug")

	cfg, err := Load("does-not-exist.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Address != ":9000" {
		t.Errorf("Server.Address = %q, want :9000", cfg.Server.Address)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("JWTSecret = %q, want env-secret", cfg.Auth.JWTSecret)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestValidate_InvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name: "empty server address",
			mutate: func(c *Config) {
				c.Server.Address = ""
			},
		},
		{
			name: "stats interval must be > 0",
			mutate: func(c *Config) {
				c.Realtime.StatsInterval = 0
			},
		},
		{
			name: "pong timeout must exceed ping interval",
			mutate: func(c *Config) {
				c.Realtime.PongTimeout = c.Realtime.PingInterval
			},
		},
		{
			name: "send buffer must be > 0",
			mutate: func(c *Config) {
				c.Realtime.SendBuffer = 0
			},
		},
		{
			name: "empty jwt secret",
			mutate: func(c *Config) {
				c.Auth.JWTSecret = ""
			},
		},
		{
			name: "seed admin without password",
			mutate: func(c *Config) {
				c.Auth.SeedAdmin.Enabled = true
				c.Auth.SeedAdmin.Password = ""
			},
		},
		{
			name: "redis enabled without address",
			mutate: func(c *Config) {
				c.Redis.Enabled = true
				c.Redis.Address = ""
			},
		},
		{
			name: "tracing sample rate out of range",
			mutate: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.SampleRate = 1.5
			},
		},
		{
			name: "rate limiting enabled with zero rps",
			mutate: func(c *Config) {
				c.RateLimiting.Enabled = true
				c.RateLimiting.RequestsPerSecond = 0
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestValidate_RateLimitingDisabled_AllowsZeroValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.RequestsPerSecond = 0
	cfg.RateLimiting.Burst = 0
	cfg.RateLimiting.MaxConcurrent = 0

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected config to be valid when rate limiting disabled, got error: %v", err)
	}
}
