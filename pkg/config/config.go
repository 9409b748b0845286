package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Duration parses yaml scalars like "30s" or "500ms" into a time.Duration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := unmarshal(&n); err != nil {
		return err
	}
	*d = Duration(n)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	Server struct {
		Address         string   `yaml:"address"`
		APIPrefix       string   `yaml:"api_prefix"`
		ReadTimeout     Duration `yaml:"read_timeout"`
		WriteTimeout    Duration `yaml:"write_timeout"`
		ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Realtime struct {
		// RequireAuth demands a valid bearer token (?token=) before accepting
		// a websocket connection. Off by default: the dashboard is public.
		RequireAuth      bool     `yaml:"require_auth"`
		StatsInterval    Duration `yaml:"stats_interval"`
		ChannelsInterval Duration `yaml:"channels_interval"`
		PingInterval     Duration `yaml:"ping_interval"`
		PongTimeout      Duration `yaml:"pong_timeout"`
		WriteTimeout     Duration `yaml:"write_timeout"`
		SendBuffer       int      `yaml:"send_buffer"`
	} `yaml:"realtime"`

	Auth struct {
		JWTSecret string   `yaml:"jwt_secret"`
		TokenTTL  Duration `yaml:"token_ttl"`
		// ProtectChannels gates channel mutations behind an admin token.
		// Off by default to match the observed surface.
		ProtectChannels bool `yaml:"protect_channels"`
		SeedAdmin       struct {
			Enabled  bool   `yaml:"enabled"`
			Username string `yaml:"username"`
			Email    string `yaml:"email"`
			Password string `yaml:"password"`
		} `yaml:"seed_admin"`
	} `yaml:"auth"`

	Redis struct {
		Enabled         bool     `yaml:"enabled"`
		Address         string   `yaml:"address"`
		Password        string   `yaml:"password"`
		DB              int      `yaml:"db"`
		PoolSize        int      `yaml:"pool_size"`
		ConnectAttempts int      `yaml:"connect_attempts"`
		ConnectBackoff  Duration `yaml:"connect_backoff"`
	} `yaml:"redis"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
	} `yaml:"monitoring"`

	Tracing struct {
		Enabled     bool    `yaml:"enabled"`
		ServiceName string  `yaml:"service_name"`
		JaegerURL   string  `yaml:"jaeger_url"`
		Environment string  `yaml:"environment"`
		SampleRate  float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	RateLimiting struct {
		Enabled           bool    `yaml:"enabled"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
		MaxConcurrent     int     `yaml:"max_concurrent"`
	} `yaml:"rate_limiting"`

	Analytics struct {
		OverviewCacheTTL Duration `yaml:"overview_cache_ttl"`
	} `yaml:"analytics"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	if c.Realtime.StatsInterval <= 0 {
		return fmt.Errorf("realtime.stats_interval must be > 0")
	}
	if c.Realtime.ChannelsInterval <= 0 {
		return fmt.Errorf("realtime.channels_interval must be > 0")
	}
	if c.Realtime.PingInterval <= 0 {
		return fmt.Errorf("realtime.ping_interval must be > 0")
	}
	if c.Realtime.PongTimeout <= c.Realtime.PingInterval {
		return fmt.Errorf("realtime.pong_timeout must be > realtime.ping_interval")
	}
	if c.Realtime.SendBuffer <= 0 {
		return fmt.Errorf("realtime.send_buffer must be > 0")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be > 0")
	}
	if c.Auth.SeedAdmin.Enabled {
		if c.Auth.SeedAdmin.Username == "" || c.Auth.SeedAdmin.Email == "" || c.Auth.SeedAdmin.Password == "" {
			return fmt.Errorf("auth.seed_admin requires username, email and password when enabled")
		}
	}

	if c.Redis.Enabled {
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address must not be empty when redis.enabled=true")
		}
		if c.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis.pool_size must be > 0 when redis.enabled=true")
		}
		if c.Redis.ConnectAttempts < 0 {
			return fmt.Errorf("redis.connect_attempts must be >= 0")
		}
	}

	if c.Tracing.Enabled {
		if c.Tracing.JaegerURL == "" {
			return fmt.Errorf("tracing.jaeger_url must not be empty when tracing.enabled=true")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be within [0, 1]")
		}
	}

	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	if c.RateLimiting.Enabled {
		if c.RateLimiting.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.Burst <= 0 {
			return fmt.Errorf("rate_limiting.burst must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.MaxConcurrent < 0 {
			return fmt.Errorf("rate_limiting.max_concurrent must be >= 0")
		}
	}

	if c.Analytics.OverviewCacheTTL < 0 {
		return fmt.Errorf("analytics.overview_cache_ttl must be >= 0")
	}

	return nil
}

// Load reads configuration from a YAML file, applies defaults and env
// overrides. A missing file falls back to defaults.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":3000"
	cfg.Server.APIPrefix = "/api"
	cfg.Server.ReadTimeout = Duration(30 * time.Second)
	cfg.Server.WriteTimeout = Duration(30 * time.Second)
	cfg.Server.ShutdownTimeout = Duration(30 * time.Second)

	cfg.Realtime.RequireAuth = false
	cfg.Realtime.StatsInterval = Duration(5 * time.Second)
	cfg.Realtime.ChannelsInterval = Duration(10 * time.Second)
	cfg.Realtime.PingInterval = Duration(30 * time.Second)
	cfg.Realtime.PongTimeout = Duration(60 * time.Second)
	cfg.Realtime.WriteTimeout = Duration(10 * time.Second)
	cfg.Realtime.SendBuffer = 32

	cfg.Auth.JWTSecret = "change-me-in-production"
	cfg.Auth.TokenTTL = Duration(24 * time.Hour)
	cfg.Auth.ProtectChannels = false
	cfg.Auth.SeedAdmin.Enabled = true
	cfg.Auth.SeedAdmin.Username = "admin"
	cfg.Auth.SeedAdmin.Email = "admin@streamdash.local"
	cfg.Auth.SeedAdmin.Password = "admin123"

	cfg.Redis.Enabled = false
	cfg.Redis.Address = "localhost:6379"
	cfg.Redis.DB = 0
	cfg.Redis.PoolSize = 10
	cfg.Redis.ConnectAttempts = 3
	cfg.Redis.ConnectBackoff = Duration(500 * time.Millisecond)

	cfg.Monitoring.PrometheusEnabled = true

	cfg.Tracing.Enabled = false
	cfg.Tracing.ServiceName = "streamdash"
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.Environment = "development"
	cfg.Tracing.SampleRate = 1.0

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.RequestsPerSecond = 50
	cfg.RateLimiting.Burst = 100
	cfg.RateLimiting.MaxConcurrent = 0

	cfg.Analytics.OverviewCacheTTL = Duration(30 * time.Second)

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("STREAMDASH_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if level := os.Getenv("STREAMDASH_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if secret := os.Getenv("STREAMDASH_JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if addr := os.Getenv("STREAMDASH_REDIS_ADDRESS"); addr != "" {
		c.Redis.Address = addr
	}
}
