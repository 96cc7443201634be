package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`

	Auth struct {
		// PEM key material, base64-wrapped so it survives env/yaml transport.
		EdDSAPrivateKeyPEM string `yaml:"eddsa_private_key_pem"`
		EdDSAPublicKeyPEM  string `yaml:"eddsa_public_key_pem"`

		AccessTokenTTLSeconds   int64 `yaml:"access_token_ttl_seconds"`
		RefreshTokenTTLSeconds  int64 `yaml:"refresh_token_ttl_seconds"`
		RefreshRecordTTLSeconds int64 `yaml:"refresh_record_ttl_seconds"`

		HashWorkers int `yaml:"hash_workers"`
	} `yaml:"auth"`

	Chat struct {
		RoomBufferSize    int           `yaml:"room_buffer_size"`
		SessionBufferSize int           `yaml:"session_buffer_size"`
		ReadTimeout       time.Duration `yaml:"read_timeout"`
		WriteTimeout      time.Duration `yaml:"write_timeout"`
		PingInterval      time.Duration `yaml:"ping_interval"`
		MaxMessageBytes   int64         `yaml:"max_message_bytes"`
	} `yaml:"chat"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
	} `yaml:"monitoring"`

	Tracing struct {
		Enabled    bool    `yaml:"enabled"`
		JaegerURL  string  `yaml:"jaeger_url"`
		SampleRate float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`

	RateLimiting struct {
		Enabled           bool    `yaml:"enabled"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rate_limiting"`
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.Auth.AccessTokenTTLSeconds) * time.Second
}

func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.Auth.RefreshTokenTTLSeconds) * time.Second
}

func (c *Config) RefreshRecordTTL() time.Duration {
	return time.Duration(c.Auth.RefreshRecordTTLSeconds) * time.Second
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

	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}

	if c.Redis.Address == "" {
		return fmt.Errorf("redis.address must not be empty")
	}
	if c.Redis.PoolSize <= 0 {
		return fmt.Errorf("redis.pool_size must be > 0")
	}

	if c.Auth.EdDSAPrivateKeyPEM == "" {
		return fmt.Errorf("auth.eddsa_private_key_pem must not be empty")
	}
	if c.Auth.EdDSAPublicKeyPEM == "" {
		return fmt.Errorf("auth.eddsa_public_key_pem must not be empty")
	}
	if c.Auth.AccessTokenTTLSeconds <= 0 {
		return fmt.Errorf("auth.access_token_ttl_seconds must be > 0")
	}
	if c.Auth.RefreshTokenTTLSeconds <= 0 {
		return fmt.Errorf("auth.refresh_token_ttl_seconds must be > 0")
	}
	if c.Auth.RefreshRecordTTLSeconds <= 0 {
		return fmt.Errorf("auth.refresh_record_ttl_seconds must be > 0")
	}
	if c.Auth.HashWorkers <= 0 {
		return fmt.Errorf("auth.hash_workers must be > 0")
	}

	if c.Chat.RoomBufferSize <= 0 {
		return fmt.Errorf("chat.room_buffer_size must be > 0")
	}
	if c.Chat.SessionBufferSize <= 0 {
		return fmt.Errorf("chat.session_buffer_size must be > 0")
	}
	if c.Chat.ReadTimeout <= 0 {
		return fmt.Errorf("chat.read_timeout must be > 0")
	}
	if c.Chat.WriteTimeout <= 0 {
		return fmt.Errorf("chat.write_timeout must be > 0")
	}
	if c.Chat.PingInterval <= 0 {
		return fmt.Errorf("chat.ping_interval must be > 0")
	}
	if c.Chat.MaxMessageBytes <= 0 {
		return fmt.Errorf("chat.max_message_bytes must be > 0")
	}

	if c.Tracing.Enabled && c.Tracing.JaegerURL == "" {
		return fmt.Errorf("tracing.jaeger_url must not be empty when tracing is enabled")
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
	}

	return nil
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	// If file does not exist, fall back to defaults
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

// DefaultConfig returns configuration with sane defaults. Key material has no
// default and must always come from file or environment.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second

	cfg.Database.Path = "roomcast.db"

	cfg.Redis.Address = "localhost:6379"
	cfg.Redis.DB = 0
	cfg.Redis.PoolSize = 10

	cfg.Auth.AccessTokenTTLSeconds = 600
	cfg.Auth.RefreshTokenTTLSeconds = 3600
	cfg.Auth.RefreshRecordTTLSeconds = 3600
	cfg.Auth.HashWorkers = 4

	cfg.Chat.RoomBufferSize = 1000
	cfg.Chat.SessionBufferSize = 100
	cfg.Chat.ReadTimeout = 60 * time.Second
	cfg.Chat.WriteTimeout = 10 * time.Second
	cfg.Chat.PingInterval = 30 * time.Second
	cfg.Chat.MaxMessageBytes = 64 * 1024

	cfg.Monitoring.PrometheusEnabled = true

	cfg.Tracing.Enabled = false
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.SampleRate = 1.0

	cfg.Logging.Level = "info"

	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.RequestsPerSecond = 50
	cfg.RateLimiting.Burst = 100

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("ROOMCAST_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if path := os.Getenv("ROOMCAST_DATABASE_PATH"); path != "" {
		c.Database.Path = path
	}
	if addr := os.Getenv("ROOMCAST_REDIS_ADDRESS"); addr != "" {
		c.Redis.Address = addr
	}
	if pw := os.Getenv("ROOMCAST_REDIS_PASSWORD"); pw != "" {
		c.Redis.Password = pw
	}
	if level := os.Getenv("ROOMCAST_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if key := os.Getenv("ROOMCAST_EDDSA_PRIVATE_KEY_PEM"); key != "" {
		c.Auth.EdDSAPrivateKeyPEM = key
	}
	if key := os.Getenv("ROOMCAST_EDDSA_PUBLIC_KEY_PEM"); key != "" {
		c.Auth.EdDSAPublicKeyPEM = key
	}
	if ttl := os.Getenv("ROOMCAST_ACCESS_TOKEN_TTL_SECONDS"); ttl != "" {
		if v, err := strconv.ParseInt(ttl, 10, 64); err == nil {
			c.Auth.AccessTokenTTLSeconds = v
		}
	}
	if ttl := os.Getenv("ROOMCAST_REFRESH_TOKEN_TTL_SECONDS"); ttl != "" {
		if v, err := strconv.ParseInt(ttl, 10, 64); err == nil {
			c.Auth.RefreshTokenTTLSeconds = v
		}
	}
	if ttl := os.Getenv("ROOMCAST_REFRESH_RECORD_TTL_SECONDS"); ttl != "" {
		if v, err := strconv.ParseInt(ttl, 10, 64); err == nil {
			c.Auth.RefreshRecordTTLSeconds = v
		}
	}
}
