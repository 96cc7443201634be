package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Auth.EdDSAPrivateKeyPEM = "cHJpdmF0ZQ=="
	cfg.Auth.EdDSAPublicKeyPEM = "cHVibGlj"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 1000, cfg.Chat.RoomBufferSize)
	assert.Equal(t, 100, cfg.Chat.SessionBufferSize)
	assert.Equal(t, int64(600), cfg.Auth.AccessTokenTTLSeconds)
	assert.Equal(t, int64(3600), cfg.Auth.RefreshTokenTTLSeconds)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.RateLimiting.Enabled)

	// Key material has no default; defaults alone must not validate.
	assert.Error(t, cfg.Validate())
}

func TestTTLConversion(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.AccessTokenTTLSeconds = 90

	assert.Equal(t, 90*time.Second, cfg.AccessTokenTTL())
	assert.Equal(t, time.Hour, cfg.RefreshTokenTTL())
	assert.Equal(t, time.Hour, cfg.RefreshRecordTTL())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty server address", func(c *Config) { c.Server.Address = "" }, true},
		{"empty database path", func(c *Config) { c.Database.Path = "" }, true},
		{"empty redis address", func(c *Config) { c.Redis.Address = "" }, true},
		{"missing private key", func(c *Config) { c.Auth.EdDSAPrivateKeyPEM = "" }, true},
		{"missing public key", func(c *Config) { c.Auth.EdDSAPublicKeyPEM = "" }, true},
		{"zero access ttl", func(c *Config) { c.Auth.AccessTokenTTLSeconds = 0 }, true},
		{"zero room buffer", func(c *Config) { c.Chat.RoomBufferSize = 0 }, true},
		{"zero hash workers", func(c *Config) { c.Auth.HashWorkers = 0 }, true},
		{"rate limiting without rps", func(c *Config) {
			c.RateLimiting.Enabled = true
			c.RateLimiting.RequestsPerSecond = 0
		}, true},
		{"tracing without jaeger url", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.JaegerURL = ""
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := `
server:
  address: ":9000"
auth:
  eddsa_private_key_pem: "cHJpdmF0ZQ=="
  eddsa_public_key_pem: "cHVibGlj"
  access_token_ttl_seconds: 120
chat:
  room_buffer_size: 500
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, int64(120), cfg.Auth.AccessTokenTTLSeconds)
	assert.Equal(t, 500, cfg.Chat.RoomBufferSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched fields keep defaults.
	assert.Equal(t, 100, cfg.Chat.SessionBufferSize)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Address)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ROOMCAST_SERVER_ADDRESS", ":7070")
	t.Setenv("ROOMCAST_LOG_LEVEL", "warn")
	t.Setenv("ROOMCAST_ACCESS_TOKEN_TTL_SECONDS", "42")
	t.Setenv("ROOMCAST_REFRESH_RECORD_TTL_SECONDS", "86400")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, int64(42), cfg.Auth.AccessTokenTTLSeconds)
	assert.Equal(t, int64(86400), cfg.Auth.RefreshRecordTTLSeconds)
}
