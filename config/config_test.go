package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
jwt:
  secret: from-file
delivery:
  workers: 3
push:
  timeout: 2s
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("APP_JWT_SECRET", "from-env")
	t.Setenv("APP_DELIVERY_QUEUE_SIZE", "42")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 3, cfg.Delivery.Workers)
	assert.Equal(t, 42, cfg.Delivery.QueueSize)
	assert.Equal(t, 2*time.Second, cfg.Push.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Delivery.StoreTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, ":9090", cfg.Server.Addr())
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, "server:\n  port: 8080\n"))
	_, err := Load()
	assert.ErrorContains(t, err, "jwt.secret is required")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			JWT:      JWTConfig{Secret: "s"},
			Database: DatabaseConfig{Driver: "postgres"},
			Cache:    CacheConfig{Driver: "memory"},
		}
	}
	cases := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"ok", func(*Config) {}, ""},
		{"bad driver", func(c *Config) { c.Database.Driver = "oracle" }, "unsupported database driver"},
		{"redis cache without redis", func(c *Config) { c.Cache.Driver = "redis" }, "requires redis.enabled"},
		{"push without keys", func(c *Config) { c.Push.Enabled = true }, "requires vapid keys"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.errMsg)
		})
	}
}
