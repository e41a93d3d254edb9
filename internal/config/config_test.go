package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// ============================================
// Load
// ============================================

func TestLoad_DefaultsWithEnvSecret(t *testing.T) {
	t.Setenv("STOREFRONT_VISITOR_SECRET", testSecret)

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.HTTPServerAddr)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 20, cfg.Catalog.PageSize)
	assert.Equal(t, 5, cfg.Catalog.Window)
	assert.Equal(t, 9, cfg.Blog.PageSize)
	assert.Equal(t, 3, cfg.Blog.Latest)
	assert.Equal(t, 8, cfg.BestSellers.TopN)
	assert.Equal(t, 2*time.Hour, cfg.Visitor.IdleTTL)
	assert.False(t, cfg.Features.ListingQuickAdd)
	assert.False(t, cfg.Broker.Enabled)
}

func TestLoad_FileFromFlag(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
http_server_addr: ":9090"
backend:
  base_url: "https://api.example.com"
  timeout: 5s
visitor:
  secret: "`+testSecret+`"
  cookie_name: "visitor"
storage:
  driver: redis
  redis:
    addr: "redis:6379"
catalog:
  page_size: 12
features:
  listing_quick_add: true
`)

	cfg, err := Load([]string{"--config", path})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.HTTPServerAddr)
	assert.Equal(t, "https://api.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "visitor", cfg.Visitor.CookieName)
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "redis:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, 12, cfg.Catalog.PageSize)
	assert.True(t, cfg.Features.ListingQuickAdd)
}

func TestLoad_FileFromEnv(t *testing.T) {
	path := writeConfig(t, "visitor:\n  secret: \""+testSecret+"\"\nlog_level: warn\n")
	t.Setenv(configFileEnvName, path)

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "visitor:\n  secret: \""+testSecret+"\"\ncatalog:\n  page_size: 12\n")
	t.Setenv("STOREFRONT_CATALOG_PAGE_SIZE", "30")

	cfg, err := Load([]string{"--config", path})
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Catalog.PageSize)
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	path := writeConfig(t, "visitor:\n  secret: \""+testSecret+"\"\nunknown_key: 1\n")

	_, err := Load([]string{"--config", path})
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")})
	assert.Error(t, err)
}

func TestLoad_BadFlag(t *testing.T) {
	_, err := Load([]string{"--no-such-flag"})
	assert.Error(t, err)
}

// ============================================
// Validate
// ============================================

func validConfig() Config {
	return Config{
		Backend: backend{BaseURL: "http://localhost:5000"},
		Visitor: visitor{Secret: testSecret, CookieName: "sid"},
		Storage: storage{Driver: "memory"},
		Catalog: catalog{PageSize: 20, Window: 5},
		Blog:    blog{PageSize: 9},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"short secret", func(c *Config) { c.Visitor.Secret = "short" }, "visitor.secret"},
		{"no cookie name", func(c *Config) { c.Visitor.CookieName = "" }, "visitor.cookie_name"},
		{"no backend", func(c *Config) { c.Backend.BaseURL = "" }, "backend.base_url"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "etcd" }, "storage.driver"},
		{"redis without addr", func(c *Config) { c.Storage.Driver = "redis" }, "storage.redis.addr"},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = "postgres" }, "storage.postgres.dsn"},
		{"broker without brokers", func(c *Config) { c.Broker.Enabled = true }, "broker.brokers"},
		{"zero page size", func(c *Config) { c.Catalog.PageSize = 0 }, "page_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
