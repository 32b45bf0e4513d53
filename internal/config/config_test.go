package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "omnigram.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", env(nil))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, StorageMemory, cfg.Storage.Type)
	assert.Equal(t, []string{"user-agent", "accept-language"}, cfg.Identity.Headers)
	assert.Equal(t, 60, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "America/New_York", cfg.Location().String())
	assert.Equal(t, "INFO", cfg.Level().String())
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
server:
  port: 9090
storage:
  type: sqlite
  sqlite_path: /tmp/omnigram.db
identity:
  secret: s3cret
  headers: [user-agent]
  token_ttl: 720h
game:
  timezone: Europe/London
  words_ttl: 6h
rate_limit:
  requests: 10
  window: 30s
log_level: debug
`)

	cfg, err := Load(path, env(nil))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, StorageSQLite, cfg.Storage.Type)
	assert.Equal(t, "/tmp/omnigram.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "s3cret", cfg.Identity.Secret)
	assert.Equal(t, []string{"user-agent"}, cfg.Identity.Headers)
	assert.Equal(t, 720*time.Hour, cfg.Identity.TokenTTL)
	assert.Equal(t, 6*time.Hour, cfg.Game.WordsTTL)
	assert.Equal(t, "Europe/London", cfg.Location().String())
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, "DEBUG", cfg.Level().String())
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, ""), env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(writeFile(t, "sever:\n  port: 1\n"), env(nil))
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), env(nil))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "storage:\n  type: sqlite\n")

	cfg, err := Load(path, env(map[string]string{
		"STORAGE_TYPE":              "redis",
		"REDIS_URL":                 "redis://cache:6379/1",
		"OMNIGRAM_PORT":             "3000",
		"OMNIGRAM_RATE_LIMIT":       "0",
		"OMNIGRAM_MIGRATE":          "false",
		"OMNIGRAM_IDENTITY_HEADERS": "User-Agent, X-Device ,",
		"OMNIGRAM_WORDS_BUCKET":     "puzzles",
		"AWS_REGION":                "eu-west-2",
	}))
	require.NoError(t, err)

	assert.Equal(t, StorageRedis, cfg.Storage.Type)
	assert.Equal(t, "redis://cache:6379/1", cfg.Storage.RedisURL)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Zero(t, cfg.RateLimit.Requests)
	assert.False(t, cfg.Storage.Migrate)
	assert.Equal(t, []string{"user-agent", "x-device"}, cfg.Identity.Headers)
	assert.Equal(t, "puzzles", cfg.Game.WordsBucket)
	assert.Equal(t, "eu-west-2", cfg.Game.AWSRegion)
}

func TestEnvCORSOrigins(t *testing.T) {
	cfg, err := Load("", env(map[string]string{
		"OMNIGRAM_CORS_ORIGINS": "https://omnigram.example, http://localhost:5173",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://omnigram.example", "http://localhost:5173"}, cfg.Server.CORSOrigins)

	cfg, err = Load("", env(map[string]string{"OMNIGRAM_CORS_ORIGINS": "none"}))
	require.NoError(t, err)
	assert.Empty(t, cfg.Server.CORSOrigins)
}

func TestEnvParseErrors(t *testing.T) {
	for _, key := range []string{"OMNIGRAM_PORT", "OMNIGRAM_RATE_LIMIT", "OMNIGRAM_MIGRATE"} {
		t.Run(key, func(t *testing.T) {
			_, err := Load("", env(map[string]string{key: "lots"}))
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown storage", func(c *Config) { c.Storage.Type = "mongo" }, "invalid storage type"},
		{"postgres without dsn", func(c *Config) { c.Storage.Type = StoragePostgres }, "postgres_dsn required"},
		{"redis without url", func(c *Config) { c.Storage.Type = StorageRedis; c.Storage.RedisURL = "" }, "redis_url required"},
		{"sqlite without path", func(c *Config) { c.Storage.Type = StorageSQLite; c.Storage.SQLitePath = "" }, "sqlite_path required"},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "out of range"},
		{"no headers", func(c *Config) { c.Identity.Headers = nil }, "identity header"},
		{"bucket without key", func(c *Config) { c.Game.WordsBucket = "b"; c.Game.WordsKey = "" }, "words_key required"},
		{"negative rate limit", func(c *Config) { c.RateLimit.Requests = -1 }, "must not be negative"},
		{"zero window", func(c *Config) { c.RateLimit.Window = 0 }, "window must be positive"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "invalid log level"},
		{"bad cors origin", func(c *Config) { c.Server.CORSOrigins = []string{"omnigram.example"} }, "invalid CORS origin"},
		{"bad timezone", func(c *Config) { c.Game.Timezone = "Mars/Olympus" }, "invalid timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestLocationBeforeValidateIsUTC(t *testing.T) {
	var cfg Config
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestExampleFileLoads(t *testing.T) {
	cfg, err := Load("../../omnigram.example.yaml", env(nil))
	require.NoError(t, err)

	assert.Equal(t, StorageSQLite, cfg.Storage.Type)
	assert.Equal(t, 365*24*time.Hour, cfg.Identity.TokenTTL)
	assert.Equal(t, "America/New_York", cfg.Location().String())
}
