// Package config loads server configuration from an optional YAML file and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

// Config is the complete server configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Identity  IdentityConfig  `yaml:"identity"`
	Game      GameConfig      `yaml:"game"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	LogLevel  string          `yaml:"log_level"`

	location *time.Location
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// CORSOrigins may call the API from a browser; "*" allows any. Empty disables CORS.
	CORSOrigins []string `yaml:"cors_origins"`
}

// StorageConfig selects and configures the persistence backend
type StorageConfig struct {
	Type           string `yaml:"type"`
	RedisURL       string `yaml:"redis_url"`
	RedisKeyPrefix string `yaml:"redis_key_prefix"`
	PostgresDSN    string `yaml:"postgres_dsn"`
	SQLitePath     string `yaml:"sqlite_path"`
	// Migrate applies pending Postgres migrations at startup. SQLite always migrates on open.
	Migrate bool `yaml:"migrate"`
}

// IdentityConfig controls player fingerprinting and tokens
type IdentityConfig struct {
	// Secret keys the fingerprint HMAC and signs player tokens. Empty means unsalted SHA-256.
	Secret   string        `yaml:"secret"`
	Headers  []string      `yaml:"headers"`
	TokenTTL time.Duration `yaml:"token_ttl"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// GameConfig holds puzzle settings
type GameConfig struct {
	// Timezone is the IANA zone whose midnight starts daily sessions and streak days
	Timezone string `yaml:"timezone"`
	// WordsFile is a local omnigram word list; ignored when WordsBucket is set
	WordsFile   string        `yaml:"words_file"`
	WordsBucket string        `yaml:"words_bucket"`
	WordsKey    string        `yaml:"words_key"`
	AWSRegion   string        `yaml:"aws_region"`
	WordsTTL    time.Duration `yaml:"words_ttl"`
}

// RateLimitConfig bounds requests per client address
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// Default returns the configuration used when nothing is overridden
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Storage: StorageConfig{
			Type:           StorageMemory,
			RedisURL:       "redis://localhost:6379",
			RedisKeyPrefix: "omnigram",
			SQLitePath:     "omnigram.db",
			Migrate:        true,
		},
		Identity: IdentityConfig{
			Headers:  []string{"user-agent", "accept-language"},
			TokenTTL: 365 * 24 * time.Hour,
			CacheTTL: 10 * time.Minute,
		},
		Game: GameConfig{
			Timezone:  "America/New_York",
			WordsFile: "data/words.txt",
			WordsKey:  "words.txt",
			WordsTTL:  24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Requests: 60,
			Window:   time.Minute,
		},
		LogLevel: "info",
	}
}

// Load builds the configuration: defaults, then the YAML file at path if non-empty,
// then environment overrides read through getenv.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"OMNIGRAM_HOST", &c.Server.Host},
		{"STORAGE_TYPE", &c.Storage.Type},
		{"REDIS_URL", &c.Storage.RedisURL},
		{"OMNIGRAM_REDIS_PREFIX", &c.Storage.RedisKeyPrefix},
		{"DATABASE_URL", &c.Storage.PostgresDSN},
		{"OMNIGRAM_SQLITE_PATH", &c.Storage.SQLitePath},
		{"OMNIGRAM_SECRET", &c.Identity.Secret},
		{"OMNIGRAM_TIMEZONE", &c.Game.Timezone},
		{"OMNIGRAM_WORDS_FILE", &c.Game.WordsFile},
		{"OMNIGRAM_WORDS_BUCKET", &c.Game.WordsBucket},
		{"OMNIGRAM_WORDS_KEY", &c.Game.WordsKey},
		{"AWS_REGION", &c.Game.AWSRegion},
		{"OMNIGRAM_LOG_LEVEL", &c.LogLevel},
	}
	for _, s := range strs {
		if v := getenv(s.key); v != "" {
			*s.dst = v
		}
	}

	if v := getenv("OMNIGRAM_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("OMNIGRAM_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := getenv("OMNIGRAM_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("OMNIGRAM_RATE_LIMIT: %w", err)
		}
		c.RateLimit.Requests = n
	}
	if v := getenv("OMNIGRAM_MIGRATE"); v != "" {
		migrate, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("OMNIGRAM_MIGRATE: %w", err)
		}
		c.Storage.Migrate = migrate
	}
	if v := getenv("OMNIGRAM_IDENTITY_HEADERS"); v != "" {
		var headers []string
		for _, h := range splitList(v) {
			headers = append(headers, strings.ToLower(h))
		}
		c.Identity.Headers = headers
	}
	if v, ok := lookup(getenv, "OMNIGRAM_CORS_ORIGINS"); ok {
		c.Server.CORSOrigins = splitList(v)
	}
	return nil
}

// lookup treats "none" as an explicit empty value, so a list can be cleared from the environment
func lookup(getenv func(string) string, key string) (string, bool) {
	switch v := getenv(key); v {
	case "":
		return "", false
	case "none":
		return "", true
	default:
		return v, true
	}
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks the configuration and resolves the timezone
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}

	switch c.Storage.Type {
	case StorageMemory:
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			return errors.New("redis_url required when storage type is redis")
		}
	case StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			return errors.New("postgres_dsn required when storage type is postgres")
		}
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("sqlite_path required when storage type is sqlite")
		}
	default:
		return fmt.Errorf("invalid storage type %q: must be one of memory, redis, postgres, sqlite", c.Storage.Type)
	}

	for _, origin := range c.Server.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid CORS origin %q: must be * or start with http:// or https://", origin)
		}
	}
	if len(c.Identity.Headers) == 0 {
		return errors.New("at least one identity header is required")
	}
	if c.Game.WordsBucket != "" && c.Game.WordsKey == "" {
		return errors.New("words_key required when words_bucket is set")
	}
	if c.RateLimit.Requests < 0 {
		return errors.New("rate limit requests must not be negative")
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		return errors.New("rate limit window must be positive")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}

	loc, err := time.LoadLocation(c.Game.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Game.Timezone, err)
	}
	c.location = loc
	return nil
}

// Location returns the game timezone. Valid after Validate.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// Level returns the slog level named by LogLevel
func (c *Config) Level() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
