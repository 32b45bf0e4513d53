package factory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/omnigram/internal/api"
	"github.com/mcoot/omnigram/internal/api/middleware"
	"github.com/mcoot/omnigram/internal/config"
	"github.com/mcoot/omnigram/internal/dependencies/clock"
	"github.com/mcoot/omnigram/internal/dependencies/random"
	"github.com/mcoot/omnigram/internal/migrate"
	"github.com/mcoot/omnigram/internal/services/identity"
	"github.com/mcoot/omnigram/internal/services/longestword"
	"github.com/mcoot/omnigram/internal/services/omnigram"
	"github.com/mcoot/omnigram/internal/services/playsession"
	"github.com/mcoot/omnigram/internal/services/streak"
	"github.com/mcoot/omnigram/internal/services/wordcount"
	"github.com/mcoot/omnigram/internal/storage"
	"github.com/mcoot/omnigram/internal/storage/memory"
	"github.com/mcoot/omnigram/internal/storage/postgres"
	redisstorage "github.com/mcoot/omnigram/internal/storage/redis"
	"github.com/mcoot/omnigram/internal/storage/sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock    clock.Clock
	Random   random.Random
	Location *time.Location

	// Services
	Omnigrams          *omnigram.Pool
	IdentityService    *identity.Service
	Tokens             *identity.Tokens
	LongestWordService *longestword.Service
	WordCountService   *wordcount.Service
	StreakService      *streak.Service
	PlaySessionService *playsession.Service
	RateLimiter        *middleware.RateLimiter

	identityHeaders []string
	corsOrigins     []string
	logger          *slog.Logger
	closers         []func() error
}

// options are the settings newWithDependencies needs beyond its collaborators
type options struct {
	identity  config.IdentityConfig
	rateLimit config.RateLimitConfig
	cors      []string
	wordsTTL  time.Duration
	location  *time.Location
}

// New creates a new application from cfg with all dependencies wired.
// A nil logger discards output.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	clk := clock.New()
	rnd := random.New()
	opts := options{
		identity:  cfg.Identity,
		rateLimit: cfg.RateLimit,
		cors:      cfg.Server.CORSOrigins,
		wordsTTL:  cfg.Game.WordsTTL,
		location:  cfg.Location(),
	}

	store, cache, closer, err := openStorage(ctx, cfg.Storage, cfg.Identity.CacheTTL, clk, logger)
	if err != nil {
		return nil, err
	}

	source, err := omnigramSource(ctx, cfg.Game)
	if err != nil {
		_ = closer()
		return nil, err
	}

	app, err := newWithDependencies(store, cache, source, clk, rnd, opts, logger)
	if err != nil {
		_ = closer()
		return nil, err
	}
	app.closers = append(app.closers, closer)
	return app, nil
}

// openStorage connects the configured backend and picks a matching identity cache
func openStorage(ctx context.Context, cfg config.StorageConfig, cacheTTL time.Duration, clk clock.Clock, logger *slog.Logger) (storage.Storage, identity.Cache, func() error, error) {
	memCache := identity.NewMemoryCache(cacheTTL, clk)
	noop := func() error { return nil }

	switch cfg.Type {
	case config.StorageMemory:
		return memory.New(), memCache, noop, nil

	case config.StorageRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		if cfg.RedisKeyPrefix != "" {
			redisCfg.KeyPrefix = cfg.RedisKeyPrefix
		}
		store, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		cache := identity.NewRedisCache(store.Client(), redisCfg.KeyPrefix, cacheTTL)
		return store, cache, store.Close, nil

	case config.StoragePostgres:
		if cfg.Migrate {
			if err := migrate.UpDSN(ctx, cfg.PostgresDSN); err != nil {
				return nil, nil, nil, fmt.Errorf("failed to migrate postgres: %w", err)
			}
			logger.Info("postgres migrations applied")
		}
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		store := postgres.New(db)
		return store, memCache, store.Close, nil

	case config.StorageSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, memCache, store.Close, nil

	default:
		return nil, nil, nil, fmt.Errorf("invalid storage type %q", cfg.Type)
	}
}

// omnigramSource selects the S3 word list when a bucket is configured, otherwise the local file
func omnigramSource(ctx context.Context, cfg config.GameConfig) (omnigram.Source, error) {
	if cfg.WordsBucket != "" {
		src, err := omnigram.NewS3Source(ctx, cfg.AWSRegion, cfg.WordsBucket, cfg.WordsKey)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	return omnigram.FileSource{Path: cfg.WordsFile}, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, cache identity.Cache, source omnigram.Source, clk clock.Clock, rnd random.Random, opts options, logger *slog.Logger) (*App, error) {
	tokens, err := identity.NewTokens(opts.identity.Secret, opts.identity.TokenTTL, clk)
	if err != nil {
		return nil, err
	}

	headers := opts.identity.Headers
	if len(headers) == 0 {
		headers = identity.DefaultHeaders
	}

	// Create services
	pool := omnigram.NewPool(source, opts.wordsTTL, clk, rnd, logger)
	identityService := identity.New(store, identity.NewHasher(opts.identity.Secret), cache, logger)
	longestWordService := longestword.New(store, clk, logger)
	wordCountService := wordcount.New(store, clk, logger)
	streakService := streak.New(store, clk, opts.location, logger)
	playSessionService := playsession.New(store, pool, longestWordService, clk, opts.location, logger)

	var limiter *middleware.RateLimiter
	if opts.rateLimit.Requests > 0 {
		limiter = middleware.NewRateLimiter(opts.rateLimit.Requests, opts.rateLimit.Window, clk)
	}

	return &App{
		Storage:            store,
		Clock:              clk,
		Random:             rnd,
		Location:           opts.location,
		Omnigrams:          pool,
		IdentityService:    identityService,
		Tokens:             tokens,
		LongestWordService: longestWordService,
		WordCountService:   wordCountService,
		StreakService:      streakService,
		PlaySessionService: playSessionService,
		RateLimiter:        limiter,
		identityHeaders:    headers,
		corsOrigins:        opts.cors,
		logger:             logger,
	}, nil
}

// RouterConfig returns the API router configuration for this app
func (a *App) RouterConfig() api.RouterConfig {
	return api.RouterConfig{
		Logger:             a.logger,
		IdentityService:    a.IdentityService,
		Tokens:             a.Tokens,
		IdentityHeaders:    a.identityHeaders,
		CORSOrigins:        a.corsOrigins,
		RateLimiter:        a.RateLimiter,
		LongestWordService: a.LongestWordService,
		WordCountService:   a.WordCountService,
		StreakService:      a.StreakService,
		PlaySessionService: a.PlaySessionService,
	}
}

// Close releases storage connections
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
