package factory

import (
	"time"
	_ "time/tzdata"

	"github.com/mcoot/omnigram/internal/api/middleware"
	"github.com/mcoot/omnigram/internal/config"
	"github.com/mcoot/omnigram/internal/dependencies/mocks"
	"github.com/mcoot/omnigram/internal/services/identity"
	"github.com/mcoot/omnigram/internal/storage/memory"
	"github.com/mcoot/omnigram/internal/testutil"
)

// TestOmnigrams is the puzzle pool loaded by LoadTestOmnigrams, in pick order
var TestOmnigrams = []string{"strangle", "captions", "question"}

// TestSecret keys fingerprints and tokens in test apps
const TestSecret = "test-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Memory     *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The clock starts at 2024-03-20 14:00 in America/New_York and rate limiting is off.
func NewTestApp() *TestApp {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic(err)
	}

	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 3, 20, 14, 0, 0, 0, loc))
	mockRandom := mocks.NewMockRandom()

	defaults := config.Default()
	opts := options{
		identity: config.IdentityConfig{
			Secret:   TestSecret,
			Headers:  identity.DefaultHeaders,
			TokenTTL: time.Hour,
			CacheTTL: time.Minute,
		},
		cors:     defaults.Server.CORSOrigins,
		wordsTTL: defaults.Game.WordsTTL,
		location: loc,
	}
	cache := identity.NewMemoryCache(opts.identity.CacheTTL, mockClock)

	app, err := newWithDependencies(store, cache, nil, mockClock, mockRandom, opts, testutil.NopLogger())
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Memory:     store,
	}
}

// WithRateLimit enables rate limiting driven by the mock clock
func (t *TestApp) WithRateLimit(requests int, window time.Duration) *TestApp {
	t.RateLimiter = middleware.NewRateLimiter(requests, window, t.MockClock)
	return t
}

// LoadTestOmnigrams fills the omnigram pool with TestOmnigrams
func (t *TestApp) LoadTestOmnigrams() {
	t.Omnigrams.LoadWords(TestOmnigrams)
}
