package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/omnigram/internal/dependencies/mocks"
	"github.com/mcoot/omnigram/internal/model"
	"github.com/mcoot/omnigram/internal/services/identity"
	"github.com/mcoot/omnigram/internal/storage/memory"
	"github.com/mcoot/omnigram/internal/testutil"
)

func TestRateLimiterRefillsPerClient(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC))
	rl := NewRateLimiter(2, time.Minute, clk)

	ok, _ := rl.Allow("10.0.0.1")
	assert.True(t, ok)
	ok, _ = rl.Allow("10.0.0.1")
	assert.True(t, ok)
	ok, retry := rl.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.InDelta(t, float64(30*time.Second), float64(retry), float64(time.Millisecond))

	ok, _ = rl.Allow("10.0.0.2")
	assert.True(t, ok, "limits are per address")

	// A refused request does not use up the next token
	clk.Advance(31 * time.Second)
	ok, _ = rl.Allow("10.0.0.1")
	assert.True(t, ok)
	ok, _ = rl.Allow("10.0.0.1")
	assert.False(t, ok)

	clk.Advance(2 * time.Minute)
	for range 2 {
		ok, _ = rl.Allow("10.0.0.1")
		assert.True(t, ok, "bucket refills to the full limit")
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 45, retryAfterSeconds(45*time.Second+400*time.Nanosecond))
	assert.Equal(t, 45, retryAfterSeconds(44*time.Second+300*time.Millisecond))
	assert.Equal(t, 1, retryAfterSeconds(time.Millisecond))
}

func TestRateLimiterSweepsIdleVisitors(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC))
	rl := NewRateLimiter(5, time.Minute, clk)

	rl.Allow("a")
	rl.Allow("b")
	require.Equal(t, 2, rl.Len())

	clk.Advance(3 * time.Minute)
	rl.Allow("c")
	assert.Equal(t, 1, rl.Len())
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute, mocks.NewMockClock(time.Now()))
	for i := 0; i < 100; i++ {
		ok, _ := rl.Allow("a")
		require.True(t, ok)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC))
	handler := RateLimit(NewRateLimiter(1, time.Minute, clk), testutil.NopLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/longest-word", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	// Same host, different port
	req.RemoteAddr = "192.0.2.1:5678"
	clk.Advance(15 * time.Second)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "45", rr.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"success":false,"error":{"code":"RATE_LIMITED","message":"Too many requests"}}`, rr.Body.String())
}

func newIdentity(t *testing.T) (*identity.Service, *identity.Tokens, *memory.Storage) {
	t.Helper()
	store := memory.New()
	clk := mocks.NewMockClock(time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC))
	tokens, err := identity.NewTokens("secret", time.Hour, clk)
	require.NoError(t, err)
	svc := identity.New(store, identity.NewHasher(""), nil, testutil.NopLogger())
	return svc, tokens, store
}

// serveIdentity runs req through the identity middleware and reports the player the handler saw
func serveIdentity(mw func(http.Handler) http.Handler, req *http.Request) (*httptest.ResponseRecorder, model.PlayerID) {
	var seen model.PlayerID
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = MustGetPlayerID(r.Context())
	})
	rr := httptest.NewRecorder()
	mw(inner).ServeHTTP(rr, req)
	return rr, seen
}

func browserRequest(userAgent string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/longest-word", nil)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-GB")
	return req
}

func TestIdentityResolvesFingerprintAndIssuesToken(t *testing.T) {
	svc, tokens, _ := newIdentity(t)
	mw := Identity(svc, tokens, identity.DefaultHeaders, testutil.NopLogger())

	rr, player := serveIdentity(mw, browserRequest("Firefox"))

	attrs := identity.Attributes{"user-agent": "Firefox", "accept-language": "en-GB"}
	assert.Equal(t, model.PlayerID(svc.Fingerprint(attrs)), player)

	token := rr.Header().Get(identity.TokenHeader)
	require.NotEmpty(t, token)
	parsed, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, player, parsed)
}

func TestIdentityTokenKeepsKnownPlayer(t *testing.T) {
	svc, tokens, store := newIdentity(t)
	mw := Identity(svc, tokens, identity.DefaultHeaders, testutil.NopLogger())

	_, original := serveIdentity(mw, browserRequest("Firefox"))
	require.NoError(t, store.SaveWordCountRecord(context.Background(), &model.WordCountRecord{
		PlayerID:  original,
		WordCount: 3,
	}))
	token, err := tokens.Issue(original)
	require.NoError(t, err)

	// The browser changed, but the token still names a stored player
	req := browserRequest("Chrome")
	req.Header.Set(identity.TokenHeader, token)
	_, player := serveIdentity(mw, req)
	assert.Equal(t, original, player)
}

func TestIdentityIgnoresBadToken(t *testing.T) {
	svc, tokens, _ := newIdentity(t)
	mw := Identity(svc, tokens, identity.DefaultHeaders, testutil.NopLogger())

	_, want := serveIdentity(mw, browserRequest("Firefox"))

	req := browserRequest("Firefox")
	req.Header.Set(identity.TokenHeader, "not-a-token")
	_, player := serveIdentity(mw, req)
	assert.Equal(t, want, player)
}

func TestIdentityWithoutTokens(t *testing.T) {
	svc, _, _ := newIdentity(t)
	mw := Identity(svc, nil, identity.DefaultHeaders, testutil.NopLogger())

	rr, player := serveIdentity(mw, browserRequest("Firefox"))
	assert.NotEmpty(t, player)
	assert.Empty(t, rr.Header().Get(identity.TokenHeader))
}

func TestGetPlayerIDMissing(t *testing.T) {
	assert.Empty(t, GetPlayerID(context.Background()))
	assert.Panics(t, func() { MustGetPlayerID(context.Background()) })
}
