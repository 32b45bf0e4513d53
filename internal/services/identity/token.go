package identity

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/omnigram/internal/dependencies/clock"
	"github.com/mcoot/omnigram/internal/model"
)

// TokenHeader carries the player token on requests and responses
const TokenHeader = "X-Player-Token"

// DefaultTokenTTL is how long an issued player token stays valid
const DefaultTokenTTL = 365 * 24 * time.Hour

// ErrInvalidToken is returned for tokens that fail signature or claim validation
var ErrInvalidToken = errors.New("invalid player token")

// Tokens issues and verifies signed player tokens
type Tokens struct {
	key   []byte
	ttl   time.Duration
	clock clock.Clock
}

// NewTokens creates a token signer. Without a secret a random per-process key is used,
// so tokens do not survive a restart.
func NewTokens(secret string, ttl time.Duration, clock clock.Clock) (*Tokens, error) {
	var key []byte
	if secret != "" {
		key = deriveKey(secret, "omnigram player token v1")
	} else {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate token key: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{key: key, ttl: ttl, clock: clock}, nil
}

// Issue signs an HS256 token whose subject is the player ID
func (t *Tokens) Issue(id model.PlayerID) (string, error) {
	now := t.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   string(id),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
}

// Parse verifies a token and returns its player ID
func (t *Tokens) Parse(token string) (model.PlayerID, error) {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.clock.Now),
		jwt.WithExpirationRequired(),
	)
	parsed, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.key, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return model.PlayerID(claims.Subject), nil
}
