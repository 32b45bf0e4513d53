package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mcoot/omnigram/internal/api/apierr"
	"github.com/mcoot/omnigram/internal/model"
	"github.com/mcoot/omnigram/internal/services/identity"
)

type contextKey string

const playerContextKey contextKey = "player"

// Identity resolves the player behind each request and stores the ID in the context.
// A valid X-Player-Token names the player's earlier identity; invalid tokens are ignored.
// When tokens is non-nil a fresh token is returned on every response.
func Identity(resolver *identity.Service, tokens *identity.Tokens, headers []string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var existing model.PlayerID
			if raw := r.Header.Get(identity.TokenHeader); raw != "" && tokens != nil {
				id, err := tokens.Parse(raw)
				if err != nil {
					logger.Debug("ignoring player token", slog.Any("error", err))
				} else {
					existing = id
				}
			}

			playerID, err := resolver.Resolve(r.Context(), identity.AttributesFromRequest(r, headers), existing)
			if err != nil {
				logger.Error("identity resolution failed", slog.Any("error", err))
				apierr.WriteError(w, err)
				return
			}

			if tokens != nil {
				token, err := tokens.Issue(playerID)
				if err != nil {
					logger.Error("failed to issue player token", slog.Any("error", err))
				} else {
					w.Header().Set(identity.TokenHeader, token)
				}
			}

			ctx := context.WithValue(r.Context(), playerContextKey, playerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPlayerID returns the resolved player from the request context
func GetPlayerID(ctx context.Context) model.PlayerID {
	id, _ := ctx.Value(playerContextKey).(model.PlayerID)
	return id
}

// MustGetPlayerID returns the resolved player or panics
func MustGetPlayerID(ctx context.Context) model.PlayerID {
	id := GetPlayerID(ctx)
	if id == "" {
		panic("no player in context - identity middleware not applied?")
	}
	return id
}

// PlayerAttr is a logging hook that adds the resolved player ID
func PlayerAttr(r *http.Request) []slog.Attr {
	if id := GetPlayerID(r.Context()); id != "" {
		return []slog.Attr{slog.String("player_id", string(id))}
	}
	return nil
}
