package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mcoot/omnigram/internal/api/apierr"
	"github.com/mcoot/omnigram/internal/api/handler"
	"github.com/mcoot/omnigram/internal/api/middleware"
	"github.com/mcoot/omnigram/internal/api/response"
	"github.com/mcoot/omnigram/internal/services/identity"
	"github.com/mcoot/omnigram/internal/services/longestword"
	"github.com/mcoot/omnigram/internal/services/playsession"
	"github.com/mcoot/omnigram/internal/services/streak"
	"github.com/mcoot/omnigram/internal/services/wordcount"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	IdentityService    *identity.Service
	Tokens             *identity.Tokens
	IdentityHeaders    []string
	// CORSOrigins are the browser origins allowed to call the API; empty disables CORS
	CORSOrigins        []string
	RateLimiter        *middleware.RateLimiter
	LongestWordService *longestword.Service
	WordCountService   *wordcount.Service
	StreakService      *streak.Service
	PlaySessionService *playsession.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)

	headers := cfg.IdentityHeaders
	if len(headers) == 0 {
		headers = identity.DefaultHeaders
	}

	// Create handlers
	longestHandler := handler.NewLongestWordHandler(cfg.LongestWordService)
	wordCountHandler := handler.NewWordCountHandler(cfg.WordCountService)
	streakHandler := handler.NewStreakHandler(cfg.StreakService)
	playHandler := handler.NewPlaySessionHandler(cfg.PlaySessionService)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	if cfg.RateLimiter != nil {
		api.Use(middleware.RateLimit(cfg.RateLimiter, cfg.Logger))
	}

	// Health check (no player)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Every other route acts on the resolved player
	player := api.NewRoute().Subrouter()
	player.Use(middleware.Identity(cfg.IdentityService, cfg.Tokens, headers, cfg.Logger))
	player.Use(middleware.Logging(cfg.Logger))

	player.HandleFunc("/longest-word", longestHandler.Submit).Methods(http.MethodPost)
	player.HandleFunc("/longest-word", longestHandler.Get).Methods(http.MethodGet)
	player.HandleFunc("/longest-word/top", longestHandler.Top).Methods(http.MethodGet)

	player.HandleFunc("/game-words/update", wordCountHandler.Update).Methods(http.MethodPost)
	player.HandleFunc("/game-words/highest", wordCountHandler.Highest).Methods(http.MethodGet)
	player.HandleFunc("/game-words/top", wordCountHandler.Top).Methods(http.MethodGet)

	player.HandleFunc("/session", streakHandler.Record).Methods(http.MethodPost)
	player.HandleFunc("/session/streak", streakHandler.Get).Methods(http.MethodGet)

	player.HandleFunc("/play-session/current", playHandler.Current).Methods(http.MethodGet)
	player.HandleFunc("/play-session/submit-word", playHandler.SubmitWord).Methods(http.MethodPost)
	player.HandleFunc("/play-session/top-scores", playHandler.TopScores).Methods(http.MethodGet)

	// mux loses a method mismatch once a later route's prefix matches, so every
	// path ends with an any-method route answering 405
	for _, route := range []struct {
		path    string
		methods []string
	}{
		{"/health", []string{http.MethodGet}},
		{"/longest-word", []string{http.MethodGet, http.MethodPost}},
		{"/longest-word/top", []string{http.MethodGet}},
		{"/game-words/update", []string{http.MethodPost}},
		{"/game-words/highest", []string{http.MethodGet}},
		{"/game-words/top", []string{http.MethodGet}},
		{"/session", []string{http.MethodPost}},
		{"/session/streak", []string{http.MethodGet}},
		{"/play-session/current", []string{http.MethodGet}},
		{"/play-session/submit-word", []string{http.MethodPost}},
		{"/play-session/top-scores", []string{http.MethodGet}},
	} {
		api.Handle(route.path, methodNotAllowed(route.methods...))
	}

	if len(cfg.CORSOrigins) == 0 {
		return r
	}
	// Preflight requests are answered here, before routing, rate limiting or identity
	return handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		handlers.AllowedHeaders([]string{"Content-Type", identity.TokenHeader}),
		handlers.ExposedHeaders([]string{identity.TokenHeader, "Retry-After"}),
		handlers.MaxAge(600),
	)(r)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteError(w, apierr.NewNotFoundError())
}

// methodNotAllowed answers 405 and lists the methods the path accepts
func methodNotAllowed(allowed ...string) http.Handler {
	allow := strings.Join(allowed, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", allow)
		apierr.WriteError(w, apierr.NewMethodNotAllowedError())
	})
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, response.Health{Success: true, Status: "ok"})
}
