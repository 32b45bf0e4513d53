package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/omnigram/internal/api/apierr"
	"github.com/mcoot/omnigram/internal/middleware"
)

// Recovery creates panic recovery middleware for the API.
// A panicking handler yields a JSON 500 body.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}

// Logging creates request logging middleware that includes the player ID when known
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger, PlayerAttr)
}
