package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/dominotrain/internal/middleware"
)

// Logging creates request logging middleware for the API. Every response
// carries the request id, which error envelopes echo back.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}
