package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/dominotrain/internal/api/apierr"
	"github.com/mcoot/dominotrain/internal/model"
)

// PlayerHeader carries the caller's player id. Authentication happens in
// front of this server; the id is trusted as given.
const PlayerHeader = "X-Player-ID"

// maxPlayerIDLength bounds ids accepted from callers
const maxPlayerIDLength = 64

type contextKey string

const playerContextKey contextKey = "player"

// Identity requires a player id on every request
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			playerID := extractPlayerID(r)
			if playerID == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}
			if len(playerID) > maxPlayerIDLength {
				apierr.WriteError(w, apierr.NewInvalidRequestError("Player id too long"))
				return
			}

			ctx := context.WithValue(r.Context(), playerContextKey, model.PlayerID(playerID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractPlayerID reads the header first, then the query parameter that
// browser EventSource and WebSocket clients can set
func extractPlayerID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(PlayerHeader)); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get("player"))
}

// GetPlayer returns the calling player from the request context
func GetPlayer(ctx context.Context) (model.PlayerID, bool) {
	playerID, ok := ctx.Value(playerContextKey).(model.PlayerID)
	return playerID, ok
}

// MustGetPlayer returns the calling player or panics
func MustGetPlayer(ctx context.Context) model.PlayerID {
	playerID, ok := GetPlayer(ctx)
	if !ok {
		panic("no player in context - identity middleware not applied?")
	}
	return playerID
}
