package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/dominotrain/internal/api/middleware"
	"github.com/mcoot/dominotrain/internal/push"
	"github.com/mcoot/dominotrain/internal/services/game"
)

// StreamHandler serves the push channels of a session
type StreamHandler struct {
	gameController game.ControllerInterface
	hubManager     *push.HubManager
	originPatterns []string
	logger         *slog.Logger
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(gameController game.ControllerInterface, hubManager *push.HubManager, originPatterns []string, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		gameController: gameController,
		hubManager:     hubManager,
		originPatterns: originPatterns,
		logger:         logger,
	}
}

// Events handles GET /api/v1/sessions/{id}/events
func (h *StreamHandler) Events(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayer(r.Context())
	id := sessionID(r)

	// Only players of the session may listen
	if _, err := h.gameController.PlayerView(r.Context(), id, playerID); err != nil {
		WriteError(w, err)
		return
	}

	push.ServeSSE(w, r, h.hubManager, id, playerID)
}

// WebSocket handles GET /api/v1/sessions/{id}/ws
func (h *StreamHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayer(r.Context())
	id := sessionID(r)

	if _, err := h.gameController.PlayerView(r.Context(), id, playerID); err != nil {
		WriteError(w, err)
		return
	}

	push.ServeWS(w, r, h.hubManager, id, playerID, h.gameController, h.originPatterns, h.logger)
}
