package handler

import (
	"net/http"

	"github.com/mcoot/dominotrain/internal/api/response"
	"github.com/mcoot/dominotrain/internal/push"
	"github.com/mcoot/dominotrain/internal/services/game"
)

// HealthHandler reports liveness with a snapshot of load
type HealthHandler struct {
	gameController game.ControllerInterface
	hubManager     *push.HubManager
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(gameController game.ControllerInterface, hubManager *push.HubManager) *HealthHandler {
	return &HealthHandler{gameController: gameController, hubManager: hubManager}
}

// Health handles GET /api/v1/health. A failing store makes the server unhealthy.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.gameController.CountSessions(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	hubs, clients := h.hubManager.Stats()
	response.JSON(w, http.StatusOK, response.Health{
		Status:      "ok",
		Sessions:    sessions,
		PushHubs:    hubs,
		PushClients: clients,
	})
}
