package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/dominotrain/internal/api/middleware"
	"github.com/mcoot/dominotrain/internal/api/request"
	"github.com/mcoot/dominotrain/internal/api/response"
	"github.com/mcoot/dominotrain/internal/model"
	"github.com/mcoot/dominotrain/internal/services/game"
)

// SessionHandler handles session endpoints. Every game request runs through
// the controller, which pushes the resulting events to connected players.
type SessionHandler struct {
	gameController game.ControllerInterface
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(gameController game.ControllerInterface) *SessionHandler {
	return &SessionHandler{gameController: gameController}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayer(r.Context())

	var req request.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Allow empty body for default config
		req = request.CreateSessionRequest{}
	}

	session, err := h.gameController.CreateSession(r.Context(), playerID, model.SessionConfig{
		InitialHandSize: req.InitialHandSize,
		RoundLimit:      req.RoundLimit,
		SkipRounds:      req.SkipRounds,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeView(w, r, session.ID, playerID, http.StatusCreated)
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayer(r.Context())
	h.writeView(w, r, sessionID(r), playerID, http.StatusOK)
}

// Join handles POST /api/v1/sessions/{id}/join
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, game.CommandJoin)
}

// Start handles POST /api/v1/sessions/{id}/start
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, game.CommandStart)
}

// Draw handles POST /api/v1/sessions/{id}/draw
func (h *SessionHandler) Draw(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, game.CommandDraw)
}

// Select handles POST /api/v1/sessions/{id}/select
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, game.CommandSelect)
}

// EndTurn handles POST /api/v1/sessions/{id}/end-turn
func (h *SessionHandler) EndTurn(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, game.CommandEndTurn)
}

// Undo handles POST /api/v1/sessions/{id}/undo
func (h *SessionHandler) Undo(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, game.CommandUndo)
}

// Ready handles POST /api/v1/sessions/{id}/ready
func (h *SessionHandler) Ready(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, game.CommandReady)
}

// Leave handles POST /api/v1/sessions/{id}/leave
func (h *SessionHandler) Leave(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, game.CommandDisconnect)
}

// Records handles GET /api/v1/records
func (h *SessionHandler) Records(w http.ResponseWriter, r *http.Request) {
	records, err := h.gameController.ListGameRecords(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Records(w, records)
}

// Record handles GET /api/v1/records/{id}
func (h *SessionHandler) Record(w http.ResponseWriter, r *http.Request) {
	record, err := h.gameController.GetGameRecord(r.Context(), sessionID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Record(w, record)
}

// dispatch runs one command for the calling player and answers with their
// view of the result
func (h *SessionHandler) dispatch(w http.ResponseWriter, r *http.Request, kind game.CommandKind) {
	playerID := middleware.MustGetPlayer(r.Context())
	id := sessionID(r)

	cmd := game.Command{Kind: kind, PlayerID: playerID}
	if kind == game.CommandSelect || kind == game.CommandUndo {
		var req request.DominoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, NewInvalidRequestError("invalid request body"))
			return
		}
		if req.DominoID == nil {
			WriteError(w, NewInvalidRequestError("domino_id is required"))
			return
		}
		cmd.DominoID = model.DominoID(*req.DominoID)
	}

	if _, err := h.gameController.Dispatch(r.Context(), id, cmd); err != nil {
		WriteError(w, err)
		return
	}

	if kind == game.CommandDisconnect {
		response.NoContent(w)
		return
	}
	h.writeView(w, r, id, playerID, http.StatusOK)
}

func (h *SessionHandler) writeView(w http.ResponseWriter, r *http.Request, id model.SessionID, playerID model.PlayerID, status int) {
	view, err := h.gameController.PlayerView(r.Context(), id, playerID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.View(w, status, view)
}

func sessionID(r *http.Request) model.SessionID {
	return model.SessionID(mux.Vars(r)["id"])
}
