package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/dominotrain/internal/middleware"
	"github.com/mcoot/dominotrain/internal/model"
	"github.com/mcoot/dominotrain/internal/protocol"
)

// APIError represents an API error response. RequestID matches the
// X-Request-ID response header so a failed move can be found in the logs.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeSessionNotFound     = "SESSION_NOT_FOUND"
	CodeSessionFull         = "SESSION_FULL"
	CodeAlreadyInSession    = "ALREADY_IN_SESSION"
	CodeNotInSession        = "NOT_IN_SESSION"
	CodeNotHost             = "NOT_HOST"
	CodeInsufficientPlayers = "INSUFFICIENT_PLAYERS"
	CodeGameComplete        = "GAME_COMPLETE"
	CodeActionNotAllowed    = "ACTION_NOT_ALLOWED"
	CodeNotYourTurn         = "NOT_YOUR_TURN"
	CodeAlreadySignalled    = "ALREADY_SIGNALLED"
	CodeAlreadyMoved        = "ALREADY_MOVED"
	CodeAlreadyDrawn        = "ALREADY_DRAWN"
	CodeTrackAlreadyAdded   = "TRACK_ALREADY_ADDED"
	CodeStationFull         = "STATION_FULL"
	CodeTrackNotOwned       = "TRACK_NOT_OWNED"
	CodeNoDominoSelected    = "NO_DOMINO_SELECTED"
	CodeDominoNotInHand     = "DOMINO_NOT_IN_HAND"
	CodeDominoNotPlayable   = "DOMINO_NOT_PLAYABLE"
	CodeDominoMismatch      = "DOMINO_MISMATCH"
	CodeNothingToUndo       = "NOTHING_TO_UNDO"
	CodeTurnNotFinished     = "TURN_NOT_FINISHED"
	CodeInvalidConfig       = "INVALID_CONFIG"
	CodeDominoNotFound      = "DOMINO_NOT_FOUND"
	CodeRecordNotFound      = "RECORD_NOT_FOUND"
	CodeResyncRequired      = "RESYNC_REQUIRED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	body := he.apiError
	body.RequestID = w.Header().Get(middleware.RequestIDHeader)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: body})
}

// Describe returns the status and body an error maps to, for transports
// that report errors without an HTTP response
func Describe(err error) (int, APIError) {
	he := toHTTPError(err)
	return he.status, he.apiError
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Session errors
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeSessionNotFound, Message: "Session not found"}}
	case errors.Is(err, model.ErrSessionFull):
		return &httpError{http.StatusConflict, APIError{Code: CodeSessionFull, Message: "Session is full"}}
	case errors.Is(err, model.ErrAlreadyInSession):
		return &httpError{http.StatusConflict, APIError{Code: CodeAlreadyInSession, Message: "Already in this session"}}
	case errors.Is(err, model.ErrNotInSession):
		return &httpError{http.StatusForbidden, APIError{Code: CodeNotInSession, Message: "Not in this session"}}
	case errors.Is(err, model.ErrNotHost):
		return &httpError{http.StatusForbidden, APIError{Code: CodeNotHost, Message: "Only the host can perform this action"}}
	case errors.Is(err, model.ErrInsufficientPlayers):
		return &httpError{http.StatusConflict, APIError{Code: CodeInsufficientPlayers, Message: "Not enough players to start"}}
	case errors.Is(err, model.ErrGameComplete):
		return &httpError{http.StatusConflict, APIError{Code: CodeGameComplete, Message: "Game is already complete"}}
	case errors.Is(err, model.ErrInvalidRoundSkip), errors.Is(err, model.ErrInvalidSessionSetup):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidConfig, Message: err.Error()}}

	// Protocol violations
	case errors.Is(err, model.ErrActionNotAllowed):
		return &httpError{http.StatusConflict, APIError{Code: CodeActionNotAllowed, Message: "Action not allowed in the current phase"}}
	case errors.Is(err, model.ErrNotPlayerTurn):
		return &httpError{http.StatusForbidden, APIError{Code: CodeNotYourTurn, Message: "Not your turn"}}
	case errors.Is(err, model.ErrAlreadySignaled):
		return &httpError{http.StatusConflict, APIError{Code: CodeAlreadySignalled, Message: "Already signalled"}}
	case errors.Is(err, model.ErrAlreadyMoved):
		return &httpError{http.StatusConflict, APIError{Code: CodeAlreadyMoved, Message: "Already moved this turn"}}
	case errors.Is(err, model.ErrAlreadyDrawn):
		return &httpError{http.StatusConflict, APIError{Code: CodeAlreadyDrawn, Message: "Already drawn this turn"}}
	case errors.Is(err, model.ErrTrackAlreadyAdded):
		return &httpError{http.StatusConflict, APIError{Code: CodeTrackAlreadyAdded, Message: "Already started a track this turn"}}
	case errors.Is(err, model.ErrStationFull):
		return &httpError{http.StatusConflict, APIError{Code: CodeStationFull, Message: "No room for another track"}}
	case errors.Is(err, model.ErrTrackNotOwned):
		return &httpError{http.StatusForbidden, APIError{Code: CodeTrackNotOwned, Message: "Track belongs to another player"}}
	case errors.Is(err, model.ErrNoDominoSelected):
		return &httpError{http.StatusConflict, APIError{Code: CodeNoDominoSelected, Message: "Select a domino from your hand first"}}
	case errors.Is(err, model.ErrDominoNotInHand):
		return &httpError{http.StatusConflict, APIError{Code: CodeDominoNotInHand, Message: "Domino is not in your hand"}}
	case errors.Is(err, model.ErrDominoNotPlayable):
		return &httpError{http.StatusConflict, APIError{Code: CodeDominoNotPlayable, Message: "Domino cannot be played onto"}}
	case errors.Is(err, model.ErrDominoMismatch):
		return &httpError{http.StatusConflict, APIError{Code: CodeDominoMismatch, Message: "Dominoes do not match"}}
	case errors.Is(err, model.ErrNothingToUndo):
		return &httpError{http.StatusConflict, APIError{Code: CodeNothingToUndo, Message: "Only the last played domino can be taken back"}}
	case errors.Is(err, model.ErrTurnNotFinished):
		return &httpError{http.StatusConflict, APIError{Code: CodeTurnNotFinished, Message: "Move or draw before ending the turn"}}

	// Lookups
	case errors.Is(err, model.ErrDominoNotFound):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeDominoNotFound, Message: "Domino not found"}}
	case errors.Is(err, model.ErrRecordNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeRecordNotFound, Message: "Game record not found"}}

	// Malformed wire messages
	case errors.Is(err, protocol.ErrMalformed), errors.Is(err, protocol.ErrUnknownType), errors.Is(err, protocol.ErrUnsupportedVersion):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: err.Error()}}

	// The command was aborted and the player's view resent from the stored state
	case errors.Is(err, model.ErrInvariantViolation):
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeResyncRequired, Message: "Move aborted, state resynchronized"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Player identity required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
}
