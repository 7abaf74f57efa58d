package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionFull         = errors.New("session is full")
	ErrAlreadyInSession    = errors.New("player is already in session")
	ErrNotInSession        = errors.New("player is not in session")
	ErrNotHost             = errors.New("player is not the host")
	ErrInsufficientPlayers = errors.New("insufficient players to start game")
	ErrGameComplete        = errors.New("game is already complete")

	// Protocol violations: rejected with no state change
	ErrActionNotAllowed    = errors.New("action not allowed in current phase")
	ErrNotPlayerTurn       = errors.New("not this player's turn")
	ErrAlreadySignaled     = errors.New("player has already signalled")
	ErrAlreadyMoved        = errors.New("player has already moved this turn")
	ErrAlreadyDrawn        = errors.New("player has already drawn this turn")
	ErrTrackAlreadyAdded   = errors.New("player has already started a track this turn")
	ErrStationFull         = errors.New("station has no room for another track")
	ErrTrackNotOwned       = errors.New("track belongs to another player")
	ErrNoDominoSelected    = errors.New("no domino selected")
	ErrDominoNotInHand     = errors.New("domino is not in player's hand")
	ErrDominoNotPlayable   = errors.New("domino is not a legal target")
	ErrDominoMismatch      = errors.New("dominoes do not match")
	ErrNothingToUndo       = errors.New("domino is not the last one played")
	ErrTurnNotFinished     = errors.New("player must move or draw before ending the turn")
	ErrInvalidRoundSkip    = errors.New("round skip exceeds round limit")
	ErrInvalidSessionSetup = errors.New("invalid session configuration")

	// Domino errors
	ErrDominoNotFound = errors.New("domino not found")

	// Invariant violations: the operation is aborted and canonical state is left untouched
	ErrInvariantViolation = errors.New("invariant violation")

	// Record errors
	ErrRecordNotFound = errors.New("game record not found")
)
