package request

// CreateSessionRequest is the request body for creating a session.
// Zero fields take the server defaults.
type CreateSessionRequest struct {
	RoundLimit      int `json:"round_limit,omitempty"`
	InitialHandSize int `json:"initial_hand_size,omitempty"`
	SkipRounds      int `json:"skip_rounds,omitempty"`
}

// DominoRequest is the request body for selecting or taking back a domino
type DominoRequest struct {
	DominoID *int `json:"domino_id"`
}
