package model

// TurnStatus tracks what a player has done during the current turn
type TurnStatus struct {
	HasMadeMoveThisTurn      bool
	HasAddedNewTrackThisTurn bool
	HasEverLaidFirstTrack    bool // survives turn and round resets
	HasDrawnThisTurn         bool
	LastPlayedDominoID       *DominoID
}

// IsLastPlayed returns true if the domino is the one that can be taken back
func (t *TurnStatus) IsLastPlayed(id DominoID) bool {
	return t.LastPlayedDominoID != nil && *t.LastPlayedDominoID == id
}

// TurnStatuses holds the turn status of every player in a session
type TurnStatuses map[PlayerID]*TurnStatus

// Get returns the player's status, creating it on first use
func (s TurnStatuses) Get(playerID PlayerID) *TurnStatus {
	status, ok := s[playerID]
	if !ok {
		status = &TurnStatus{}
		s[playerID] = status
	}
	return status
}

// RegisterMove records a domino appended by the player
func (s TurnStatuses) RegisterMove(playerID PlayerID, dominoID DominoID) {
	status := s.Get(playerID)
	status.HasMadeMoveThisTurn = true
	id := dominoID
	status.LastPlayedDominoID = &id
}

// RegisterNewTrack records a domino that started a new track
func (s TurnStatuses) RegisterNewTrack(playerID PlayerID, dominoID DominoID) {
	status := s.Get(playerID)
	status.HasAddedNewTrackThisTurn = true
	status.HasEverLaidFirstTrack = true
	s.RegisterMove(playerID, dominoID)
}

// RegisterDraw records that the player drew from the bone pile this turn
func (s TurnStatuses) RegisterDraw(playerID PlayerID) {
	s.Get(playerID).HasDrawnThisTurn = true
}

// ResetForNewTurn clears the per-turn flags of a player
func (s TurnStatuses) ResetForNewTurn(playerID PlayerID) {
	status := s.Get(playerID)
	*status = TurnStatus{HasEverLaidFirstTrack: status.HasEverLaidFirstTrack}
}

// ResetAll clears the per-turn flags of every player
func (s TurnStatuses) ResetAll() {
	for playerID := range s {
		s.ResetForNewTurn(playerID)
	}
}
