package model

import "time"

// SessionID uniquely identifies a game session
type SessionID string

// MaxPlayers bounds the number of players in a session
const MaxPlayers = 8

// MinPlayers is the number of players needed to start
const MinPlayers = 2

// Phase is the session-wide state of the turn-phase state machine
type Phase string

const (
	PhasePregame       Phase = "pregame"        // Players joining
	PhaseRoundStarting Phase = "round_starting" // Group turn, everyone acts at once
	PhasePlayerTurns   Phase = "player_turns"   // One player at a time
	PhaseRoundOver     Phase = "round_over"     // Waiting for everyone to be ready
	PhaseGameOver      Phase = "game_over"      // Terminal
)

// PlayerState is the state of the machine as seen by one player
type PlayerState string

const (
	PlayerStatePregame      PlayerState = "pregame"
	PlayerStateGroupTurn    PlayerState = "round_starting"
	PlayerStateTurnActive   PlayerState = "player_turn_active"
	PlayerStateMadeMove     PlayerState = "player_made_move"
	PlayerStateAwaitingTurn PlayerState = "player_awaiting_turn"
	PlayerStateRoundOver    PlayerState = "round_over"
	PlayerStateGameOver     PlayerState = "game_over"
)

// SessionConfig holds per-session rule settings
type SessionConfig struct {
	InitialHandSize int // 0 picks a size from the player count
	RoundLimit      int
	SkipRounds      int // pre-recorded empty rounds, for accelerated play
}

// ReadySet is a grow-only set of players that have signalled a barrier
type ReadySet map[PlayerID]bool

// Add records the player and returns false if they had already signalled
func (r ReadySet) Add(playerID PlayerID) bool {
	if r[playerID] {
		return false
	}
	r[playerID] = true
	return true
}

// Covers returns true if every given player has signalled
func (r ReadySet) Covers(players []PlayerID) bool {
	for _, playerID := range players {
		if !r[playerID] {
			return false
		}
	}
	return true
}

// Session is the authoritative state of one game
type Session struct {
	ID     SessionID
	Host   PlayerID
	Phase  Phase
	Config SessionConfig

	// Players in join order
	Players      []PlayerID
	Disconnected map[PlayerID]bool

	// Turn order and counter, fixed by the first group turn
	TurnOrder     []PlayerID
	TurnCounter   int
	TurnStartedAt time.Time

	RoundNumber int
	Scoreboard  Scoreboard

	// Domino locations
	BonePile     []DominoID
	Hands        map[PlayerID]*Hand
	Station      *Station
	TurnStations map[PlayerID]*Station
	Flipped      map[DominoID]bool

	TurnStatuses TurnStatuses
	Selected     map[PlayerID]DominoID

	// Barriers
	GroupTurnDone     ReadySet
	ReadyForNextRound ReadySet

	// Turns ended in a row without a domino played
	ConsecutivePasses int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPlayer returns true if the player joined the session
func (s *Session) HasPlayer(playerID PlayerID) bool {
	for _, p := range s.Players {
		if p == playerID {
			return true
		}
	}
	return false
}

// ConnectedPlayers returns the players still connected, in join order
func (s *Session) ConnectedPlayers() []PlayerID {
	connected := make([]PlayerID, 0, len(s.Players))
	for _, p := range s.Players {
		if !s.Disconnected[p] {
			connected = append(connected, p)
		}
	}
	return connected
}

// IsConnected returns true if the player joined and has not left
func (s *Session) IsConnected(playerID PlayerID) bool {
	return s.HasPlayer(playerID) && !s.Disconnected[playerID]
}

// TurnStationFor returns the player's provisional station
func (s *Session) TurnStationFor(playerID PlayerID) *Station {
	return s.TurnStations[playerID]
}

// PurposeOf reports where a domino lives. Provisional placements count as on
// the chain; pre-game sessions have every domino in the pile.
func (s *Session) PurposeOf(id DominoID) Purpose {
	if s.Station != nil {
		if id == s.Station.Engine {
			return PurposeEngine
		}
		if s.Station.Contains(id) {
			return PurposeOnChain
		}
	}
	for _, turn := range s.TurnStations {
		if turn != nil && turn.Contains(id) {
			return PurposeOnChain
		}
	}
	for _, hand := range s.Hands {
		if hand != nil && hand.Contains(id) {
			return PurposeInHand
		}
	}
	return PurposeInPile
}
