package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	// Session events
	EventPlayerJoined       EventType = "player_joined"
	EventPlayerDisconnected EventType = "player_disconnected"
	EventSessionStarted     EventType = "session_started"
	EventSessionClosed      EventType = "session_closed"

	// Turn events
	EventStationUpdated   EventType = "station_updated"
	EventTurnChanged      EventType = "turn_changed"
	EventHandUpdated      EventType = "hand_updated"
	EventSelectionChanged EventType = "selection_changed"
	EventMoveApplied      EventType = "move_applied"
	EventMoveUndone       EventType = "move_undone"
	EventPlayerSignalled  EventType = "player_signalled"

	// Round events
	EventRoundEnded EventType = "round_ended"
	EventGameEnded  EventType = "game_ended"
)

// Event is a notification produced by the state machine
type Event struct {
	Type      EventType
	Timestamp time.Time
	SessionID SessionID
	PlayerID  PlayerID // The player who triggered the event
	Recipient PlayerID // Empty to notify every player
	Payload   any      // Type-specific data
}

// PlayerJoinedPayload contains data for player joined events
type PlayerJoinedPayload struct {
	PlayerID PlayerID
	Players  []PlayerID
}

// PlayerDisconnectedPayload contains data for player disconnected events
type PlayerDisconnectedPayload struct {
	PlayerID  PlayerID
	Remaining []PlayerID
}

// SessionStartedPayload contains data for session started events
type SessionStartedPayload struct {
	Players []PlayerID
	Round   int
	Engine  DominoID
}

// SessionClosedPayload is sent when the last connected player has left and
// the session is discarded
type SessionClosedPayload struct {
	Phase Phase // phase the session was in when it closed
}

// StationUpdatedPayload carries the canonical station after a merge
type StationUpdatedPayload struct {
	Station      *Station
	NewDominoIDs []DominoID
	Flipped      map[DominoID]bool
}

// TurnChangedPayload announces whose turn it is
type TurnChangedPayload struct {
	ActivePlayer PlayerID // Empty during the group turn
	Phase        Phase
	Round        int
	States       map[PlayerID]PlayerState
}

// HandUpdatedPayload is sent to a single player after their hand changes
type HandUpdatedPayload struct {
	DominoIDs     []DominoID
	Drawn         []DominoID
	BonePileCount int
}

// SelectionChangedPayload is sent to a single player when their selection changes
type SelectionChangedPayload struct {
	DominoID *DominoID // nil when nothing is selected
}

// MoveAppliedPayload describes a domino placed on a provisional station
type MoveAppliedPayload struct {
	PlayerID   PlayerID
	DominoID   DominoID
	TrackIndex int
	NewTrack   bool
	Flipped    bool
}

// MoveUndonePayload describes a domino taken back into a hand
type MoveUndonePayload struct {
	PlayerID PlayerID
	DominoID DominoID
}

// PlayerSignalledPayload reports progress towards a barrier
type PlayerSignalledPayload struct {
	PlayerID PlayerID
	Barrier  Phase
	Ready    int
	Required int
}

// RoundEndedPayload contains data for round ended events
type RoundEndedPayload struct {
	Round   Round
	Winners []PlayerID
	Scores  map[PlayerID]int
	Totals  map[PlayerID]int
}

// GameEndedPayload contains data for game ended events
type GameEndedPayload struct {
	Winners []PlayerID
	Scores  map[PlayerID]int // last round
	Totals  map[PlayerID]int
}
