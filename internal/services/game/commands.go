package game

import "github.com/mcoot/dominotrain/internal/model"

// CommandKind identifies a request to the state machine
type CommandKind string

const (
	CommandJoin       CommandKind = "join"
	CommandStart      CommandKind = "start"
	CommandDraw       CommandKind = "draw"
	CommandSelect     CommandKind = "select_domino"
	CommandEndTurn    CommandKind = "end_turn"
	CommandUndo       CommandKind = "undo"
	CommandReady      CommandKind = "ready_for_next_round"
	CommandDisconnect CommandKind = "disconnect"
)

// Command is one validated-on-arrival request from a player
type Command struct {
	Kind     CommandKind
	PlayerID model.PlayerID
	DominoID model.DominoID // select_domino and undo only
}

// Publisher delivers state machine events to connected players
type Publisher interface {
	Publish(sessionID model.SessionID, events []model.Event)
}

// NopPublisher drops every event
type NopPublisher struct{}

// Publish does nothing
func (NopPublisher) Publish(model.SessionID, []model.Event) {}

// PublicTrackPolicy decides which tracks turn public when a player's turn
// ends. It receives the merged station before it becomes canonical and
// returns indices of tracks to mark.
type PublicTrackPolicy interface {
	TracksToOpen(session *model.Session, merged *model.Station, player model.PlayerID, played bool) []int
}

// NeverPublic leaves every track's public flag alone
type NeverPublic struct{}

// TracksToOpen returns nothing
func (NeverPublic) TracksToOpen(*model.Session, *model.Station, model.PlayerID, bool) []int {
	return nil
}
