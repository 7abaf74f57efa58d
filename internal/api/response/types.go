package response

import (
	"sort"
	"time"

	"github.com/mcoot/dominotrain/internal/model"
	"github.com/mcoot/dominotrain/internal/protocol"
	"github.com/mcoot/dominotrain/internal/services/game"
)

// SessionConfig represents per-session rule settings
type SessionConfig struct {
	InitialHandSize int `json:"initial_hand_size"`
	RoundLimit      int `json:"round_limit"`
	SkipRounds      int `json:"skip_rounds"`
}

// Round represents a finished round
type Round struct {
	Number  int            `json:"number"`
	Scores  map[string]int `json:"scores"`
	Winners []string       `json:"winners"`
	Blocked bool           `json:"blocked"`
}

// RoundFromModel converts model.Round
func RoundFromModel(r model.Round) Round {
	return Round{
		Number:  r.Number,
		Scores:  protocol.Scores(r.Scores),
		Winners: protocol.Players(r.Winners),
		Blocked: r.Blocked,
	}
}

// Scoreboard represents the round history and totals of a game
type Scoreboard struct {
	Rounds []Round        `json:"rounds"`
	Totals map[string]int `json:"totals"`
}

// ScoreboardFromModel converts model.Scoreboard
func ScoreboardFromModel(s model.Scoreboard) Scoreboard {
	rounds := make([]Round, len(s.Rounds))
	for i, r := range s.Rounds {
		rounds[i] = RoundFromModel(r)
	}
	return Scoreboard{
		Rounds: rounds,
		Totals: protocol.Scores(s.Totals),
	}
}

// Session represents the public state of a session
type Session struct {
	ID            string        `json:"id"`
	Host          string        `json:"host"`
	Phase         string        `json:"phase"`
	Config        SessionConfig `json:"config"`
	Players       []string      `json:"players"`
	Disconnected  []string      `json:"disconnected,omitempty"`
	TurnOrder     []string      `json:"turn_order,omitempty"`
	Round         int           `json:"round"`
	BonePileCount int           `json:"bone_pile_count"`
	Scoreboard    Scoreboard    `json:"scoreboard"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// SessionFromModel converts model.Session. Hands and provisional stations
// are left out; they belong in a PlayerView.
func SessionFromModel(s *model.Session) Session {
	var disconnected []string
	for _, p := range s.Players {
		if s.Disconnected[p] {
			disconnected = append(disconnected, string(p))
		}
	}
	return Session{
		ID:    string(s.ID),
		Host:  string(s.Host),
		Phase: string(s.Phase),
		Config: SessionConfig{
			InitialHandSize: s.Config.InitialHandSize,
			RoundLimit:      s.Config.RoundLimit,
			SkipRounds:      s.Config.SkipRounds,
		},
		Players:       protocol.Players(s.Players),
		Disconnected:  disconnected,
		TurnOrder:     protocol.Players(s.TurnOrder),
		Round:         s.RoundNumber,
		BonePileCount: len(s.BonePile),
		Scoreboard:    ScoreboardFromModel(s.Scoreboard),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// TurnStatus represents what the player has done this turn
type TurnStatus struct {
	HasMadeMove     bool `json:"has_made_move"`
	HasAddedTrack   bool `json:"has_added_track"`
	HasDrawn        bool `json:"has_drawn"`
	LastPlayedID    *int `json:"last_played_id"`
	HasLaidAnyTrack bool `json:"has_laid_any_track"`
}

// PlayerView is a session as the calling player sees it
type PlayerView struct {
	Session      Session               `json:"session"`
	PlayerID     string                `json:"player_id"`
	State        string                `json:"state"`
	States       map[string]string     `json:"states"`
	ActivePlayer string                `json:"active_player,omitempty"`
	Hand         []int                 `json:"hand"`
	Selected     *int                  `json:"selected"`
	Station      *protocol.StationView `json:"station"`
	TurnStation  *protocol.StationView `json:"turn_station,omitempty"`
	Flipped      []int                 `json:"flipped"`
	Tiles        []Tile                `json:"tiles"`
	Status       TurnStatus            `json:"status"`
}

// Tile is a visible domino with its faces and where it lives
type Tile struct {
	ID      int    `json:"id"`
	Top     int    `json:"top"`
	Bottom  int    `json:"bottom"`
	Flipped bool   `json:"flipped,omitempty"`
	Purpose string `json:"purpose"`
}

// PlayerViewFromGame converts game.PlayerView
func PlayerViewFromGame(v *game.PlayerView) PlayerView {
	states := make(map[string]string, len(v.States))
	for p, state := range v.States {
		states[string(p)] = string(state)
	}

	flipped := make([]int, 0, len(v.Flipped))
	for id := range v.Flipped {
		flipped = append(flipped, int(id))
	}
	sort.Ints(flipped)

	status := TurnStatus{
		HasMadeMove:     v.Status.HasMadeMoveThisTurn,
		HasAddedTrack:   v.Status.HasAddedNewTrackThisTurn,
		HasDrawn:        v.Status.HasDrawnThisTurn,
		HasLaidAnyTrack: v.Status.HasEverLaidFirstTrack,
	}
	if v.Status.LastPlayedDominoID != nil {
		id := int(*v.Status.LastPlayedDominoID)
		status.LastPlayedID = &id
	}

	tiles := make([]Tile, len(v.Tiles))
	for i, t := range v.Tiles {
		tiles[i] = Tile{ID: int(t.ID), Top: t.Top, Bottom: t.Bottom, Flipped: t.Flipped, Purpose: string(t.Purpose)}
	}

	var selected *int
	if v.Selected != nil {
		id := int(*v.Selected)
		selected = &id
	}

	return PlayerView{
		Session:      SessionFromModel(v.Session),
		PlayerID:     string(v.PlayerID),
		State:        string(v.State),
		States:       states,
		ActivePlayer: string(v.ActivePlayer),
		Hand:         protocol.IDs(v.Hand),
		Selected:     selected,
		Station:      protocol.StationFromModel(v.Session.Station),
		TurnStation:  protocol.StationFromModel(v.TurnStation),
		Flipped:      flipped,
		Tiles:        tiles,
		Status:       status,
	}
}

// GameRecord represents a finished game
type GameRecord struct {
	SessionID   string         `json:"session_id"`
	Players     []string       `json:"players"`
	Rounds      []Round        `json:"rounds"`
	FinalTotals map[string]int `json:"final_totals"`
	Winners     []string       `json:"winners"`
	CompletedAt time.Time      `json:"completed_at"`
}

// GameRecordFromModel converts model.GameRecord
func GameRecordFromModel(r *model.GameRecord) GameRecord {
	rounds := make([]Round, len(r.Rounds))
	for i, round := range r.Rounds {
		rounds[i] = RoundFromModel(round)
	}
	return GameRecord{
		SessionID:   string(r.SessionID),
		Players:     protocol.Players(r.Players),
		Rounds:      rounds,
		FinalTotals: protocol.Scores(r.FinalTotals),
		Winners:     protocol.Players(r.Winners),
		CompletedAt: r.CompletedAt,
	}
}

// GameRecordList is the response for listing finished games
type GameRecordList struct {
	Records []GameRecord `json:"records"`
}

// Health reports liveness along with the open sessions and push connections
type Health struct {
	Status      string `json:"status"`
	Sessions    int    `json:"sessions"`
	PushHubs    int    `json:"push_hubs"`
	PushClients int    `json:"push_clients"`
}
