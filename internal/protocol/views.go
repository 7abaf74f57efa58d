package protocol

import (
	"fmt"
	"sort"

	"github.com/mcoot/dominotrain/internal/model"
)

// TrackView is a track on the wire
type TrackView struct {
	DominoIDs []int  `json:"domino_ids"`
	Owner     string `json:"owner,omitempty"`
	Public    bool   `json:"public"`
}

// StationView is a station on the wire
type StationView struct {
	Engine int         `json:"engine"`
	Tracks []TrackView `json:"tracks"`
}

// StationFromModel converts a station for the wire
func StationFromModel(st *model.Station) *StationView {
	if st == nil {
		return nil
	}
	view := &StationView{
		Engine: int(st.Engine),
		Tracks: make([]TrackView, len(st.Tracks)),
	}
	for i, track := range st.Tracks {
		tv := TrackView{DominoIDs: IDs(track.DominoIDs), Public: track.Public}
		if track.Owner != nil {
			tv.Owner = string(*track.Owner)
		}
		view.Tracks[i] = tv
	}
	return view
}

// StationUpdated is the payload of station_updated
type StationUpdated struct {
	Station *StationView `json:"station"`
	NewIDs  []int        `json:"new_ids"`
	Flipped []int        `json:"flipped"`
}

// TurnChanged is the payload of turn_changed
type TurnChanged struct {
	ActivePlayer string            `json:"active_player,omitempty"`
	Phase        string            `json:"phase"`
	Round        int               `json:"round"`
	States       map[string]string `json:"states"`
}

// HandUpdated is the payload of hand_updated
type HandUpdated struct {
	DominoIDs     []int `json:"domino_ids"`
	Drawn         []int `json:"drawn,omitempty"`
	BonePileCount int   `json:"bone_pile_count"`
}

// SelectionChanged is the payload of selection_changed
type SelectionChanged struct {
	DominoID *int `json:"domino_id"`
}

// MoveApplied is the payload of move_applied
type MoveApplied struct {
	PlayerID   string `json:"player_id"`
	DominoID   int    `json:"domino_id"`
	TrackIndex int    `json:"track_index"`
	NewTrack   bool   `json:"new_track"`
	Flipped    bool   `json:"flipped"`
}

// MoveUndone is the payload of move_undone
type MoveUndone struct {
	PlayerID string `json:"player_id"`
	DominoID int    `json:"domino_id"`
}

// PlayerJoined is the payload of player_joined
type PlayerJoined struct {
	PlayerID string   `json:"player_id"`
	Players  []string `json:"players"`
}

// PlayerDisconnected is the payload of player_disconnected
type PlayerDisconnected struct {
	PlayerID  string   `json:"player_id"`
	Remaining []string `json:"remaining"`
}

// SessionStarted is the payload of session_started
type SessionStarted struct {
	Players []string `json:"players"`
	Round   int      `json:"round"`
	Engine  int      `json:"engine"`
}

// SessionClosed is the payload of session_closed
type SessionClosed struct {
	Phase string `json:"phase"`
}

// PlayerSignalled is the payload of player_signalled
type PlayerSignalled struct {
	PlayerID string `json:"player_id"`
	Barrier  string `json:"barrier"`
	Ready    int    `json:"ready"`
	Required int    `json:"required"`
}

// RoundEnded is the payload of round_ended
type RoundEnded struct {
	Round   int            `json:"round"`
	Blocked bool           `json:"blocked"`
	Winners []string       `json:"winners"`
	Scores  map[string]int `json:"scores"`
	Totals  map[string]int `json:"totals"`
}

// GameEnded is the payload of game_ended
type GameEnded struct {
	Winners []string       `json:"winners"`
	Scores  map[string]int `json:"scores"`
	Totals  map[string]int `json:"totals"`
}

// FromEvent converts a state machine event into a push envelope
func FromEvent(event model.Event) (*Envelope, error) {
	msgType, payload, err := convert(event.Payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", event.Type, err)
	}
	return NewEnvelope(msgType, "", payload)
}

func convert(payload any) (MessageType, any, error) {
	switch p := payload.(type) {
	case model.StationUpdatedPayload:
		return TypeStationUpdated, StationUpdated{
			Station: StationFromModel(p.Station),
			NewIDs:  IDs(p.NewDominoIDs),
			Flipped: flippedIDs(p.Flipped),
		}, nil
	case model.TurnChangedPayload:
		states := make(map[string]string, len(p.States))
		for playerID, state := range p.States {
			states[string(playerID)] = string(state)
		}
		return TypeTurnChanged, TurnChanged{
			ActivePlayer: string(p.ActivePlayer),
			Phase:        string(p.Phase),
			Round:        p.Round,
			States:       states,
		}, nil
	case model.HandUpdatedPayload:
		return TypeHandUpdated, HandUpdated{
			DominoIDs:     IDs(p.DominoIDs),
			Drawn:         IDs(p.Drawn),
			BonePileCount: p.BonePileCount,
		}, nil
	case model.SelectionChangedPayload:
		var id *int
		if p.DominoID != nil {
			v := int(*p.DominoID)
			id = &v
		}
		return TypeSelectionChanged, SelectionChanged{DominoID: id}, nil
	case model.MoveAppliedPayload:
		return TypeMoveApplied, MoveApplied{
			PlayerID:   string(p.PlayerID),
			DominoID:   int(p.DominoID),
			TrackIndex: p.TrackIndex,
			NewTrack:   p.NewTrack,
			Flipped:    p.Flipped,
		}, nil
	case model.MoveUndonePayload:
		return TypeMoveUndone, MoveUndone{PlayerID: string(p.PlayerID), DominoID: int(p.DominoID)}, nil
	case model.PlayerJoinedPayload:
		return TypePlayerJoined, PlayerJoined{PlayerID: string(p.PlayerID), Players: Players(p.Players)}, nil
	case model.PlayerDisconnectedPayload:
		return TypePlayerDisconnected, PlayerDisconnected{
			PlayerID:  string(p.PlayerID),
			Remaining: Players(p.Remaining),
		}, nil
	case model.SessionStartedPayload:
		return TypeSessionStarted, SessionStarted{
			Players: Players(p.Players),
			Round:   p.Round,
			Engine:  int(p.Engine),
		}, nil
	case model.SessionClosedPayload:
		return TypeSessionClosed, SessionClosed{Phase: string(p.Phase)}, nil
	case model.PlayerSignalledPayload:
		return TypePlayerSignalled, PlayerSignalled{
			PlayerID: string(p.PlayerID),
			Barrier:  string(p.Barrier),
			Ready:    p.Ready,
			Required: p.Required,
		}, nil
	case model.RoundEndedPayload:
		return TypeRoundEnded, RoundEnded{
			Round:   p.Round.Number,
			Blocked: p.Round.Blocked,
			Winners: Players(p.Winners),
			Scores:  Scores(p.Scores),
			Totals:  Scores(p.Totals),
		}, nil
	case model.GameEndedPayload:
		return TypeGameEnded, GameEnded{
			Winners: Players(p.Winners),
			Scores:  Scores(p.Scores),
			Totals:  Scores(p.Totals),
		}, nil
	default:
		return "", nil, fmt.Errorf("%w: payload %T", ErrUnknownType, payload)
	}
}

// IDs converts domino ids for the wire
func IDs(in []model.DominoID) []int {
	out := make([]int, len(in))
	for i, id := range in {
		out[i] = int(id)
	}
	return out
}

// Players converts player ids for the wire
func Players(in []model.PlayerID) []string {
	out := make([]string, len(in))
	for i, p := range in {
		out[i] = string(p)
	}
	return out
}

// Scores converts a per-player score map for the wire
func Scores(in map[model.PlayerID]int) map[string]int {
	out := make(map[string]int, len(in))
	for p, score := range in {
		out[string(p)] = score
	}
	return out
}

func flippedIDs(flipped map[model.DominoID]bool) []int {
	out := []int{}
	for id, f := range flipped {
		if f {
			out = append(out, int(id))
		}
	}
	sort.Ints(out)
	return out
}
