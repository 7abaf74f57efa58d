package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error. Server rejections keep their code and request id.
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		body := APIError{Message: err.Error()}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			body = *apiErr
		}
		data, _ := json.Marshal(map[string]any{"error": body})
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case PlayerView:
		o.printPlayerView(v)
	case RecordList:
		o.printRecords(v)
	case Record:
		o.printRecord(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Track response type
type Track struct {
	DominoIDs []int  `json:"domino_ids"`
	Owner     string `json:"owner,omitempty"`
	Public    bool   `json:"public"`
}

// Station response type
type Station struct {
	Engine int     `json:"engine"`
	Tracks []Track `json:"tracks"`
}

// Round response type
type Round struct {
	Number  int            `json:"number"`
	Scores  map[string]int `json:"scores"`
	Winners []string       `json:"winners"`
	Blocked bool           `json:"blocked"`
}

// Scoreboard response type
type Scoreboard struct {
	Rounds []Round        `json:"rounds"`
	Totals map[string]int `json:"totals"`
}

// Session response type
type Session struct {
	ID            string     `json:"id"`
	Host          string     `json:"host"`
	Phase         string     `json:"phase"`
	Players       []string   `json:"players"`
	Disconnected  []string   `json:"disconnected,omitempty"`
	TurnOrder     []string   `json:"turn_order,omitempty"`
	Round         int        `json:"round"`
	BonePileCount int        `json:"bone_pile_count"`
	Scoreboard    Scoreboard `json:"scoreboard"`
}

// TurnStatus response type
type TurnStatus struct {
	HasMadeMove   bool `json:"has_made_move"`
	HasAddedTrack bool `json:"has_added_track"`
	HasDrawn      bool `json:"has_drawn"`
	LastPlayedID  *int `json:"last_played_id"`
}

// PlayerView response type
type PlayerView struct {
	Session      Session           `json:"session"`
	PlayerID     string            `json:"player_id"`
	State        string            `json:"state"`
	States       map[string]string `json:"states"`
	ActivePlayer string            `json:"active_player,omitempty"`
	Hand         []int             `json:"hand"`
	Selected     *int              `json:"selected"`
	Station      *Station          `json:"station"`
	TurnStation  *Station          `json:"turn_station,omitempty"`
	Flipped      []int             `json:"flipped"`
	Tiles        []Tile            `json:"tiles"`
	Status       TurnStatus        `json:"status"`
}

// Record response type
type Record struct {
	SessionID   string         `json:"session_id"`
	Players     []string       `json:"players"`
	Rounds      []Round        `json:"rounds"`
	FinalTotals map[string]int `json:"final_totals"`
	Winners     []string       `json:"winners"`
}

// RecordList response type
type RecordList struct {
	Records []Record `json:"records"`
}

// HealthResult response type
type HealthResult struct {
	Status      string `json:"status"`
	Sessions    int    `json:"sessions"`
	PushHubs    int    `json:"push_hubs"`
	PushClients int    `json:"push_clients"`
}

// Tile response type
type Tile struct {
	ID      int    `json:"id"`
	Top     int    `json:"top"`
	Bottom  int    `json:"bottom"`
	Flipped bool   `json:"flipped,omitempty"`
	Purpose string `json:"purpose"`
}

func (t Tile) String() string {
	if t.Flipped {
		return fmt.Sprintf("%d[%d|%d]", t.ID, t.Bottom, t.Top)
	}
	return fmt.Sprintf("%d[%d|%d]", t.ID, t.Top, t.Bottom)
}

func (o *Output) printPlayerView(v PlayerView) {
	s := v.Session
	fmt.Printf("Session: %s\n", s.ID)
	fmt.Printf("Phase: %s\n", s.Phase)
	if s.Round > 0 {
		fmt.Printf("Round: %d\n", s.Round)
	}
	fmt.Printf("Host: %s\n", s.Host)
	fmt.Printf("Players (%d):\n", len(s.Players))
	for _, p := range s.Players {
		tags := []string{v.States[p]}
		if p == v.PlayerID {
			tags = append(tags, "you")
		}
		if p == v.ActivePlayer {
			tags = append(tags, "active")
		}
		for _, d := range s.Disconnected {
			if d == p {
				tags = append(tags, "left")
			}
		}
		fmt.Printf("  - %s [%s]\n", p, strings.Join(tags, ", "))
	}

	if v.Station != nil {
		fmt.Println("\nStation:")
		o.printStation(v.Station, v.Flipped)
	}
	if v.TurnStation != nil && !sameStation(v.Station, v.TurnStation) {
		fmt.Println("\nYour provisional station:")
		o.printStation(v.TurnStation, v.Flipped)
	}

	if s.Phase != "pregame" {
		fmt.Printf("\nHand: %s\n", handFaces(v))
		if v.Selected != nil {
			fmt.Printf("Selected: %d\n", *v.Selected)
		}
		fmt.Printf("Bone pile: %d\n", s.BonePileCount)
	}

	if len(s.Scoreboard.Rounds) > 0 {
		fmt.Println("\nScores:")
		o.printTotals(s.Scoreboard.Totals)
	}
}

func (o *Output) printStation(st *Station, flipped []int) {
	isFlipped := make(map[int]bool, len(flipped))
	for _, id := range flipped {
		isFlipped[id] = true
	}

	fmt.Printf("  Engine: %d\n", st.Engine)
	for i, t := range st.Tracks {
		ids := make([]string, len(t.DominoIDs))
		for j, id := range t.DominoIDs {
			ids[j] = fmt.Sprintf("%d", id)
			if isFlipped[id] {
				ids[j] += "*"
			}
		}
		owner := t.Owner
		if owner == "" {
			owner = "-"
		}
		publicStr := ""
		if t.Public {
			publicStr = " (public)"
		}
		fmt.Printf("  %d [%s]%s: %s\n", i, owner, publicStr, strings.Join(ids, " "))
	}
}

func (o *Output) printTotals(totals map[string]int) {
	players := make([]string, 0, len(totals))
	for p := range totals {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		if totals[players[i]] != totals[players[j]] {
			return totals[players[i]] < totals[players[j]]
		}
		return players[i] < players[j]
	})
	for _, p := range players {
		fmt.Printf("  %s: %d\n", p, totals[p])
	}
}

func (o *Output) printRecords(l RecordList) {
	if len(l.Records) == 0 {
		fmt.Println("No finished games")
		return
	}
	for _, r := range l.Records {
		fmt.Printf("Game %s: %d rounds, won by %s\n", r.SessionID, len(r.Rounds), strings.Join(r.Winners, ", "))
		o.printTotals(r.FinalTotals)
	}
}

func (o *Output) printRecord(r Record) {
	fmt.Printf("Game %s (%s)\n", r.SessionID, strings.Join(r.Players, ", "))
	for _, round := range r.Rounds {
		blocked := ""
		if round.Blocked {
			blocked = " (blocked)"
		}
		fmt.Printf("Round %d%s, won by %s\n", round.Number, blocked, strings.Join(round.Winners, ", "))
		o.printTotals(round.Scores)
	}
	fmt.Printf("Final, won by %s\n", strings.Join(r.Winners, ", "))
	o.printTotals(r.FinalTotals)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	fmt.Printf("Open sessions: %d\n", h.Sessions)
	fmt.Printf("Push: %d hubs, %d connections\n", h.PushHubs, h.PushClients)
}

// handFaces shows the pips of each domino in hand, falling back to bare ids
// for servers that send no tiles
func handFaces(v PlayerView) string {
	var faces []string
	for _, t := range v.Tiles {
		if t.Purpose == "in_hand" {
			faces = append(faces, t.String())
		}
	}
	if len(faces) == 0 {
		return joinIDs(v.Hand)
	}
	return strings.Join(faces, " ")
}

func joinIDs(ids []int) string {
	if len(ids) == 0 {
		return "(empty)"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, " ")
}

func sameStation(a, b *Station) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Engine != b.Engine || len(a.Tracks) != len(b.Tracks) {
		return false
	}
	for i := range a.Tracks {
		if len(a.Tracks[i].DominoIDs) != len(b.Tracks[i].DominoIDs) {
			return false
		}
	}
	return true
}
