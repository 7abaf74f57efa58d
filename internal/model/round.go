package model

import "time"

// RoundLimit caps the number of rounds in a game
const RoundLimit = 12

// Round is the immutable record of a finished round
type Round struct {
	Number  int
	Scores  map[PlayerID]int // remaining pips per player
	Winners []PlayerID
	Blocked bool // ended because nobody could play
	EndedAt time.Time
}

// Scoreboard holds the round history and cumulative totals of a game
type Scoreboard struct {
	Rounds []Round
	Totals map[PlayerID]int
}

// NewScoreboard creates an empty scoreboard
func NewScoreboard() Scoreboard {
	return Scoreboard{
		Rounds: []Round{},
		Totals: make(map[PlayerID]int),
	}
}

// CompletedRounds returns the number of rounds recorded so far
func (s *Scoreboard) CompletedRounds() int {
	return len(s.Rounds)
}
