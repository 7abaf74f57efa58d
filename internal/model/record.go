package model

import "time"

// GameRecord is a lightweight summary of a finished game
type GameRecord struct {
	SessionID   SessionID
	Players     []PlayerID
	Rounds      []Round
	FinalTotals map[PlayerID]int
	Winners     []PlayerID
	CompletedAt time.Time
}
