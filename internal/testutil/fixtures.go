package testutil

import (
	"time"

	"github.com/mcoot/dominotrain/internal/model"
)

// SampleSession returns a mid-round two player session for storage tests
func SampleSession(id model.SessionID) *model.Session {
	station := model.NewStation(0)
	station.AddTrack(1, model.PlayerPtr("alice"))
	station.AddTrack(2, nil)

	hand := model.NewHand()
	hand.Add(5)
	hand.Add(7)
	hand.HasDrawnInitial = true

	last := model.DominoID(2)
	return &model.Session{
		ID:          id,
		Host:        "alice",
		Phase:       model.PhasePlayerTurns,
		Config:      model.SessionConfig{RoundLimit: 12},
		Players:     []model.PlayerID{"alice", "bob"},
		TurnOrder:   []model.PlayerID{"bob", "alice"},
		TurnCounter: 3,
		RoundNumber: 1,
		Scoreboard:  model.NewScoreboard(),
		BonePile:    []model.DominoID{3, 4},
		Hands: map[model.PlayerID]*model.Hand{
			"alice": hand,
			"bob":   model.NewHand(),
		},
		Station: station,
		TurnStations: map[model.PlayerID]*model.Station{
			"alice": station.Clone(),
		},
		Flipped: map[model.DominoID]bool{2: true},
		TurnStatuses: model.TurnStatuses{
			"bob": {HasMadeMoveThisTurn: true, LastPlayedDominoID: &last},
		},
		GroupTurnDone: model.ReadySet{"alice": true, "bob": true},
		CreatedAt:     time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2026, 1, 1, 12, 5, 0, 0, time.UTC),
	}
}

// SampleRecord returns a finished game record
func SampleRecord(id model.SessionID, completedAt time.Time) *model.GameRecord {
	return &model.GameRecord{
		SessionID:   id,
		Players:     []model.PlayerID{"alice", "bob"},
		FinalTotals: map[model.PlayerID]int{"alice": 4, "bob": 20},
		Winners:     []model.PlayerID{"alice"},
		CompletedAt: completedAt,
	}
}
