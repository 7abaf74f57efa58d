package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/dominotrain/internal/model"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestAppWithDefaults(model.SessionConfig{RoundLimit: 1, InitialHandSize: 2})
	s.ctx = context.Background()
}

func (s *IntegrationSuite) play(id model.SessionID, p model.PlayerID, from, onto model.DominoID) {
	_, err := s.app.GameController.SelectDomino(s.ctx, id, p, from)
	s.Require().NoError(err)
	_, err = s.app.GameController.SelectDomino(s.ctx, id, p, onto)
	s.Require().NoError(err)
}

// Test: Complete single-round game from creation to the finished record
func (s *IntegrationSuite) TestCompleteGameFlow() {
	s.app.MockRandom.QueueID("GAME01")
	controller := s.app.GameController

	// Step 1: Create a session and let a second player in
	session, err := controller.CreateSession(s.ctx, "host", model.SessionConfig{})
	s.Require().NoError(err)
	s.Equal(model.SessionID("GAME01"), session.ID)
	_, err = controller.Join(s.ctx, session.ID, "guest")
	s.Require().NoError(err)

	// Step 2: Start and deal. The engine is 0-0; host holds 0-1 0-2, guest 0-3 0-4.
	session, err = controller.Start(s.ctx, session.ID, "host")
	s.Require().NoError(err)
	s.Equal(model.PhaseRoundStarting, session.Phase)
	s.Equal(model.DominoID(0), session.Station.Engine)

	_, err = controller.Draw(s.ctx, session.ID, "host")
	s.Require().NoError(err)
	_, err = controller.Draw(s.ctx, session.ID, "guest")
	s.Require().NoError(err)

	// Step 3: Group turn. Each lays a track; the host signals first and so goes first.
	s.play(session.ID, "host", 1, 0)
	s.play(session.ID, "guest", 3, 0)
	_, err = controller.EndTurn(s.ctx, session.ID, "host")
	s.Require().NoError(err)
	session, err = controller.EndTurn(s.ctx, session.ID, "guest")
	s.Require().NoError(err)

	s.Equal(model.PhasePlayerTurns, session.Phase)
	s.Equal([]model.PlayerID{"host", "guest"}, session.TurnOrder)
	s.Len(session.Station.Tracks, 2)
	s.Equal(3, session.Station.ChainLength())

	// Step 4: The host opens a second track with their last domino and wins the round
	s.play(session.ID, "host", 2, 0)
	session, err = controller.EndTurn(s.ctx, session.ID, "host")
	s.Require().NoError(err)

	s.Equal(model.PhaseGameOver, session.Phase)
	s.Require().Len(session.Scoreboard.Rounds, 1)
	round := session.Scoreboard.Rounds[0]
	s.False(round.Blocked)
	s.Equal([]model.PlayerID{"host"}, round.Winners)
	s.Equal(0, round.Scores["host"])
	s.Equal(4, round.Scores["guest"])

	// Step 5: The finished game is on record
	records, err := controller.ListGameRecords(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(session.ID, records[0].SessionID)
	s.Equal([]model.PlayerID{"host"}, records[0].Winners)
	s.Equal(map[model.PlayerID]int{"host": 0, "guest": 4}, records[0].FinalTotals)

	// Step 6: Nothing more can be played
	_, err = controller.Draw(s.ctx, session.ID, "guest")
	s.ErrorIs(err, model.ErrGameComplete)
}

// Test: Every stored snapshot keeps each domino in exactly one place
func (s *IntegrationSuite) TestStoredSnapshotsStayPartitioned() {
	controller := s.app.GameController

	session, err := controller.CreateSession(s.ctx, "host", model.SessionConfig{})
	s.Require().NoError(err)
	_, err = controller.Join(s.ctx, session.ID, "guest")
	s.Require().NoError(err)
	_, err = controller.Start(s.ctx, session.ID, "host")
	s.Require().NoError(err)

	check := func() {
		stored, err := s.app.Storage.GetSession(s.ctx, session.ID)
		s.Require().NoError(err)
		s.Require().NoError(s.app.Ledger.CheckPartition(stored))
	}

	_, err = controller.Draw(s.ctx, session.ID, "host")
	s.Require().NoError(err)
	check()
	s.play(session.ID, "host", 1, 0)
	check()
	_, err = controller.Undo(s.ctx, session.ID, "host", 1)
	s.Require().NoError(err)
	check()
}

// Test: A player leaving mid-game is skipped and the game carries on
func (s *IntegrationSuite) TestLeavingPlayerIsSkipped() {
	controller := s.app.GameController

	session, err := controller.CreateSession(s.ctx, "host", model.SessionConfig{})
	s.Require().NoError(err)
	for _, p := range []model.PlayerID{"guest", "third"} {
		_, err = controller.Join(s.ctx, session.ID, p)
		s.Require().NoError(err)
	}
	_, err = controller.Start(s.ctx, session.ID, "host")
	s.Require().NoError(err)
	for _, p := range []model.PlayerID{"host", "guest", "third"} {
		_, err = controller.Draw(s.ctx, session.ID, p)
		s.Require().NoError(err)
	}

	// third leaves before signalling; the barrier completes without them
	_, err = controller.EndTurn(s.ctx, session.ID, "host")
	s.Require().NoError(err)
	_, err = controller.EndTurn(s.ctx, session.ID, "guest")
	s.Require().NoError(err)
	session, err = controller.Disconnect(s.ctx, session.ID, "third")
	s.Require().NoError(err)

	s.Equal(model.PhasePlayerTurns, session.Phase)
	s.Equal([]model.PlayerID{"host", "guest"}, session.TurnOrder)

	view, err := controller.PlayerView(s.ctx, session.ID, "host")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("host"), view.ActivePlayer)
	s.Equal(model.PlayerStateAwaitingTurn, view.States["guest"])
}
