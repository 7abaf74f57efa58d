package game

import (
	"github.com/mcoot/dominotrain/internal/model"
)

func (s *ControllerSuite) TestPlayerViewShowsOnlyOwnProvisionalWork() {
	id := s.startDealt(model.SessionConfig{})
	s.play(id, "alice", 1, 0)

	alice, err := s.controller.PlayerView(s.ctx, id, "alice")
	s.Require().NoError(err)
	s.Equal([]model.DominoID{2, 3}, alice.Hand)
	s.Require().NotNil(alice.TurnStation)
	s.Require().Len(alice.TurnStation.Tracks, 1)
	s.Equal(model.PlayerStateGroupTurn, alice.State)
	s.True(alice.Status.HasMadeMoveThisTurn)
	s.Require().NotNil(alice.Status.LastPlayedDominoID)
	s.Equal(model.DominoID(1), *alice.Status.LastPlayedDominoID)
	s.Empty(alice.ActivePlayer)

	bob, err := s.controller.PlayerView(s.ctx, id, "bob")
	s.Require().NoError(err)
	s.Equal([]model.DominoID{4, 5, 6}, bob.Hand)
	s.Empty(bob.TurnStation.Tracks)
	s.Empty(bob.Session.Station.Tracks)
	s.False(bob.Status.HasMadeMoveThisTurn)
}

func (s *ControllerSuite) TestPlayerViewReportsSelectionAndActivePlayer() {
	id := s.toPlayerTurns()
	_, err := s.controller.SelectDomino(s.ctx, id, "alice", 2)
	s.Require().NoError(err)

	view, err := s.controller.PlayerView(s.ctx, id, "alice")
	s.Require().NoError(err)
	s.Require().NotNil(view.Selected)
	s.Equal(model.DominoID(2), *view.Selected)
	s.Equal(model.PlayerID("alice"), view.ActivePlayer)
	s.Equal(model.PlayerStateTurnActive, view.State)
	s.Equal(model.PlayerStateAwaitingTurn, view.States["bob"])
}

func (s *ControllerSuite) TestPlayerViewRejectsOutsiders() {
	id := s.newSession(model.SessionConfig{})

	_, err := s.controller.PlayerView(s.ctx, id, "mallory")
	s.ErrorIs(err, model.ErrNotInSession)

	_, err = s.controller.PlayerView(s.ctx, "missing", "alice")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestPlayerViewListsVisibleTiles() {
	id := s.startDealt(model.SessionConfig{})
	s.play(id, "alice", 1, 0)

	alice, err := s.controller.PlayerView(s.ctx, id, "alice")
	s.Require().NoError(err)
	purposes := make(map[model.DominoID]model.Purpose)
	for _, tile := range alice.Tiles {
		purposes[tile.ID] = tile.Purpose
	}
	s.Equal(map[model.DominoID]model.Purpose{
		0: model.PurposeEngine,
		1: model.PurposeOnChain,
		2: model.PurposeInHand,
		3: model.PurposeInHand,
	}, purposes)
	s.Equal(model.DominoID(0), alice.Tiles[0].ID)
	s.Equal(1, alice.Tiles[1].Pips())

	// bob sees the canonical station, where alice's move is not yet visible
	bob, err := s.controller.PlayerView(s.ctx, id, "bob")
	s.Require().NoError(err)
	s.Require().Len(bob.Tiles, 4)
	s.Equal(model.PurposeEngine, bob.Tiles[0].Purpose)
	for _, tile := range bob.Tiles[1:] {
		s.Equal(model.PurposeInHand, tile.Purpose)
		s.NotEqual(model.DominoID(1), tile.ID)
	}
}

func (s *ControllerSuite) TestPregameViewHasNoTiles() {
	id := s.newSession(model.SessionConfig{})
	view, err := s.controller.PlayerView(s.ctx, id, "alice")
	s.Require().NoError(err)
	s.Empty(view.Tiles)
}
