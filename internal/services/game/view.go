package game

import (
	"context"
	"log/slog"

	"github.com/mcoot/dominotrain/internal/model"
)

// PlayerView is a session as one player may see it: canonical state for
// everyone, plus the player's own hand, provisional station and turn status.
// Other players' hands and provisional stations are never included.
type PlayerView struct {
	Session      *model.Session
	PlayerID     model.PlayerID
	Hand         []model.DominoID
	TurnStation  *model.Station
	Flipped      map[model.DominoID]bool
	Status       model.TurnStatus
	Selected     *model.DominoID
	State        model.PlayerState
	States       map[model.PlayerID]model.PlayerState
	ActivePlayer model.PlayerID
	Tiles        []Tile
}

// Tile is a domino the player can see, with where it currently lives
type Tile struct {
	model.Domino
	Flipped bool
	Purpose model.Purpose
}

// PlayerView loads a session and projects it for one of its players
func (c *Controller) PlayerView(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID) (*PlayerView, error) {
	session, err := c.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasPlayer(playerID) {
		return nil, model.ErrNotInSession
	}
	return c.project(session, playerID), nil
}

func (c *Controller) project(s *model.Session, p model.PlayerID) *PlayerView {
	view := &PlayerView{
		Session:  s,
		PlayerID: p,
		Hand:     []model.DominoID{},
		Flipped:  make(map[model.DominoID]bool),
		State:    c.playerState(s, p),
		States:   c.PlayerStates(s),
	}
	if hand := s.Hands[p]; hand != nil {
		view.Hand = append(view.Hand, hand.DominoIDs...)
	}
	if status, ok := s.TurnStatuses[p]; ok {
		view.Status = *status
	}
	if id, ok := s.Selected[p]; ok {
		view.Selected = &id
	}
	if s.Phase == model.PhasePlayerTurns {
		view.ActivePlayer, _ = c.orchestrator.CurrentPlayer(s)
	}

	// The provisional station only differs from canon while the player is acting
	if turn := s.TurnStations[p]; turn != nil {
		view.TurnStation = turn.Clone()
	}
	visible := view.TurnStation
	if visible == nil {
		visible = s.Station
	}
	if visible != nil {
		for _, id := range visible.DominoIDs() {
			if s.Flipped[id] {
				view.Flipped[id] = true
			}
		}
	}
	view.Tiles = c.tiles(s, visible, view.Hand)
	return view
}

// tiles lists the engine, the visible chain and the hand in that order
func (c *Controller) tiles(s *model.Session, visible *model.Station, hand []model.DominoID) []Tile {
	var ids []model.DominoID
	if visible != nil {
		ids = append(ids, visible.Engine)
		ids = append(ids, visible.DominoIDs()...)
	}
	ids = append(ids, hand...)

	tiles := make([]Tile, 0, len(ids))
	for _, id := range ids {
		d, err := c.catalog.Lookup(id)
		if err != nil {
			c.logger.Error("view references unknown domino",
				slog.String("session_id", string(s.ID)),
				slog.Int("domino_id", int(id)))
			continue
		}
		tiles = append(tiles, Tile{Domino: d, Flipped: s.Flipped[id], Purpose: s.PurposeOf(id)})
	}
	return tiles
}
