package game

import (
	"fmt"

	"github.com/mcoot/dominotrain/internal/model"
	"github.com/mcoot/dominotrain/internal/services/rules"
)

// selectDomino classifies a clicked domino. A hand domino toggles the
// selection, the engine starts a new track with the selection and a track
// tail extends that track. Clicking the last played domino takes it back.
func (c *Controller) selectDomino(tx *transition) error {
	s := tx.session
	p := tx.cmd.PlayerID
	id := tx.cmd.DominoID
	group := s.Phase == model.PhaseRoundStarting

	if !group && !c.orchestrator.IsCurrentPlayer(s, p) {
		return model.ErrNotPlayerTurn
	}
	status := s.TurnStatuses.Get(p)
	if status.IsLastPlayed(id) {
		return c.undo(tx)
	}
	if _, err := c.catalog.Lookup(id); err != nil {
		return err
	}

	if hand := s.Hands[p]; hand != nil && hand.Contains(id) {
		return c.toggleSelection(tx, id)
	}
	if !group && status.HasMadeMoveThisTurn {
		return model.ErrAlreadyMoved
	}

	turn := s.TurnStations[p]
	if turn == nil {
		return fmt.Errorf("%w: %s has no turn station", model.ErrInvariantViolation, p)
	}
	// With nothing selected, clicking the end of a provisional track peels
	// it back one domino at a time
	if _, selecting := s.Selected[p]; group && !selecting && isProvisionalTail(s, turn, id) {
		return c.takeBack(tx, turn, id)
	}
	if id == turn.Engine {
		return c.startTrack(tx, turn)
	}
	idx, ok := turn.FindTrackIndexByDomino(id)
	if !ok {
		return model.ErrDominoNotPlayable
	}
	if tail, _ := turn.Tracks[idx].Tail(); tail != id {
		return model.ErrDominoNotPlayable
	}
	return c.extendTrack(tx, turn, idx)
}

func (c *Controller) toggleSelection(tx *transition, id model.DominoID) error {
	s := tx.session
	p := tx.cmd.PlayerID

	var selected *model.DominoID
	if current, ok := s.Selected[p]; ok && current == id {
		delete(s.Selected, p)
	} else {
		s.Selected[p] = id
		selected = &id
	}
	tx.emitTo(c, p, model.EventSelectionChanged, model.SelectionChangedPayload{DominoID: selected})
	return nil
}

func (c *Controller) startTrack(tx *transition, turn *model.Station) error {
	s := tx.session
	p := tx.cmd.PlayerID

	if s.TurnStatuses.Get(p).HasAddedNewTrackThisTurn {
		return model.ErrTrackAlreadyAdded
	}
	if turn.IsFull() {
		return model.ErrStationFull
	}
	candidate, flip, err := c.orientSelection(s, p, turn.Engine)
	if err != nil {
		return err
	}

	// A player's first track of the round is theirs; later ones stay open
	var owner *model.PlayerID
	if _, owns := s.Station.FindTrackByOwner(p); !owns {
		owner = model.PlayerPtr(p)
	}

	if err := c.ledger.TakeFromHand(s, p, candidate); err != nil {
		return err
	}
	idx := turn.AddTrack(candidate, owner)
	c.place(tx, candidate, flip)
	s.TurnStatuses.RegisterNewTrack(p, candidate)

	c.emitMove(tx, candidate, idx, true, flip)
	return nil
}

func (c *Controller) extendTrack(tx *transition, turn *model.Station, idx int) error {
	s := tx.session
	p := tx.cmd.PlayerID

	if !turn.Tracks[idx].OpenTo(p) {
		return model.ErrTrackNotOwned
	}
	tail, err := turn.ExposedEndOf(idx)
	if err != nil {
		return err
	}
	candidate, flip, err := c.orientSelection(s, p, tail)
	if err != nil {
		return err
	}

	if err := c.ledger.TakeFromHand(s, p, candidate); err != nil {
		return err
	}
	if err := turn.AddToTrack(candidate, idx); err != nil {
		return err
	}
	c.place(tx, candidate, flip)
	s.TurnStatuses.RegisterMove(p, candidate)

	c.emitMove(tx, candidate, idx, false, flip)
	return nil
}

// orientSelection checks the player's selected domino against the exposed
// destination and reports whether it has to be flipped
func (c *Controller) orientSelection(s *model.Session, p model.PlayerID, destination model.DominoID) (model.DominoID, bool, error) {
	selected, ok := s.Selected[p]
	if !ok {
		return 0, false, model.ErrNoDominoSelected
	}
	if hand := s.Hands[p]; hand == nil || !hand.Contains(selected) {
		delete(s.Selected, p)
		return 0, false, model.ErrDominoNotInHand
	}

	candidate, err := c.catalog.Lookup(selected)
	if err != nil {
		return 0, false, err
	}
	dest, err := c.catalog.Lookup(destination)
	if err != nil {
		return 0, false, err
	}
	matches, flip := rules.Orient(candidate, dest, s.Flipped[destination])
	if !matches {
		return 0, false, model.ErrDominoMismatch
	}
	return selected, flip, nil
}

func (c *Controller) place(tx *transition, id model.DominoID, flip bool) {
	s := tx.session
	if flip {
		s.Flipped[id] = true
	}
	delete(s.Selected, tx.cmd.PlayerID)
}

// emitMove reports a placement. Group-turn moves are private until the merge.
func (c *Controller) emitMove(tx *transition, id model.DominoID, idx int, newTrack, flip bool) {
	s := tx.session
	p := tx.cmd.PlayerID
	payload := model.MoveAppliedPayload{
		PlayerID:   p,
		DominoID:   id,
		TrackIndex: idx,
		NewTrack:   newTrack,
		Flipped:    flip,
	}
	if s.Phase == model.PhaseRoundStarting {
		tx.emitTo(c, p, model.EventMoveApplied, payload)
	} else {
		tx.emit(c, model.EventMoveApplied, payload)
	}
	tx.emitTo(c, p, model.EventHandUpdated, c.handPayload(s, p, nil))
}

// undo takes back the player's last played domino. The domino leaves the
// tail of its track, deleting the track if it was alone, and returns to the
// hand. The player may then make a different move this turn.
func (c *Controller) undo(tx *transition) error {
	s := tx.session
	p := tx.cmd.PlayerID
	id := tx.cmd.DominoID
	group := s.Phase == model.PhaseRoundStarting

	if !group && !c.orchestrator.IsCurrentPlayer(s, p) {
		return model.ErrNotPlayerTurn
	}
	if !s.TurnStatuses.Get(p).IsLastPlayed(id) {
		return model.ErrNothingToUndo
	}
	turn := s.TurnStations[p]
	if turn == nil {
		return fmt.Errorf("%w: %s has no turn station", model.ErrInvariantViolation, p)
	}
	if !turn.Contains(id) {
		return fmt.Errorf("%w: last played domino %d is not on the turn station", model.ErrInvariantViolation, id)
	}
	return c.takeBack(tx, turn, id)
}

// takeBack removes a tail domino from the player's turn station and returns
// it to their hand
func (c *Controller) takeBack(tx *transition, turn *model.Station, id model.DominoID) error {
	s := tx.session
	p := tx.cmd.PlayerID
	group := s.Phase == model.PhaseRoundStarting

	if !turn.RemoveTrailingDomino(id) {
		return fmt.Errorf("%w: domino %d is not a track tail", model.ErrInvariantViolation, id)
	}

	c.ledger.ReturnToHand(s, p, id)
	delete(s.Flipped, id)

	status := s.TurnStatuses.Get(p)
	drawn := status.HasDrawnThisTurn
	s.TurnStatuses.ResetForNewTurn(p)
	status.HasDrawnThisTurn = drawn
	if group && len(turn.Tracks) > len(s.Station.Tracks) {
		// Earlier group-turn plays are still on the provisional track
		status.HasMadeMoveThisTurn = true
		status.HasAddedNewTrackThisTurn = true
	}

	payload := model.MoveUndonePayload{PlayerID: p, DominoID: id}
	if group {
		tx.emitTo(c, p, model.EventMoveUndone, payload)
	} else {
		tx.emit(c, model.EventMoveUndone, payload)
	}
	tx.emitTo(c, p, model.EventHandUpdated, c.handPayload(s, p, nil))
	return nil
}

// isProvisionalTail reports whether id ends a track of the turn station and
// has not been merged into canon
func isProvisionalTail(s *model.Session, turn *model.Station, id model.DominoID) bool {
	if s.Station != nil && s.Station.Contains(id) {
		return false
	}
	idx, ok := turn.FindTrackIndexByDomino(id)
	if !ok {
		return false
	}
	tail, _ := turn.Tracks[idx].Tail()
	return tail == id
}
