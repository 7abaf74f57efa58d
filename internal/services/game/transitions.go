package game

import (
	"context"

	"github.com/mcoot/dominotrain/internal/model"
)

// transition carries one command through its handler and collects the
// events to publish once the new state is saved
type transition struct {
	ctx     context.Context
	session *model.Session
	cmd     Command
	events  []model.Event
}

type transitionKey struct {
	phase model.Phase
	kind  CommandKind
}

type handlerFunc func(c *Controller, tx *transition) error

// transitions lists every legal (phase, command) pair. Anything missing is
// rejected as not allowed in the current phase.
var transitions = map[transitionKey]handlerFunc{
	{model.PhasePregame, CommandJoin}:       (*Controller).join,
	{model.PhasePregame, CommandStart}:      (*Controller).start,
	{model.PhasePregame, CommandDisconnect}: (*Controller).leavePregame,

	{model.PhaseRoundStarting, CommandDraw}:       (*Controller).drawGroup,
	{model.PhaseRoundStarting, CommandSelect}:     (*Controller).selectDomino,
	{model.PhaseRoundStarting, CommandUndo}:       (*Controller).undo,
	{model.PhaseRoundStarting, CommandEndTurn}:    (*Controller).endGroupTurn,
	{model.PhaseRoundStarting, CommandDisconnect}: (*Controller).disconnectGroupTurn,

	{model.PhasePlayerTurns, CommandDraw}:       (*Controller).drawIndividual,
	{model.PhasePlayerTurns, CommandSelect}:     (*Controller).selectDomino,
	{model.PhasePlayerTurns, CommandUndo}:       (*Controller).undo,
	{model.PhasePlayerTurns, CommandEndTurn}:    (*Controller).endIndividualTurn,
	{model.PhasePlayerTurns, CommandDisconnect}: (*Controller).disconnectIndividual,

	{model.PhaseRoundOver, CommandReady}:      (*Controller).readyForNextRound,
	{model.PhaseRoundOver, CommandDisconnect}: (*Controller).disconnectRoundOver,

	{model.PhaseGameOver, CommandDisconnect}: (*Controller).disconnectGameOver,
}

// emit queues an event for every player
func (tx *transition) emit(c *Controller, eventType model.EventType, payload any) {
	tx.emitTo(c, "", eventType, payload)
}

// emitTo queues an event for a single player
func (tx *transition) emitTo(c *Controller, recipient model.PlayerID, eventType model.EventType, payload any) {
	tx.events = append(tx.events, model.Event{
		Type:      eventType,
		Timestamp: c.clock.Now(),
		SessionID: tx.session.ID,
		PlayerID:  tx.cmd.PlayerID,
		Recipient: recipient,
		Payload:   payload,
	})
}

// Pregame

func (c *Controller) join(tx *transition) error {
	s := tx.session
	p := tx.cmd.PlayerID
	if p == "" {
		return model.ErrNotInSession
	}
	if s.HasPlayer(p) {
		return model.ErrAlreadyInSession
	}
	if len(s.Players) >= model.MaxPlayers {
		return model.ErrSessionFull
	}

	s.Players = append(s.Players, p)
	tx.emit(c, model.EventPlayerJoined, model.PlayerJoinedPayload{
		PlayerID: p,
		Players:  append([]model.PlayerID{}, s.Players...),
	})
	return nil
}

func (c *Controller) start(tx *transition) error {
	s := tx.session
	if tx.cmd.PlayerID != s.Host {
		return model.ErrNotHost
	}
	if len(s.Players) < model.MinPlayers {
		return model.ErrInsufficientPlayers
	}
	if s.Config.InitialHandSize*len(s.Players) > c.catalog.Size()-1 {
		return model.ErrInvalidSessionSetup
	}

	if err := c.beginRound(tx); err != nil {
		return err
	}
	tx.emit(c, model.EventSessionStarted, model.SessionStartedPayload{
		Players: append([]model.PlayerID{}, s.Players...),
		Round:   s.RoundNumber,
		Engine:  s.Station.Engine,
	})
	return nil
}

func (c *Controller) leavePregame(tx *transition) error {
	s := tx.session
	p := tx.cmd.PlayerID

	remaining := make([]model.PlayerID, 0, len(s.Players))
	for _, other := range s.Players {
		if other != p {
			remaining = append(remaining, other)
		}
	}
	s.Players = remaining
	if s.Host == p && len(remaining) > 0 {
		s.Host = remaining[0]
	}

	tx.emit(c, model.EventPlayerDisconnected, model.PlayerDisconnectedPayload{
		PlayerID:  p,
		Remaining: append([]model.PlayerID{}, remaining...),
	})
	return nil
}

// Drawing

func (c *Controller) drawGroup(tx *transition) error {
	hand := tx.session.Hands[tx.cmd.PlayerID]
	if hand == nil {
		return model.ErrNotInSession
	}
	if hand.HasDrawnInitial {
		return model.ErrAlreadyDrawn
	}
	return c.draw(tx)
}

func (c *Controller) drawIndividual(tx *transition) error {
	s := tx.session
	p := tx.cmd.PlayerID
	if !c.orchestrator.IsCurrentPlayer(s, p) {
		return model.ErrNotPlayerTurn
	}
	if s.TurnStatuses.Get(p).HasDrawnThisTurn {
		return model.ErrAlreadyDrawn
	}
	return c.draw(tx)
}

func (c *Controller) draw(tx *transition) error {
	s := tx.session
	p := tx.cmd.PlayerID

	drawn, err := c.ledger.Draw(s, p)
	if err != nil {
		return err
	}
	s.TurnStatuses.RegisterDraw(p)

	tx.emitTo(c, p, model.EventHandUpdated, c.handPayload(s, p, drawn))
	return nil
}

// Ending turns

func (c *Controller) endGroupTurn(tx *transition) error {
	s := tx.session
	p := tx.cmd.PlayerID

	if hand := s.Hands[p]; hand == nil || !hand.HasDrawnInitial {
		return model.ErrTurnNotFinished
	}
	if !s.GroupTurnDone.Add(p) {
		return model.ErrAlreadySignaled
	}
	c.orchestrator.AddToTurnOrder(s, p)
	delete(s.Selected, p)

	connected := s.ConnectedPlayers()
	tx.emit(c, model.EventPlayerSignalled, model.PlayerSignalledPayload{
		PlayerID: p,
		Barrier:  model.PhaseRoundStarting,
		Ready:    countReady(s.GroupTurnDone, connected),
		Required: len(connected),
	})
	return c.completeGroupTurnIfReady(tx)
}

func (c *Controller) endIndividualTurn(tx *transition) error {
	s := tx.session
	p := tx.cmd.PlayerID

	if !c.orchestrator.IsCurrentPlayer(s, p) {
		return model.ErrNotPlayerTurn
	}
	status := s.TurnStatuses.Get(p)
	if !status.HasMadeMoveThisTurn && !status.HasDrawnThisTurn && len(s.BonePile) > 0 {
		return model.ErrTurnNotFinished
	}
	return c.finishTurn(tx, p)
}

// Barrier after the round is scored

func (c *Controller) readyForNextRound(tx *transition) error {
	s := tx.session
	p := tx.cmd.PlayerID

	if !s.ReadyForNextRound.Add(p) {
		return model.ErrAlreadySignaled
	}

	connected := s.ConnectedPlayers()
	tx.emit(c, model.EventPlayerSignalled, model.PlayerSignalledPayload{
		PlayerID: p,
		Barrier:  model.PhaseRoundOver,
		Ready:    countReady(s.ReadyForNextRound, connected),
		Required: len(connected),
	})
	return c.startNextRoundIfReady(tx)
}

func (c *Controller) startNextRoundIfReady(tx *transition) error {
	s := tx.session
	connected := s.ConnectedPlayers()
	if len(connected) == 0 || !s.ReadyForNextRound.Covers(connected) {
		return nil
	}
	return c.beginRound(tx)
}

// Disconnects

func (c *Controller) disconnectGroupTurn(tx *transition) error {
	s := tx.session
	p := tx.cmd.PlayerID

	c.markDisconnected(tx)
	c.revertProvisional(s, p)
	delete(s.TurnStations, p)

	if len(s.ConnectedPlayers()) == 0 {
		return nil
	}
	return c.completeGroupTurnIfReady(tx)
}

// disconnectIndividual treats leaving during one's own turn as ending it
// without playing anything
func (c *Controller) disconnectIndividual(tx *transition) error {
	s := tx.session
	p := tx.cmd.PlayerID

	wasCurrent := c.orchestrator.IsCurrentPlayer(s, p)
	c.markDisconnected(tx)
	c.revertProvisional(s, p)

	if !wasCurrent || len(s.ConnectedPlayers()) == 0 {
		return nil
	}
	return c.finishTurn(tx, p)
}

func (c *Controller) disconnectRoundOver(tx *transition) error {
	c.markDisconnected(tx)
	return c.startNextRoundIfReady(tx)
}

func (c *Controller) disconnectGameOver(tx *transition) error {
	c.markDisconnected(tx)
	return nil
}

func (c *Controller) markDisconnected(tx *transition) {
	s := tx.session
	p := tx.cmd.PlayerID
	if s.Disconnected == nil {
		s.Disconnected = make(map[model.PlayerID]bool)
	}
	s.Disconnected[p] = true
	delete(s.Selected, p)

	tx.emit(c, model.EventPlayerDisconnected, model.PlayerDisconnectedPayload{
		PlayerID:  p,
		Remaining: s.ConnectedPlayers(),
	})
}

func countReady(ready model.ReadySet, players []model.PlayerID) int {
	n := 0
	for _, p := range players {
		if ready[p] {
			n++
		}
	}
	return n
}
