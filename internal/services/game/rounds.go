package game

import (
	"log/slog"

	"github.com/mcoot/dominotrain/internal/model"
)

// beginRound resets the table for the next round and opens the group turn
func (c *Controller) beginRound(tx *transition) error {
	s := tx.session

	s.RoundNumber = c.orchestrator.NextRoundNumber(s)
	engine, err := c.catalog.EngineForRound(s.RoundNumber)
	if err != nil {
		return err
	}

	connected := s.ConnectedPlayers()
	s.Station = model.NewStation(engine)
	c.ledger.ResetRound(s, engine)
	s.TurnStations = c.reconciler.SyncAllTurnStationsFromCanon(s.Station, connected)
	if s.TurnStatuses == nil {
		s.TurnStatuses = make(model.TurnStatuses)
	}
	for _, p := range connected {
		s.TurnStatuses.Get(p)
	}
	s.TurnStatuses.ResetAll()
	s.Selected = make(map[model.PlayerID]model.DominoID)
	s.GroupTurnDone = make(model.ReadySet)
	s.ReadyForNextRound = make(model.ReadySet)
	s.ConsecutivePasses = 0
	s.TurnCounter = 0
	s.TurnStartedAt = c.clock.Now()
	s.Phase = model.PhaseRoundStarting

	c.logger.Info("round started",
		slog.String("session_id", string(s.ID)),
		slog.Int("round", s.RoundNumber),
		slog.Int("engine", int(engine)),
		slog.Int("player_count", len(connected)),
	)

	tx.emit(c, model.EventStationUpdated, c.stationPayload(s, []model.DominoID{}))
	tx.emit(c, model.EventTurnChanged, c.turnChangedPayload(s))
	return nil
}

// completeGroupTurnIfReady runs the group merge once every connected player
// has signalled. It fires at most once per round because the phase moves on.
func (c *Controller) completeGroupTurnIfReady(tx *transition) error {
	s := tx.session
	connected := s.ConnectedPlayers()
	if !s.GroupTurnDone.Covers(connected) {
		return nil
	}
	for _, p := range connected {
		c.orchestrator.AddToTurnOrder(s, p)
	}

	prior := s.Station
	merged, err := c.reconciler.MergeGroupTurn(prior, s.TurnOrder, s.TurnStations)
	if err != nil {
		return err
	}
	newIDs, err := c.reconciler.DiffAgainstPriorSnapshot(prior, merged)
	if err != nil {
		return err
	}

	s.Station = merged
	s.TurnStations = c.reconciler.SyncAllTurnStationsFromCanon(merged, connected)
	s.TurnStatuses.ResetAll()
	s.Selected = make(map[model.PlayerID]model.DominoID)

	c.logger.Info("group turn merged",
		slog.String("session_id", string(s.ID)),
		slog.Int("round", s.RoundNumber),
		slog.Int("tracks", len(merged.Tracks)),
		slog.Int("new_dominoes", len(newIDs)),
	)
	tx.emit(c, model.EventStationUpdated, c.stationPayload(s, newIDs))

	if finishers := c.ledger.PlayersWithEmptyHands(s); len(finishers) > 0 {
		return c.endRound(tx, finishers)
	}

	s.Phase = model.PhasePlayerTurns
	c.orchestrator.StartTurns(s)
	tx.emit(c, model.EventTurnChanged, c.turnChangedPayload(s))
	return nil
}

// finishTurn merges the acting player's provisional station into canon and
// passes the turn on, ending the round if the player went out or nobody can play
func (c *Controller) finishTurn(tx *transition, p model.PlayerID) error {
	s := tx.session
	status := s.TurnStatuses.Get(p)
	played := status.HasMadeMoveThisTurn

	prior := s.Station
	turnStation := s.TurnStations[p]
	if turnStation == nil {
		turnStation = prior.Clone()
	}
	merged, err := c.reconciler.MergeIndividualTurn(prior, turnStation)
	if err != nil {
		return err
	}
	for _, idx := range c.policy.TracksToOpen(s, merged, p, played) {
		if idx >= 0 && idx < len(merged.Tracks) {
			merged.Tracks[idx].Public = true
		}
	}
	newIDs, err := c.reconciler.DiffAgainstPriorSnapshot(prior, merged)
	if err != nil {
		return err
	}

	connected := s.ConnectedPlayers()
	s.Station = merged
	s.TurnStations = c.reconciler.SyncAllTurnStationsFromCanon(merged, connected)
	delete(s.Selected, p)

	switch {
	case played:
		s.ConsecutivePasses = 0
	case len(s.BonePile) == 0:
		s.ConsecutivePasses++
	default:
		s.ConsecutivePasses = 0
	}

	c.logger.Info("turn ended",
		slog.String("session_id", string(s.ID)),
		slog.String("player_id", string(p)),
		slog.Bool("played", played),
		slog.Int("new_dominoes", len(newIDs)),
		slog.Duration("turn_duration", c.clock.Since(s.TurnStartedAt)),
	)
	tx.emit(c, model.EventStationUpdated, c.stationPayload(s, newIDs))

	if hand := s.Hands[p]; hand != nil && hand.IsEmpty() {
		return c.endRound(tx, []model.PlayerID{p})
	}
	if len(s.BonePile) == 0 && len(connected) > 0 && s.ConsecutivePasses >= len(connected) {
		return c.endRound(tx, nil)
	}

	c.orchestrator.IncrementTurn(s)
	tx.emit(c, model.EventTurnChanged, c.turnChangedPayload(s))
	return nil
}

// endRound scores the round and either waits for the ready barrier or ends the game
func (c *Controller) endRound(tx *transition, finishers []model.PlayerID) error {
	s := tx.session

	scores, err := c.ledger.Scores(s)
	if err != nil {
		return err
	}
	round := c.orchestrator.EndRound(s, scores, finishers)

	tx.emit(c, model.EventRoundEnded, model.RoundEndedPayload{
		Round:   round,
		Winners: round.Winners,
		Scores:  round.Scores,
		Totals:  copyTotals(s.Scoreboard.Totals),
	})

	if c.orchestrator.IsLastRound(s) {
		return c.endGame(tx, round)
	}

	s.Phase = model.PhaseRoundOver
	s.ReadyForNextRound = make(model.ReadySet)
	s.Selected = make(map[model.PlayerID]model.DominoID)
	tx.emit(c, model.EventTurnChanged, c.turnChangedPayload(s))
	return nil
}

// endGame finalises the session and keeps a record of the result
func (c *Controller) endGame(tx *transition, last model.Round) error {
	s := tx.session
	s.Phase = model.PhaseGameOver
	winners := c.orchestrator.WinnersOfGame(s)

	record := &model.GameRecord{
		SessionID:   s.ID,
		Players:     append([]model.PlayerID{}, s.Players...),
		Rounds:      append([]model.Round{}, s.Scoreboard.Rounds...),
		FinalTotals: copyTotals(s.Scoreboard.Totals),
		Winners:     winners,
		CompletedAt: c.clock.Now(),
	}
	if err := c.storage.SaveGameRecord(tx.ctx, record); err != nil {
		c.logger.Error("failed to save game record",
			slog.String("session_id", string(s.ID)),
			slog.String("error", err.Error()),
		)
		return err
	}

	c.logger.Info("game completed",
		slog.String("session_id", string(s.ID)),
		slog.Int("rounds", len(s.Scoreboard.Rounds)),
		slog.Int("winner_count", len(winners)),
	)
	tx.emit(c, model.EventGameEnded, model.GameEndedPayload{
		Winners: winners,
		Scores:  last.Scores,
		Totals:  copyTotals(s.Scoreboard.Totals),
	})
	tx.emit(c, model.EventTurnChanged, c.turnChangedPayload(s))
	return nil
}

// revertProvisional hands back every domino the player placed since the last
// merge and resets their provisional station to canon
func (c *Controller) revertProvisional(s *model.Session, p model.PlayerID) {
	turn := s.TurnStations[p]
	if turn == nil || s.Station == nil {
		return
	}
	for _, id := range turn.DominoIDs() {
		if s.Station.Contains(id) {
			continue
		}
		c.ledger.ReturnToHand(s, p, id)
		delete(s.Flipped, id)
	}
	s.TurnStations[p] = s.Station.Clone()
	s.TurnStatuses.ResetForNewTurn(p)
}

// PlayerStates derives each player's view of the state machine
func (c *Controller) PlayerStates(s *model.Session) map[model.PlayerID]model.PlayerState {
	states := make(map[model.PlayerID]model.PlayerState, len(s.Players))
	for _, p := range s.Players {
		states[p] = c.playerState(s, p)
	}
	return states
}

func (c *Controller) playerState(s *model.Session, p model.PlayerID) model.PlayerState {
	switch s.Phase {
	case model.PhasePregame:
		return model.PlayerStatePregame
	case model.PhaseRoundStarting:
		return model.PlayerStateGroupTurn
	case model.PhaseRoundOver:
		return model.PlayerStateRoundOver
	case model.PhaseGameOver:
		return model.PlayerStateGameOver
	}
	if !c.orchestrator.IsCurrentPlayer(s, p) {
		return model.PlayerStateAwaitingTurn
	}
	if s.TurnStatuses.Get(p).HasMadeMoveThisTurn {
		return model.PlayerStateMadeMove
	}
	return model.PlayerStateTurnActive
}

func (c *Controller) turnChangedPayload(s *model.Session) model.TurnChangedPayload {
	payload := model.TurnChangedPayload{
		Phase:  s.Phase,
		Round:  s.RoundNumber,
		States: c.PlayerStates(s),
	}
	if s.Phase == model.PhasePlayerTurns {
		payload.ActivePlayer, _ = c.orchestrator.CurrentPlayer(s)
	}
	return payload
}

func (c *Controller) stationPayload(s *model.Session, newIDs []model.DominoID) model.StationUpdatedPayload {
	flipped := make(map[model.DominoID]bool)
	for _, id := range s.Station.DominoIDs() {
		if s.Flipped[id] {
			flipped[id] = true
		}
	}
	return model.StationUpdatedPayload{
		Station:      s.Station.Clone(),
		NewDominoIDs: newIDs,
		Flipped:      flipped,
	}
}

func (c *Controller) handPayload(s *model.Session, p model.PlayerID, drawn []model.DominoID) model.HandUpdatedPayload {
	payload := model.HandUpdatedPayload{
		Drawn:         drawn,
		BonePileCount: len(s.BonePile),
	}
	if hand := s.Hands[p]; hand != nil {
		payload.DominoIDs = append([]model.DominoID{}, hand.DominoIDs...)
	}
	return payload
}

// resyncEvents rebuilds a player's view from a stored snapshot
func (c *Controller) resyncEvents(s *model.Session, p model.PlayerID) []model.Event {
	now := c.clock.Now()
	event := func(t model.EventType, payload any) model.Event {
		return model.Event{Type: t, Timestamp: now, SessionID: s.ID, PlayerID: p, Recipient: p, Payload: payload}
	}

	var events []model.Event
	if s.Station != nil {
		events = append(events, event(model.EventStationUpdated, c.stationPayload(s, []model.DominoID{})))
	}
	if s.Hands[p] != nil {
		events = append(events, event(model.EventHandUpdated, c.handPayload(s, p, nil)))
	}
	events = append(events, event(model.EventTurnChanged, c.turnChangedPayload(s)))
	return events
}

func copyTotals(totals map[model.PlayerID]int) map[model.PlayerID]int {
	result := make(map[model.PlayerID]int, len(totals))
	for k, v := range totals {
		result[k] = v
	}
	return result
}
