package orchestrator

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/mcoot/dominotrain/internal/dependencies/clock"
	"github.com/mcoot/dominotrain/internal/model"
)

// Service tracks turn order, the turn counter, round history and totals
type Service struct {
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a new orchestrator Service
func New(clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		clock:  clk,
		logger: logger,
	}
}

// NewScoreboardWithSkippedRounds returns a scoreboard that already holds
// skip empty rounds, so play starts further into the game. Asking for more
// rounds than the limit allows is a configuration error.
func NewScoreboardWithSkippedRounds(skip, limit int) (model.Scoreboard, error) {
	if skip < 0 || skip > model.RoundLimit || skip > limit {
		return model.Scoreboard{}, fmt.Errorf("%w: skip %d with limit %d", model.ErrInvalidRoundSkip, skip, limit)
	}
	board := model.NewScoreboard()
	for i := 1; i <= skip; i++ {
		board.Rounds = append(board.Rounds, model.Round{
			Number: i,
			Scores: map[model.PlayerID]int{},
		})
	}
	return board, nil
}

// RoundLimit returns the configured round cap, bounded by the engine supply
func RoundLimit(configured int) int {
	if configured <= 0 || configured > model.RoundLimit {
		return model.RoundLimit
	}
	return configured
}

// AddToTurnOrder appends the player if they are not already in the order
func (s *Service) AddToTurnOrder(session *model.Session, playerID model.PlayerID) bool {
	for _, p := range session.TurnOrder {
		if p == playerID {
			return false
		}
	}
	session.TurnOrder = append(session.TurnOrder, playerID)
	return true
}

// CurrentPlayer returns the player whose turn it is
func (s *Service) CurrentPlayer(session *model.Session) (model.PlayerID, bool) {
	if len(session.TurnOrder) == 0 {
		return "", false
	}
	return session.TurnOrder[session.TurnCounter%len(session.TurnOrder)], true
}

// IsCurrentPlayer returns true if it is the player's turn
func (s *Service) IsCurrentPlayer(session *model.Session, playerID model.PlayerID) bool {
	current, ok := s.CurrentPlayer(session)
	return ok && current == playerID
}

// IncrementTurn passes the turn on and clears every player's turn status.
// Disconnected players are skipped.
func (s *Service) IncrementTurn(session *model.Session) model.PlayerID {
	for i := 0; i < len(session.TurnOrder); i++ {
		session.TurnCounter++
		current, _ := s.CurrentPlayer(session)
		if !session.Disconnected[current] {
			break
		}
	}
	session.TurnStatuses.ResetAll()
	session.TurnStartedAt = s.clock.Now()

	current, _ := s.CurrentPlayer(session)
	return current
}

// StartTurns resets the counter to the head of the turn order
func (s *Service) StartTurns(session *model.Session) model.PlayerID {
	session.TurnCounter = -1
	return s.IncrementTurn(session)
}

// EndRound records the round's scores and recomputes cumulative totals.
// Players who emptied their hands win the round; when nobody did, the round
// was blocked and the lowest score wins, ties sharing it.
func (s *Service) EndRound(session *model.Session, scores map[model.PlayerID]int, finishers []model.PlayerID) model.Round {
	blocked := len(finishers) == 0
	winners := append([]model.PlayerID{}, finishers...)
	if blocked {
		winners = lowest(connectedOnly(session, scores))
	}
	round := model.Round{
		Number:  session.RoundNumber,
		Scores:  copyScores(scores),
		Winners: winners,
		Blocked: blocked,
		EndedAt: s.clock.Now(),
	}
	session.Scoreboard.Rounds = append(session.Scoreboard.Rounds, round)
	session.Scoreboard.Totals = totals(session.Scoreboard.Rounds)

	s.logger.Info("round ended",
		slog.String("session_id", string(session.ID)),
		slog.Int("round", round.Number),
		slog.Int("winner_count", len(round.Winners)),
		slog.Bool("blocked", blocked),
	)
	return round
}

// IsLastRound returns true once the round cap has been reached
func (s *Service) IsLastRound(session *model.Session) bool {
	return session.Scoreboard.CompletedRounds() >= RoundLimit(session.Config.RoundLimit)
}

// NextRoundNumber returns the number of the round about to start
func (s *Service) NextRoundNumber(session *model.Session) int {
	return session.Scoreboard.CompletedRounds() + 1
}

// WinnersOfGame returns every connected player tied at the lowest cumulative
// total. Players who left cannot win. Empty until a round has been scored.
func (s *Service) WinnersOfGame(session *model.Session) []model.PlayerID {
	return lowest(connectedOnly(session, session.Scoreboard.Totals))
}

// connectedOnly drops the scores of players who have left
func connectedOnly(session *model.Session, scores map[model.PlayerID]int) map[model.PlayerID]int {
	result := make(map[model.PlayerID]int, len(scores))
	for playerID, score := range scores {
		if !session.Disconnected[playerID] {
			result[playerID] = score
		}
	}
	return result
}

func totals(rounds []model.Round) map[model.PlayerID]int {
	result := make(map[model.PlayerID]int)
	for _, round := range rounds {
		for playerID, score := range round.Scores {
			result[playerID] += score
		}
	}
	return result
}

func lowest(scores map[model.PlayerID]int) []model.PlayerID {
	winners := []model.PlayerID{}
	best := 0
	for playerID, score := range scores {
		switch {
		case len(winners) == 0 || score < best:
			best = score
			winners = []model.PlayerID{playerID}
		case score == best:
			winners = append(winners, playerID)
		}
	}
	sort.Slice(winners, func(i, j int) bool { return winners[i] < winners[j] })
	return winners
}

func copyScores(scores map[model.PlayerID]int) map[model.PlayerID]int {
	result := make(map[model.PlayerID]int, len(scores))
	for k, v := range scores {
		result[k] = v
	}
	return result
}
