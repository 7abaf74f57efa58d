package ledger

import (
	"fmt"
	"log/slog"

	"github.com/mcoot/dominotrain/internal/dependencies/random"
	"github.com/mcoot/dominotrain/internal/model"
	"github.com/mcoot/dominotrain/internal/services/catalog"
)

// Service manages where every domino lives: the bone pile and player hands
type Service struct {
	catalog *catalog.Catalog
	random  random.Random
	logger  *slog.Logger
}

// New creates a new ledger Service
func New(cat *catalog.Catalog, rnd random.Random, logger *slog.Logger) *Service {
	return &Service{
		catalog: cat,
		random:  rnd,
		logger:  logger,
	}
}

// InitialHandSize returns the number of dominoes dealt on a player's first draw.
// A positive configured size wins; otherwise it shrinks as the table fills up.
func InitialHandSize(configured, playerCount int) int {
	if configured > 0 {
		return configured
	}
	switch {
	case playerCount <= 4:
		return 15
	case playerCount <= 6:
		return 12
	default:
		return 10
	}
}

// ResetRound returns every domino except the engine to the bone pile and
// gives each connected player an empty hand. Players who left sit the round out.
func (s *Service) ResetRound(session *model.Session, engine model.DominoID) {
	connected := session.ConnectedPlayers()
	session.BonePile = s.catalog.IDsExcept(engine)
	session.Hands = make(map[model.PlayerID]*model.Hand, len(connected))
	for _, playerID := range connected {
		session.Hands[playerID] = model.NewHand()
	}
	session.Flipped = make(map[model.DominoID]bool)
}

// Draw moves dominoes from the bone pile into the player's hand: the initial
// deal the first time in a round, then one at a time. An exhausted bone pile
// is not an error; the returned slice is simply shorter or empty.
func (s *Service) Draw(session *model.Session, playerID model.PlayerID) ([]model.DominoID, error) {
	hand, ok := session.Hands[playerID]
	if !ok {
		return nil, model.ErrNotInSession
	}

	count := 1
	if !hand.HasDrawnInitial {
		count = InitialHandSize(session.Config.InitialHandSize, len(session.ConnectedPlayers()))
		hand.HasDrawnInitial = true
	}

	drawn := s.drawFromPile(session, count)
	for _, id := range drawn {
		hand.Add(id)
	}

	if len(drawn) < count {
		s.logger.Info("bone pile exhausted",
			slog.String("session_id", string(session.ID)),
			slog.String("player_id", string(playerID)),
			slog.Int("requested", count),
			slog.Int("drawn", len(drawn)),
		)
	}
	return drawn, nil
}

// drawFromPile removes up to n uniformly random ids from the bone pile
func (s *Service) drawFromPile(session *model.Session, n int) []model.DominoID {
	drawn := make([]model.DominoID, 0, n)
	for i := 0; i < n && len(session.BonePile) > 0; i++ {
		idx := s.random.Intn(len(session.BonePile))
		drawn = append(drawn, session.BonePile[idx])
		session.BonePile = append(session.BonePile[:idx], session.BonePile[idx+1:]...)
	}
	return drawn
}

// TakeFromHand removes a domino the player is about to place
func (s *Service) TakeFromHand(session *model.Session, playerID model.PlayerID, id model.DominoID) error {
	hand, ok := session.Hands[playerID]
	if !ok {
		return model.ErrNotInSession
	}
	if !hand.Remove(id) {
		return model.ErrDominoNotInHand
	}
	return nil
}

// ReturnToHand gives a taken-back domino back to the player
func (s *Service) ReturnToHand(session *model.Session, playerID model.PlayerID, id model.DominoID) {
	hand, ok := session.Hands[playerID]
	if !ok {
		hand = model.NewHand()
		session.Hands[playerID] = hand
	}
	hand.Add(id)
}

// Score sums the pips of every domino in the hand
func (s *Service) Score(hand *model.Hand) (int, error) {
	total := 0
	for _, id := range hand.DominoIDs {
		d, err := s.catalog.Lookup(id)
		if err != nil {
			return 0, err
		}
		total += d.Pips()
	}
	return total, nil
}

// Scores returns the remaining-pip score of every connected player. A player
// who left mid-round keeps their dominoes but is not scored.
func (s *Service) Scores(session *model.Session) (map[model.PlayerID]int, error) {
	connected := session.ConnectedPlayers()
	scores := make(map[model.PlayerID]int, len(connected))
	for _, playerID := range connected {
		hand, ok := session.Hands[playerID]
		if !ok {
			scores[playerID] = 0
			continue
		}
		score, err := s.Score(hand)
		if err != nil {
			return nil, err
		}
		scores[playerID] = score
	}
	return scores, nil
}

// PlayersWithEmptyHands returns, in join order, connected players who have
// played out after taking their initial deal
func (s *Service) PlayersWithEmptyHands(session *model.Session) []model.PlayerID {
	var empty []model.PlayerID
	for _, playerID := range session.ConnectedPlayers() {
		hand, ok := session.Hands[playerID]
		if ok && hand.HasDrawnInitial && hand.IsEmpty() {
			empty = append(empty, playerID)
		}
	}
	return empty
}

// CheckPartition verifies every domino is in exactly one place: the bone
// pile, one hand, the canonical chain, or one player's provisional additions.
func (s *Service) CheckPartition(session *model.Session) error {
	seen := make(map[model.DominoID]string, s.catalog.Size())
	claim := func(id model.DominoID, place string) error {
		if prev, dup := seen[id]; dup {
			return fmt.Errorf("%w: domino %d in both %s and %s", model.ErrInvariantViolation, id, prev, place)
		}
		seen[id] = place
		return nil
	}

	for _, id := range session.BonePile {
		if err := claim(id, "bone pile"); err != nil {
			return err
		}
	}
	for playerID, hand := range session.Hands {
		for _, id := range hand.DominoIDs {
			if err := claim(id, "hand of "+string(playerID)); err != nil {
				return err
			}
		}
	}

	canon := make(map[model.DominoID]bool)
	if session.Station != nil {
		canon[session.Station.Engine] = true
		if err := claim(session.Station.Engine, "engine"); err != nil {
			return err
		}
		for _, id := range session.Station.DominoIDs() {
			canon[id] = true
			if err := claim(id, "station"); err != nil {
				return err
			}
		}
	}
	for playerID, turnStation := range session.TurnStations {
		for _, id := range turnStation.DominoIDs() {
			if canon[id] {
				continue
			}
			if err := claim(id, "turn station of "+string(playerID)); err != nil {
				return err
			}
		}
	}

	if len(seen) != s.catalog.Size() {
		return fmt.Errorf("%w: %d of %d dominoes accounted for", model.ErrInvariantViolation, len(seen), s.catalog.Size())
	}
	return nil
}
