package ledger

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/dominotrain/internal/dependencies/mocks"
	"github.com/mcoot/dominotrain/internal/model"
	"github.com/mcoot/dominotrain/internal/services/catalog"
	"github.com/mcoot/dominotrain/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	random  *mocks.MockRandom
	service *Service
	session *model.Session
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	s.service = New(catalog.New(), s.random, testutil.NopLogger())
	s.session = &model.Session{
		ID:           "session-1",
		Players:      []model.PlayerID{"alice", "bob"},
		Station:      model.NewStation(0),
		TurnStations: map[model.PlayerID]*model.Station{},
	}
	s.service.ResetRound(s.session, 0)
}

// InitialHandSize tests

func (s *ServiceSuite) TestInitialHandSizeByPlayerCount() {
	s.Equal(15, InitialHandSize(0, 2))
	s.Equal(15, InitialHandSize(0, 4))
	s.Equal(12, InitialHandSize(0, 5))
	s.Equal(12, InitialHandSize(0, 6))
	s.Equal(10, InitialHandSize(0, 8))
	s.Equal(7, InitialHandSize(7, 8))
}

// ResetRound tests

func (s *ServiceSuite) TestResetRoundFillsBonePileWithoutEngine() {
	s.Len(s.session.BonePile, 90)
	s.NotContains(s.session.BonePile, model.DominoID(0))
	s.True(s.session.Hands["alice"].IsEmpty())
	s.NoError(s.service.CheckPartition(s.session))
}

// Draw tests

func (s *ServiceSuite) TestFirstDrawDealsInitialHand() {
	drawn, err := s.service.Draw(s.session, "alice")
	s.Require().NoError(err)

	s.Len(drawn, 15)
	s.Equal(15, s.session.Hands["alice"].Len())
	s.Len(s.session.BonePile, 75)
	s.True(s.session.Hands["alice"].HasDrawnInitial)
	s.NoError(s.service.CheckPartition(s.session))
}

func (s *ServiceSuite) TestLaterDrawTakesOne() {
	_, err := s.service.Draw(s.session, "alice")
	s.Require().NoError(err)

	s.random.QueueIntn(3)
	drawn, err := s.service.Draw(s.session, "alice")
	s.Require().NoError(err)

	// Pile is in id order after the first 15 were taken from the front
	s.Equal([]model.DominoID{19}, drawn)
	s.Equal(16, s.session.Hands["alice"].Len())
}

func (s *ServiceSuite) TestDrawFromExhaustedPileIsEmpty() {
	_, err := s.service.Draw(s.session, "alice")
	s.Require().NoError(err)
	s.session.BonePile = nil

	drawn, err := s.service.Draw(s.session, "alice")
	s.Require().NoError(err)
	s.Empty(drawn)
}

func (s *ServiceSuite) TestDrawUnknownPlayer() {
	_, err := s.service.Draw(s.session, "mallory")
	s.ErrorIs(err, model.ErrNotInSession)
}

// Hand movement tests

func (s *ServiceSuite) TestTakeAndReturn() {
	_, err := s.service.Draw(s.session, "alice")
	s.Require().NoError(err)
	before := s.session.Hands["alice"].Clone()

	s.Require().NoError(s.service.TakeFromHand(s.session, "alice", 1))
	s.ErrorIs(s.service.TakeFromHand(s.session, "alice", 1), model.ErrDominoNotInHand)
	s.service.ReturnToHand(s.session, "alice", 1)

	s.Equal(before, s.session.Hands["alice"])
}

// Scoring tests

func (s *ServiceSuite) TestScoreSumsRemainingPips() {
	hand := model.NewHand()
	hand.Add(1)  // 0-1
	hand.Add(13) // 1-1
	hand.Add(90) // 12-12

	score, err := s.service.Score(hand)
	s.Require().NoError(err)
	s.Equal(1+2+24, score)
}

func (s *ServiceSuite) TestScoresEmptyHandIsZero() {
	s.session.Hands["alice"].Add(90)

	scores, err := s.service.Scores(s.session)
	s.Require().NoError(err)
	s.Equal(24, scores["alice"])
	s.Equal(0, scores["bob"])
}

func (s *ServiceSuite) TestPlayersWithEmptyHandsRequiresInitialDeal() {
	s.Empty(s.service.PlayersWithEmptyHands(s.session))

	s.session.Hands["bob"].HasDrawnInitial = true
	s.Equal([]model.PlayerID{"bob"}, s.service.PlayersWithEmptyHands(s.session))
}

func (s *ServiceSuite) TestPlayersWhoLeftAreNotDealtOrScored() {
	s.session.Players = append(s.session.Players, "carol")
	s.session.Disconnected = map[model.PlayerID]bool{"carol": true}
	s.service.ResetRound(s.session, 0)

	s.Len(s.session.Hands, 2)
	s.NotContains(s.session.Hands, model.PlayerID("carol"))

	// A player leaving mid-round keeps their dominoes for the partition only
	s.session.Hands["bob"].Add(90)
	s.session.Hands["bob"].HasDrawnInitial = true
	s.session.Disconnected["bob"] = true
	s.session.Hands["alice"].Add(1)

	scores, err := s.service.Scores(s.session)
	s.Require().NoError(err)
	s.Equal(map[model.PlayerID]int{"alice": 1}, scores)
	s.Empty(s.service.PlayersWithEmptyHands(s.session))
}

func (s *ServiceSuite) TestInitialDealCountsOnlyConnectedPlayers() {
	s.session.Players = []model.PlayerID{"alice", "bob", "carol", "dave", "erin"}
	s.session.Disconnected = map[model.PlayerID]bool{"erin": true}
	s.service.ResetRound(s.session, 0)

	drawn, err := s.service.Draw(s.session, "alice")
	s.Require().NoError(err)
	s.Len(drawn, 15)
}

// Partition tests

func (s *ServiceSuite) TestCheckPartitionCountsProvisionalDominoes() {
	_, err := s.service.Draw(s.session, "alice")
	s.Require().NoError(err)

	s.session.TurnStations["alice"] = s.session.Station.Clone()
	s.Require().NoError(s.service.TakeFromHand(s.session, "alice", 1))
	s.session.TurnStations["alice"].AddTrack(1, nil)

	s.NoError(s.service.CheckPartition(s.session))
}

func (s *ServiceSuite) TestCheckPartitionDetectsDuplicate() {
	s.session.Hands["alice"].Add(s.session.BonePile[0])
	s.ErrorIs(s.service.CheckPartition(s.session), model.ErrInvariantViolation)
}

func (s *ServiceSuite) TestCheckPartitionDetectsLoss() {
	s.session.BonePile = s.session.BonePile[1:]
	s.ErrorIs(s.service.CheckPartition(s.session), model.ErrInvariantViolation)
}
