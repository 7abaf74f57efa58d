package model

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type StationSuite struct {
	suite.Suite
	station *Station
}

func TestStationSuite(t *testing.T) {
	suite.Run(t, new(StationSuite))
}

func (s *StationSuite) SetupTest() {
	s.station = NewStation(0)
}

// AddTrack / AddToTrack tests

func (s *StationSuite) TestAddTrackAppendsInOrder() {
	owner := PlayerID("alice")
	first := s.station.AddTrack(5, &owner)
	second := s.station.AddTrack(7, nil)

	s.Equal(0, first)
	s.Equal(1, second)
	s.True(s.station.Tracks[0].OwnedBy("alice"))
	s.Nil(s.station.Tracks[1].Owner)
}

func (s *StationSuite) TestAddTrackCopiesOwner() {
	owner := PlayerID("alice")
	s.station.AddTrack(5, &owner)
	owner = "bob"

	s.True(s.station.Tracks[0].OwnedBy("alice"))
}

func (s *StationSuite) TestAddToTrackAppendsAtTail() {
	idx := s.station.AddTrack(5, nil)
	s.Require().NoError(s.station.AddToTrack(6, idx))

	tail, err := s.station.ExposedEndOf(idx)
	s.Require().NoError(err)
	s.Equal(DominoID(6), tail)
}

func (s *StationSuite) TestAddToTrackOutOfRange() {
	err := s.station.AddToTrack(6, 0)
	s.ErrorIs(err, ErrInvariantViolation)
}

func (s *StationSuite) TestIsFullAtMaxTracks() {
	for i := 0; i < MaxTracks; i++ {
		s.False(s.station.IsFull())
		s.station.AddTrack(DominoID(i+1), nil)
	}
	s.True(s.station.IsFull())
}

// RemoveTrailingDomino tests

func (s *StationSuite) TestRemoveTrailingDominoOnlyRemovesTail() {
	idx := s.station.AddTrack(5, nil)
	s.Require().NoError(s.station.AddToTrack(6, idx))

	s.False(s.station.RemoveTrailingDomino(5))
	s.True(s.station.RemoveTrailingDomino(6))
	s.Equal([]DominoID{5}, s.station.Tracks[0].DominoIDs)
}

func (s *StationSuite) TestRemoveTrailingDominoDeletesEmptiedTrack() {
	s.station.AddTrack(5, nil)
	s.station.AddTrack(7, nil)
	s.station.AddTrack(9, nil)

	s.True(s.station.RemoveTrailingDomino(7))

	s.Len(s.station.Tracks, 2)
	idx, ok := s.station.FindTrackIndexByDomino(9)
	s.True(ok)
	s.Equal(1, idx)
}

func (s *StationSuite) TestRemoveTrailingDominoUnknown() {
	s.station.AddTrack(5, nil)
	s.False(s.station.RemoveTrailingDomino(42))
}

// Lookup tests

func (s *StationSuite) TestFindTrackByOwner() {
	owner := PlayerID("bob")
	s.station.AddTrack(5, nil)
	s.station.AddTrack(7, &owner)

	idx, ok := s.station.FindTrackByOwner("bob")
	s.True(ok)
	s.Equal(1, idx)

	_, ok = s.station.FindTrackByOwner("carol")
	s.False(ok)
}

func (s *StationSuite) TestContainsAndChainLength() {
	idx := s.station.AddTrack(5, nil)
	s.Require().NoError(s.station.AddToTrack(6, idx))

	s.True(s.station.Contains(0))
	s.True(s.station.Contains(6))
	s.False(s.station.Contains(7))
	s.Equal(3, s.station.ChainLength())
	s.Equal([]DominoID{5, 6}, s.station.DominoIDs())
}

// Clone tests

func (s *StationSuite) TestCloneIsDeep() {
	owner := PlayerID("alice")
	idx := s.station.AddTrack(5, &owner)

	clone := s.station.Clone()
	s.Require().NoError(clone.AddToTrack(6, idx))
	*clone.Tracks[0].Owner = "mallory"
	clone.Tracks[0].Public = true

	s.Equal([]DominoID{5}, s.station.Tracks[0].DominoIDs)
	s.True(s.station.Tracks[0].OwnedBy("alice"))
	s.False(s.station.Tracks[0].Public)
}

func (s *StationSuite) TestTrackOpenTo() {
	owner := PlayerID("alice")
	track := Track{DominoIDs: []DominoID{1}, Owner: &owner}

	s.True(track.OpenTo("alice"))
	s.False(track.OpenTo("bob"))

	track.Public = true
	s.True(track.OpenTo("bob"))

	open := Track{DominoIDs: []DominoID{2}}
	s.True(open.OpenTo("bob"))
}
