package catalog

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/dominotrain/internal/model"
)

type CatalogSuite struct {
	suite.Suite
	catalog *Catalog
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogSuite))
}

func (s *CatalogSuite) SetupTest() {
	s.catalog = New()
}

// Generation tests

func (s *CatalogSuite) TestNewGeneratesFullSet() {
	all := s.catalog.All()
	s.Len(all, 91)
	s.Equal(91, s.catalog.Size())

	seen := make(map[model.DominoID]bool)
	doubles := 0
	for i, d := range all {
		s.Equal(model.DominoID(i), d.ID)
		s.False(seen[d.ID])
		seen[d.ID] = true
		s.LessOrEqual(d.Top, d.Bottom)
		s.GreaterOrEqual(d.Top, 0)
		s.LessOrEqual(d.Bottom, model.MaxPips)
		if d.IsDouble() {
			doubles++
		}
	}
	s.Equal(13, doubles)
}

func (s *CatalogSuite) TestNewFollowsNestedLoopOrder() {
	first, err := s.catalog.Lookup(0)
	s.Require().NoError(err)
	s.Equal(model.Domino{ID: 0, Top: 0, Bottom: 0}, first)

	second, err := s.catalog.Lookup(1)
	s.Require().NoError(err)
	s.Equal(model.Domino{ID: 1, Top: 0, Bottom: 1}, second)

	// 0-0..0-12 take ids 0..12, so 1-1 is id 13
	oneOne, err := s.catalog.Lookup(13)
	s.Require().NoError(err)
	s.Equal(model.Domino{ID: 13, Top: 1, Bottom: 1}, oneOne)

	last, err := s.catalog.Lookup(90)
	s.Require().NoError(err)
	s.Equal(model.Domino{ID: 90, Top: 12, Bottom: 12}, last)
}

// Lookup tests

func (s *CatalogSuite) TestLookupUnknownID() {
	_, err := s.catalog.Lookup(91)
	s.ErrorIs(err, model.ErrDominoNotFound)

	_, err = s.catalog.Lookup(-1)
	s.ErrorIs(err, model.ErrDominoNotFound)
}

// Engine tests

func (s *CatalogSuite) TestEnginesAreDoublesInIncreasingOrder() {
	engines := s.catalog.Engines()
	s.Require().Len(engines, 13)

	for pips, id := range engines {
		d, err := s.catalog.Lookup(id)
		s.Require().NoError(err)
		s.True(d.IsDouble())
		s.Equal(pips, d.Top)
	}
}

func (s *CatalogSuite) TestEngineForRound() {
	first, err := s.catalog.EngineForRound(1)
	s.Require().NoError(err)
	s.Equal(model.DominoID(0), first)

	twelfth, err := s.catalog.EngineForRound(12)
	s.Require().NoError(err)
	d, err := s.catalog.Lookup(twelfth)
	s.Require().NoError(err)
	s.Equal(11, d.Top)

	_, err = s.catalog.EngineForRound(0)
	s.ErrorIs(err, model.ErrDominoNotFound)
	_, err = s.catalog.EngineForRound(14)
	s.ErrorIs(err, model.ErrDominoNotFound)
}

func (s *CatalogSuite) TestIDsExceptOmitsEngine() {
	ids := s.catalog.IDsExcept(13)
	s.Len(ids, 90)
	s.NotContains(ids, model.DominoID(13))
}
