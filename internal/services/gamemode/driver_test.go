package gamemode

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/cantorhq/cantor/internal/dependencies/mocks"
	"github.com/cantorhq/cantor/internal/model"
)

type DriverSuite struct {
	suite.Suite
	random *mocks.MockRandom
}

func TestDriverSuite(t *testing.T) {
	suite.Run(t, new(DriverSuite))
}

func (s *DriverSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
}

func (s *DriverSuite) TestForModeBuildsEachVariant() {
	for _, mode := range []model.GameMode{model.ModeCardCaller, model.ModeBoardWalker, model.ModeSpinner} {
		d, err := ForMode(mode, s.random)
		s.Require().NoError(err)
		s.Equal(mode, d.Mode())
		s.True(d.Ready())
	}

	_, err := ForMode("roulette", s.random)
	s.ErrorIs(err, model.ErrInvalidMode)
}

// CardCaller

func (s *DriverSuite) TestCardCallerCallsWholeDeck() {
	d := NewCardCaller(s.random)

	// MockRandom's shuffle is a no-op, so cards come out in canonical order
	unit, ok := d.Tick()
	s.Require().True(ok)
	s.Equal("card", unit.Kind)
	s.Equal("El Gallo", unit.Label)
	s.Equal(1, unit.Value)
	s.False(unit.Final)

	for i := 1; i < len(CardNames)-1; i++ {
		unit, ok = d.Tick()
		s.Require().True(ok)
		s.False(unit.Final)
	}

	unit, ok = d.Tick()
	s.Require().True(ok)
	s.Equal("La Rana", unit.Label)
	s.True(unit.Final)
	s.False(d.Ready())

	_, ok = d.Tick()
	s.False(ok)
	s.Len(d.History(), len(CardNames))
}

func (s *DriverSuite) TestCardCallerResetRefillsDeck() {
	d := NewCardCaller(s.random)
	for d.Ready() {
		d.Tick()
	}

	d.Reset()

	s.True(d.Ready())
	s.Empty(d.History())
}

// BoardWalker

func (s *DriverSuite) TestBoardWalkerStepsToFinalCell() {
	s.random.QueueIntn(2, 3) // rolls of 3 and 4
	d := NewBoardWalker(s.random)

	unit, ok := d.Tick()
	s.Require().True(ok)
	s.Equal("step", unit.Kind)
	s.Equal(3, unit.Value)
	s.False(unit.Final)

	unit, _ = d.Tick()
	s.Equal(7, unit.Value)

	// Remaining queued rolls are 0, so each step is 1
	for i := 8; i < BoardCells; i++ {
		unit, ok = d.Tick()
		s.Require().True(ok)
		s.False(unit.Final)
	}

	unit, ok = d.Tick()
	s.Require().True(ok)
	s.Equal(BoardCells, unit.Value)
	s.True(unit.Final)
	s.False(d.Ready())
}

func (s *DriverSuite) TestBoardWalkerClampsAtFinalCell() {
	d := NewBoardWalker(s.random)
	d.position = BoardCells - 1
	s.random.QueueIntn(5) // roll of 6 would overshoot

	unit, ok := d.Tick()
	s.Require().True(ok)
	s.Equal(BoardCells, unit.Value)
	s.True(unit.Final)
}

// Spinner

func (s *DriverSuite) TestSpinnerEndsOnTakeAll() {
	s.random.QueueIntn(3, 1, 0)
	d := NewSpinner(s.random)

	unit, ok := d.Tick()
	s.Require().True(ok)
	s.Equal("spin", unit.Kind)
	s.Equal("put one", unit.Label)
	s.False(unit.Final)

	unit, _ = d.Tick()
	s.Equal("take two", unit.Label)

	unit, ok = d.Tick()
	s.Require().True(ok)
	s.Equal("take all", unit.Label)
	s.True(unit.Final)
	s.False(d.Ready())

	_, ok = d.Tick()
	s.False(ok)
}
