package ledger

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/cantorhq/cantor/internal/model"
)

type LedgerSuite struct {
	suite.Suite
	ledger *Ledger
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	s.ledger = New()
}

func (s *LedgerSuite) player(id string, balance int) *model.PlayerRecord {
	return &model.PlayerRecord{
		ID:          model.PlayerID(id),
		DisplayName: id,
		Balance:     balance,
	}
}

// Stake tests

func (s *LedgerSuite) TestStakeDebitsBalanceAndGrowsPot() {
	p := s.player("a", 100)

	err := s.ledger.Stake(p, 10)
	s.Require().NoError(err)

	s.Equal(90, p.Balance)
	s.Equal(10, p.Stake)
	s.True(p.HasStaked)
	s.Equal(10, s.ledger.Pot())
}

func (s *LedgerSuite) TestStakeRejectsNonPositiveAmount() {
	p := s.player("a", 100)

	s.ErrorIs(s.ledger.Stake(p, 0), model.ErrInvalidStake)
	s.ErrorIs(s.ledger.Stake(p, -5), model.ErrInvalidStake)
	s.Equal(100, p.Balance)
	s.Equal(0, s.ledger.Pot())
}

func (s *LedgerSuite) TestStakeRejectsInsufficientFunds() {
	p := s.player("a", 5)

	s.ErrorIs(s.ledger.Stake(p, 10), model.ErrInsufficientFunds)
	s.Equal(5, p.Balance)
	s.False(p.HasStaked)
	s.Equal(0, s.ledger.Pot())
}

func (s *LedgerSuite) TestStakeRejectsDoubleStake() {
	p := s.player("a", 100)
	s.Require().NoError(s.ledger.Stake(p, 10))

	s.ErrorIs(s.ledger.Stake(p, 10), model.ErrAlreadyStaked)
	s.Equal(90, p.Balance)
	s.Equal(10, s.ledger.Pot())
}

// Refund tests

func (s *LedgerSuite) TestRefundRestoresBalanceAndShrinksPot() {
	p := s.player("a", 100)
	s.Require().NoError(s.ledger.Stake(p, 30))

	refunded := s.ledger.Refund(p)

	s.Equal(30, refunded)
	s.Equal(100, p.Balance)
	s.False(p.HasStaked)
	s.Equal(0, p.Stake)
	s.Equal(0, s.ledger.Pot())
}

func (s *LedgerSuite) TestRefundIsIdempotent() {
	p := s.player("a", 100)
	s.Require().NoError(s.ledger.Stake(p, 30))

	s.Equal(30, s.ledger.Refund(p))
	s.Equal(0, s.ledger.Refund(p))
	s.Equal(100, p.Balance)
}

func (s *LedgerSuite) TestRefundWithoutStakeReturnsZero() {
	p := s.player("a", 100)
	s.Equal(0, s.ledger.Refund(p))
}

func (s *LedgerSuite) TestRefundFloorsPotAtZero() {
	p := s.player("a", 100)
	s.Require().NoError(s.ledger.Stake(p, 30))

	// Settling another winner drains the pot before the refund lands
	other := s.player("b", 0)
	s.ledger.Settle([]*model.PlayerRecord{other})

	s.Equal(30, s.ledger.Refund(p))
	s.Equal(0, s.ledger.Pot())
}

// Settle tests

func (s *LedgerSuite) TestSettleSplitsEvenPot() {
	a := s.player("a", 100)
	b := s.player("b", 100)
	s.Require().NoError(s.ledger.Stake(a, 10))
	s.Require().NoError(s.ledger.Stake(b, 10))

	payouts, remainder := s.ledger.Settle([]*model.PlayerRecord{a, b})

	s.Equal(10, payouts[a.ID])
	s.Equal(10, payouts[b.ID])
	s.Equal(0, remainder)
	s.Equal(100, a.Balance)
	s.Equal(100, b.Balance)
	s.Equal(0, s.ledger.Pot())
}

func (s *LedgerSuite) TestSettleRoundsDownAndRetainsRemainder() {
	a := s.player("a", 100)
	b := s.player("b", 100)
	s.Require().NoError(s.ledger.Stake(a, 10))
	s.Require().NoError(s.ledger.Stake(b, 11))

	payouts, remainder := s.ledger.Settle([]*model.PlayerRecord{a, b})

	// pot=21, two winners: each gets floor(21/2)=10, the remaining 1 goes to no one
	s.Equal(10, payouts[a.ID])
	s.Equal(10, payouts[b.ID])
	s.Equal(1, remainder)
	s.Equal(0, s.ledger.Pot())
}

func (s *LedgerSuite) TestSettleSingleWinnerTakesAll() {
	a := s.player("a", 100)
	b := s.player("b", 100)
	s.Require().NoError(s.ledger.Stake(a, 10))
	s.Require().NoError(s.ledger.Stake(b, 10))

	payouts, remainder := s.ledger.Settle([]*model.PlayerRecord{a})

	s.Equal(20, payouts[a.ID])
	s.Equal(0, remainder)
	s.Equal(110, a.Balance)
}

func (s *LedgerSuite) TestSettleTwiceIsNoOp() {
	a := s.player("a", 100)
	s.Require().NoError(s.ledger.Stake(a, 10))

	first, _ := s.ledger.Settle([]*model.PlayerRecord{a})
	s.Equal(10, first[a.ID])

	second, remainder := s.ledger.Settle([]*model.PlayerRecord{a})
	s.Nil(second)
	s.Equal(0, remainder)
	s.Equal(100, a.Balance)
	s.True(s.ledger.Paid())
}

func (s *LedgerSuite) TestBeginRoundReArmsSettlement() {
	a := s.player("a", 100)
	s.Require().NoError(s.ledger.Stake(a, 10))
	s.ledger.Settle([]*model.PlayerRecord{a})

	s.ledger.BeginRound()
	ClearStake(a)
	s.Require().NoError(s.ledger.Stake(a, 20))

	payouts, _ := s.ledger.Settle([]*model.PlayerRecord{a})
	s.Equal(20, payouts[a.ID])
}

// Pot conservation: pot == sum(active stakes) - refunds, and 0 after settle

func (s *LedgerSuite) TestPotConservation() {
	players := []*model.PlayerRecord{
		s.player("a", 100),
		s.player("b", 100),
		s.player("c", 100),
	}
	for _, p := range players {
		s.Require().NoError(s.ledger.Stake(p, 25))
	}
	s.Equal(75, s.ledger.Pot())

	s.ledger.Refund(players[2])
	s.Equal(50, s.ledger.Pot())

	active := 0
	for _, p := range players {
		active += p.Stake
	}
	s.Equal(active, s.ledger.Pot())

	s.ledger.Settle(players[:2])
	s.Equal(0, s.ledger.Pot())
}
