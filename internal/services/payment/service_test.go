package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/cantorhq/cantor/internal/dependencies/mocks"
	"github.com/cantorhq/cantor/internal/model"
	"github.com/cantorhq/cantor/internal/storage/memory"
	"github.com/cantorhq/cantor/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger(), DefaultConfig())
	s.ctx = context.Background()

	err := s.storage.SaveAccount(s.ctx, &model.Account{ID: "player-1", Balance: 100})
	s.Require().NoError(err)
}

// CreateCheckout tests

func (s *ServiceSuite) TestCreateCheckoutSucceeds() {
	session, err := s.service.CreateCheckout(s.ctx, "player-1", 50)
	s.Require().NoError(err)

	s.NotEmpty(session.ID)
	s.Equal(model.PlayerID("player-1"), session.AccountID)
	s.Equal(50, session.Amount)
	s.Equal(model.CheckoutPending, session.Status)
	s.Contains(session.RedirectURL, session.ID)
}

func (s *ServiceSuite) TestCreateCheckoutRejectsNonPositiveAmount() {
	_, err := s.service.CreateCheckout(s.ctx, "player-1", 0)
	s.ErrorIs(err, model.ErrInvalidAmount)

	_, err = s.service.CreateCheckout(s.ctx, "player-1", -5)
	s.ErrorIs(err, model.ErrInvalidAmount)
}

func (s *ServiceSuite) TestCreateCheckoutUnknownAccount() {
	_, err := s.service.CreateCheckout(s.ctx, "nonexistent", 50)
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// ConfirmCheckout tests

func (s *ServiceSuite) TestConfirmCheckoutCreditsBalance() {
	session, _ := s.service.CreateCheckout(s.ctx, "player-1", 50)

	confirmed, err := s.service.ConfirmCheckout(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(model.CheckoutConfirmed, confirmed.Status)
	s.Require().NotNil(confirmed.ConfirmedAt)

	account, err := s.storage.GetAccount(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(150, account.Balance)

	txns, err := s.storage.GetTransactions(s.ctx, "player-1", 10)
	s.Require().NoError(err)
	s.Require().Len(txns, 1)
	s.Equal(model.TxnDeposit, txns[0].Kind)
	s.Equal(50, txns[0].Amount)
}

func (s *ServiceSuite) TestConfirmCheckoutIsIdempotent() {
	session, _ := s.service.CreateCheckout(s.ctx, "player-1", 50)

	_, err := s.service.ConfirmCheckout(s.ctx, session.ID)
	s.Require().NoError(err)

	// Webhook retry: the credit must not apply twice
	confirmed, err := s.service.ConfirmCheckout(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(model.CheckoutConfirmed, confirmed.Status)

	account, err := s.storage.GetAccount(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(150, account.Balance)

	txns, err := s.storage.GetTransactions(s.ctx, "player-1", 10)
	s.Require().NoError(err)
	s.Len(txns, 1)
}

func (s *ServiceSuite) TestConfirmCheckoutUnknownSession() {
	_, err := s.service.ConfirmCheckout(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrCheckoutNotFound)
}

// GetCheckout tests

func (s *ServiceSuite) TestGetCheckout() {
	session, _ := s.service.CreateCheckout(s.ctx, "player-1", 50)

	retrieved, err := s.service.GetCheckout(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(session.ID, retrieved.ID)
}
