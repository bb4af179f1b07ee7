package payment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/cantorhq/cantor/internal/dependencies/clock"
	"github.com/cantorhq/cantor/internal/model"
	"github.com/cantorhq/cantor/internal/storage"
)

// Config holds payment provider settings
type Config struct {
	// CheckoutBaseURL is the provider page the player is redirected to,
	// with the session id appended
	CheckoutBaseURL string
}

// DefaultConfig returns default payment configuration
func DefaultConfig() Config {
	return Config{
		CheckoutBaseURL: "https://pay.example.com/checkout",
	}
}

// Service manages out-of-band deposit flows. Checkout confirmation credits
// the persisted balance directly; it never touches room state, so deposits
// made mid-round appear when the player next reads their balance.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
	cfg     Config
}

// New creates a payment Service
func New(storage storage.Storage, clk clock.Clock, logger *slog.Logger, cfg Config) *Service {
	if cfg.CheckoutBaseURL == "" {
		cfg.CheckoutBaseURL = DefaultConfig().CheckoutBaseURL
	}
	return &Service{
		storage: storage,
		clock:   clk,
		logger:  logger.With(slog.String("component", "payment")),
		cfg:     cfg,
	}
}

// CreateCheckout opens a pending checkout session for a deposit
func (s *Service) CreateCheckout(ctx context.Context, accountID model.PlayerID, amount int) (*model.CheckoutSession, error) {
	if amount <= 0 {
		return nil, model.ErrInvalidAmount
	}

	// The account must exist before we hand out a redirect
	if _, err := s.storage.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	session := &model.CheckoutSession{
		ID:          id,
		AccountID:   accountID,
		Amount:      amount,
		Status:      model.CheckoutPending,
		RedirectURL: fmt.Sprintf("%s/%s", s.cfg.CheckoutBaseURL, id),
		CreatedAt:   s.clock.Now(),
	}

	if err := s.storage.SaveCheckout(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("checkout created",
		slog.String("checkout", id),
		slog.String("account", string(accountID)),
		slog.Int("amount", amount))
	return session, nil
}

// ConfirmCheckout handles the provider's completion webhook: it credits the
// deposit to the persisted balance and marks the session confirmed. Repeated
// confirmations for the same session credit at most once.
func (s *Service) ConfirmCheckout(ctx context.Context, id string) (*model.CheckoutSession, error) {
	session, err := s.storage.GetCheckout(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Status == model.CheckoutConfirmed {
		// Providers retry webhooks; a repeat is not an error
		return session, nil
	}

	account, err := s.storage.GetAccount(ctx, session.AccountID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	newBalance := account.Balance + session.Amount
	if err := s.storage.SetBalance(ctx, session.AccountID, newBalance, &model.Transaction{
		AccountID:    session.AccountID,
		Kind:         model.TxnDeposit,
		Amount:       session.Amount,
		BalanceAfter: newBalance,
		CreatedAt:    now,
	}); err != nil {
		return nil, err
	}

	session.Status = model.CheckoutConfirmed
	session.ConfirmedAt = &now
	if err := s.storage.SaveCheckout(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("checkout confirmed",
		slog.String("checkout", id),
		slog.String("account", string(session.AccountID)),
		slog.Int("amount", session.Amount))
	return session, nil
}

// GetCheckout returns a checkout session by id
func (s *Service) GetCheckout(ctx context.Context, id string) (*model.CheckoutSession, error) {
	return s.storage.GetCheckout(ctx, id)
}
