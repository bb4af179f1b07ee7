package wallet

import (
	"context"
	"log/slog"
	"time"

	"github.com/cantorhq/cantor/internal/dependencies/clock"
	"github.com/cantorhq/cantor/internal/model"
	"github.com/cantorhq/cantor/internal/services/room"
	"github.com/cantorhq/cantor/internal/storage"
)

// Config holds wallet write-behind tuning
type Config struct {
	// QueueSize bounds the pending write queue; when full, writes are
	// dropped with an error log rather than blocking the caller
	QueueSize int
	// WriteTimeout bounds each storage write
	WriteTimeout time.Duration
}

// DefaultConfig returns default wallet configuration
func DefaultConfig() Config {
	return Config{
		QueueSize:    256,
		WriteTimeout: 5 * time.Second,
	}
}

type writeOp struct {
	id      model.PlayerID
	balance int
	txn     *model.Transaction
}

// Service mirrors in-room balance changes into storage. Room state holds the
// authoritative balance while a round is in flight; writes here are
// best-effort and asynchronous so a slow or failed store never blocks or
// rolls back play. Reads go straight to storage.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
	cfg     Config

	writes chan writeOp
	done   chan struct{}
}

// Ensure Service can serve rooms as their balance sink
var _ room.BalanceSink = (*Service)(nil)

// New creates a wallet Service and starts its write-behind worker
func New(storage storage.Storage, clk clock.Clock, logger *slog.Logger, cfg Config) *Service {
	if cfg.QueueSize == 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}
	s := &Service{
		storage: storage,
		clock:   clk,
		logger:  logger.With(slog.String("component", "wallet")),
		cfg:     cfg,
		writes:  make(chan writeOp, cfg.QueueSize),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// Close drains the pending write queue and stops the worker
func (s *Service) Close() {
	close(s.writes)
	<-s.done
}

// Balance reads an account's persisted balance
func (s *Service) Balance(ctx context.Context, id model.PlayerID) (int, error) {
	account, err := s.storage.GetAccount(ctx, id)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// Transactions reads an account's balance history, newest first
func (s *Service) Transactions(ctx context.Context, id model.PlayerID, limit int) ([]*model.Transaction, error) {
	return s.storage.GetTransactions(ctx, id, limit)
}

// OnStake mirrors a stake debit
func (s *Service) OnStake(id model.PlayerID, key model.RoomKey, amount, balanceAfter int) {
	s.enqueue(id, balanceAfter, model.TxnStake, amount, key)
}

// OnRefund mirrors a returned stake
func (s *Service) OnRefund(id model.PlayerID, key model.RoomKey, amount, balanceAfter int) {
	s.enqueue(id, balanceAfter, model.TxnRefund, amount, key)
}

// OnPayout mirrors a settlement credit
func (s *Service) OnPayout(id model.PlayerID, key model.RoomKey, amount, balanceAfter int) {
	s.enqueue(id, balanceAfter, model.TxnPayout, amount, key)
}

// enqueue hands a write to the worker without blocking. A full queue drops
// the write: the in-room balance stays correct and the store catches up on
// the next write for the account.
func (s *Service) enqueue(id model.PlayerID, balance int, kind model.TransactionKind, amount int, key model.RoomKey) {
	op := writeOp{
		id:      id,
		balance: balance,
		txn: &model.Transaction{
			AccountID:    id,
			Kind:         kind,
			Amount:       amount,
			BalanceAfter: balance,
			RoomKey:      key,
			CreatedAt:    s.clock.Now(),
		},
	}

	select {
	case s.writes <- op:
	default:
		s.logger.Error("balance write queue full, dropping write",
			slog.String("account", string(id)),
			slog.String("kind", string(kind)))
	}
}

// run applies queued writes in order until the queue is closed
func (s *Service) run() {
	defer close(s.done)
	for op := range s.writes {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
		err := s.storage.SetBalance(ctx, op.id, op.balance, op.txn)
		cancel()
		if err != nil {
			// Bots have no persisted account; anything else is a real miss
			s.logger.Error("balance write failed",
				slog.String("account", string(op.id)),
				slog.String("kind", string(op.txn.Kind)),
				slog.String("error", err.Error()))
		}
	}
}
