package storage

import (
	"context"

	"github.com/cantorhq/cantor/internal/model"
)

// Storage defines the interface for data persistence. Room state never lives
// here: rooms are loop-owned and in-memory, and only account balances,
// credentials, transaction history and checkout sessions are persisted.
type Storage interface {
	// Account operations
	SaveAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id model.PlayerID) (*model.Account, error)
	DeleteAccount(ctx context.Context, id model.PlayerID) error

	// Credential operations
	SaveCredentials(ctx context.Context, creds *model.Credentials) error
	GetCredentials(ctx context.Context, accountID model.PlayerID) (*model.Credentials, error)
	GetCredentialsByUsername(ctx context.Context, username string) (*model.Credentials, error)

	// Balance operations. SetBalance pairs the balance write with its history
	// entry so a crash cannot record one without the other.
	SetBalance(ctx context.Context, id model.PlayerID, balance int, txn *model.Transaction) error
	GetTransactions(ctx context.Context, id model.PlayerID, limit int) ([]*model.Transaction, error)

	// Checkout operations
	SaveCheckout(ctx context.Context, session *model.CheckoutSession) error
	GetCheckout(ctx context.Context, id string) (*model.CheckoutSession, error)
}
