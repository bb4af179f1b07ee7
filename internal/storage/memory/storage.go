package memory

import (
	"context"
	"sync"

	"github.com/cantorhq/cantor/internal/model"
	"github.com/cantorhq/cantor/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	accounts      map[model.PlayerID]*model.Account
	credentials   map[model.PlayerID]*model.Credentials
	usernameIndex map[string]model.PlayerID
	transactions  map[model.PlayerID][]*model.Transaction
	checkouts     map[string]*model.CheckoutSession
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		accounts:      make(map[model.PlayerID]*model.Account),
		credentials:   make(map[model.PlayerID]*model.Credentials),
		usernameIndex: make(map[string]model.PlayerID),
		transactions:  make(map[model.PlayerID][]*model.Transaction),
		checkouts:     make(map[string]*model.CheckoutSession),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = account
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.PlayerID) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return account, nil
}

func (s *Storage) DeleteAccount(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
	delete(s.transactions, id)
	if creds, ok := s.credentials[id]; ok {
		delete(s.usernameIndex, creds.Username)
		delete(s.credentials, id)
	}
	return nil
}

// Credential operations

func (s *Storage) SaveCredentials(ctx context.Context, creds *model.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[creds.AccountID] = creds
	s.usernameIndex[creds.Username] = creds.AccountID
	return nil
}

func (s *Storage) GetCredentials(ctx context.Context, accountID model.PlayerID) (*model.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	creds, ok := s.credentials[accountID]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return creds, nil
}

func (s *Storage) GetCredentialsByUsername(ctx context.Context, username string) (*model.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accountID, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	creds, ok := s.credentials[accountID]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return creds, nil
}

// Balance operations

func (s *Storage) SetBalance(ctx context.Context, id model.PlayerID, balance int, txn *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return model.ErrAccountNotFound
	}
	account.Balance = balance
	if txn != nil {
		s.transactions[id] = append(s.transactions[id], txn)
	}
	return nil
}

func (s *Storage) GetTransactions(ctx context.Context, id model.PlayerID, limit int) ([]*model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	txns := s.transactions[id]
	// newest first
	result := make([]*model.Transaction, 0, len(txns))
	for i := len(txns) - 1; i >= 0; i-- {
		result = append(result, txns[i])
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// Checkout operations

func (s *Storage) SaveCheckout(ctx context.Context, session *model.CheckoutSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkouts[session.ID] = session
	return nil
}

func (s *Storage) GetCheckout(ctx context.Context, id string) (*model.CheckoutSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.checkouts[id]
	if !ok {
		return nil, model.ErrCheckoutNotFound
	}
	return session, nil
}
