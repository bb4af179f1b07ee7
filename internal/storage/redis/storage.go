package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cantorhq/cantor/internal/model"
	"github.com/cantorhq/cantor/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// accountTTL returns the TTL to apply to an account's keys
func (s *Storage) accountTTL(account *model.Account) time.Duration {
	if account.IsGuest {
		return s.cfg.GuestAccountTTL
	}
	return 0
}

// Account operations

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, accountKey(account.ID), data, s.accountTTL(account)).Err()
}

func (s *Storage) GetAccount(ctx context.Context, id model.PlayerID) (*model.Account, error) {
	data, err := s.client.Get(ctx, accountKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	var account model.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *Storage) DeleteAccount(ctx context.Context, id model.PlayerID) error {
	creds, err := s.GetCredentials(ctx, id)
	if err != nil && !errors.Is(err, model.ErrAccountNotFound) {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, accountKey(id))
	pipe.Del(ctx, transactionsKey(id))
	if creds != nil {
		pipe.Del(ctx, credentialsKey(id))
		pipe.Del(ctx, usernameIndexKey(creds.Username))
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Credential operations

func (s *Storage) SaveCredentials(ctx context.Context, creds *model.Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}

	// Pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, credentialsKey(creds.AccountID), data, 0)
	pipe.Set(ctx, usernameIndexKey(creds.Username), string(creds.AccountID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetCredentials(ctx context.Context, accountID model.PlayerID) (*model.Credentials, error) {
	data, err := s.client.Get(ctx, credentialsKey(accountID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	var creds model.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (s *Storage) GetCredentialsByUsername(ctx context.Context, username string) (*model.Credentials, error) {
	accountIDStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	return s.GetCredentials(ctx, model.PlayerID(accountIDStr))
}

// Balance operations

func (s *Storage) SetBalance(ctx context.Context, id model.PlayerID, balance int, txn *model.Transaction) error {
	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	account.Balance = balance

	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	// Pipeline so the balance write and its history entry land together
	pipe := s.client.Pipeline()
	pipe.Set(ctx, accountKey(id), data, s.accountTTL(account))
	if txn != nil {
		txnData, err := json.Marshal(txn)
		if err != nil {
			return err
		}
		key := transactionsKey(id)
		pipe.LPush(ctx, key, txnData)
		if s.cfg.TransactionHistoryLimit > 0 {
			pipe.LTrim(ctx, key, 0, int64(s.cfg.TransactionHistoryLimit-1))
		}
		if account.IsGuest {
			pipe.Expire(ctx, key, s.cfg.GuestAccountTTL)
		}
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetTransactions(ctx context.Context, id model.PlayerID, limit int) ([]*model.Transaction, error) {
	end := int64(-1)
	if limit > 0 {
		end = int64(limit - 1)
	}

	// Newest first: SetBalance pushes to the head
	values, err := s.client.LRange(ctx, transactionsKey(id), 0, end).Result()
	if err != nil {
		return nil, err
	}

	txns := make([]*model.Transaction, 0, len(values))
	for _, val := range values {
		var txn model.Transaction
		if err := json.Unmarshal([]byte(val), &txn); err != nil {
			continue // Skip invalid data
		}
		txns = append(txns, &txn)
	}
	return txns, nil
}

// Checkout operations

func (s *Storage) SaveCheckout(ctx context.Context, session *model.CheckoutSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, checkoutKey(session.ID), data, s.cfg.CheckoutTTL).Err()
}

func (s *Storage) GetCheckout(ctx context.Context, id string) (*model.CheckoutSession, error) {
	data, err := s.client.Get(ctx, checkoutKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrCheckoutNotFound
		}
		return nil, err
	}

	var session model.CheckoutSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}
