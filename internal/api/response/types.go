package response

import (
	"time"

	"github.com/cantorhq/cantor/internal/model"
	"github.com/cantorhq/cantor/internal/services/auth"
)

// Account represents an account in API responses
type Account struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Balance     int    `json:"balance"`
	IsGuest     bool   `json:"is_guest"`
}

// AccountFromModel converts a model.Account to a response Account
func AccountFromModel(a *model.Account) Account {
	return Account{
		ID:          string(a.ID),
		DisplayName: a.DisplayName,
		Balance:     a.Balance,
		IsGuest:     a.IsGuest,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Account      Account `json:"account"`
	SessionToken string  `json:"session_token"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Account:      AccountFromModel(&s.Account),
		SessionToken: s.Token,
	}
}

// RoomCreated is the response for room creation
type RoomCreated struct {
	Key  string `json:"key"`
	Mode string `json:"mode"`
}

// Transaction represents one balance history entry
type Transaction struct {
	Kind         string    `json:"kind"`
	Amount       int       `json:"amount"`
	BalanceAfter int       `json:"balance_after"`
	RoomKey      string    `json:"room_key,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TransactionFromModel converts a model.Transaction
func TransactionFromModel(t *model.Transaction) Transaction {
	return Transaction{
		Kind:         string(t.Kind),
		Amount:       t.Amount,
		BalanceAfter: t.BalanceAfter,
		RoomKey:      string(t.RoomKey),
		CreatedAt:    t.CreatedAt,
	}
}

// TransactionList wraps an account's history
type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
}

// TransactionListFromModel converts a slice of model transactions
func TransactionListFromModel(txns []*model.Transaction) TransactionList {
	out := make([]Transaction, len(txns))
	for i, t := range txns {
		out[i] = TransactionFromModel(t)
	}
	return TransactionList{Transactions: out}
}

// Checkout represents a checkout session in API responses
type Checkout struct {
	ID          string     `json:"id"`
	Amount      int        `json:"amount"`
	Status      string     `json:"status"`
	RedirectURL string     `json:"redirect_url,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

// CheckoutFromModel converts a model.CheckoutSession
func CheckoutFromModel(c *model.CheckoutSession) Checkout {
	return Checkout{
		ID:          c.ID,
		Amount:      c.Amount,
		Status:      string(c.Status),
		RedirectURL: c.RedirectURL,
		ConfirmedAt: c.ConfirmedAt,
	}
}
