package model

import "time"

// Account is the externally persisted record for a player identity
type Account struct {
	ID          PlayerID  `json:"id"`
	DisplayName string    `json:"display_name"`
	Balance     int       `json:"balance"`
	Inventory   []string  `json:"inventory,omitempty"`
	IsGuest     bool      `json:"is_guest"`
	CreatedAt   time.Time `json:"created_at"`
}

// Credentials holds login data for a registered account
// Stored separately so the hash never travels with the account
type Credentials struct {
	AccountID    PlayerID
	Username     string // login username (immutable)
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TransactionKind classifies a balance change
type TransactionKind string

const (
	TxnDeposit TransactionKind = "deposit"
	TxnStake   TransactionKind = "stake"
	TxnRefund  TransactionKind = "refund"
	TxnPayout  TransactionKind = "payout"
)

// Transaction is one history entry paired with a balance write
type Transaction struct {
	AccountID PlayerID        `json:"account_id"`
	Kind      TransactionKind `json:"kind"`
	Amount    int             `json:"amount"`
	// BalanceAfter is the balance the write set, for idempotent replay
	BalanceAfter int       `json:"balance_after"`
	RoomKey      RoomKey   `json:"room_key,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// CheckoutStatus is the lifecycle state of a payment checkout session
type CheckoutStatus string

const (
	CheckoutPending   CheckoutStatus = "pending"
	CheckoutConfirmed CheckoutStatus = "confirmed"
)

// CheckoutSession is an out-of-band payment flow. Confirmation credits the
// persisted balance directly and never touches room state.
type CheckoutSession struct {
	ID          string         `json:"id"`
	AccountID   PlayerID       `json:"account_id"`
	Amount      int            `json:"amount"`
	Status      CheckoutStatus `json:"status"`
	RedirectURL string         `json:"redirect_url"`
	CreatedAt   time.Time      `json:"created_at"`
	ConfirmedAt *time.Time     `json:"confirmed_at,omitempty"`
}
