package ledger

import (
	"github.com/cantorhq/cantor/internal/model"
)

// Ledger tracks one room's betting pot. It is pure arithmetic over in-memory
// player records: no I/O, no locking. Callers serialize access through the
// room's event loop.
type Ledger struct {
	pot  int
	paid bool
}

// New creates an empty Ledger
func New() *Ledger {
	return &Ledger{}
}

// Pot returns the currently committed, unpaid total
func (l *Ledger) Pot() int {
	return l.pot
}

// Paid reports whether the current round has already been settled
func (l *Ledger) Paid() bool {
	return l.paid
}

// Stake commits amount from the player to the pot. It debits the cached
// balance, increments the pot and marks the player as staked.
func (l *Ledger) Stake(rec *model.PlayerRecord, amount int) error {
	if amount <= 0 {
		return model.ErrInvalidStake
	}
	if rec.HasStaked {
		return model.ErrAlreadyStaked
	}
	if rec.Balance < amount {
		return model.ErrInsufficientFunds
	}

	rec.Balance -= amount
	rec.HasStaked = true
	rec.Stake = amount
	l.pot += amount
	return nil
}

// Refund returns the player's current stake to their cached balance and
// removes it from the pot. Idempotent: returns 0 if there is nothing to
// refund. The pot is floored at zero to tolerate drift from concurrent
// partial settlements.
func (l *Ledger) Refund(rec *model.PlayerRecord) int {
	if !rec.HasStaked || rec.Stake == 0 {
		return 0
	}

	refunded := rec.Stake
	rec.Balance += refunded
	rec.HasStaked = false
	rec.Stake = 0

	l.pot -= refunded
	if l.pot < 0 {
		l.pot = 0
	}
	return refunded
}

// Settle divides the pot among the winners using integer floor division and
// credits each winner's cached balance. The remainder (pot mod winner-count)
// is not distributed; this rounding-down split is the documented payout
// policy. Settle is the only pot-zeroing operation and at most one settlement
// runs per round: a second call is a no-op.
func (l *Ledger) Settle(winners []*model.PlayerRecord) (map[model.PlayerID]int, int) {
	if l.paid || len(winners) == 0 {
		return nil, 0
	}

	share := l.pot / len(winners)
	remainder := l.pot % len(winners)

	payouts := make(map[model.PlayerID]int, len(winners))
	for _, w := range winners {
		w.Balance += share
		payouts[w.ID] = share
	}

	l.pot = 0
	l.paid = true
	return payouts, remainder
}

// Forfeit zeroes the pot without paying anyone, for the case where every
// validated claimant left before settlement. Subject to the same
// once-per-round guard as Settle.
func (l *Ledger) Forfeit() int {
	if l.paid {
		return 0
	}
	forfeited := l.pot
	l.pot = 0
	l.paid = true
	return forfeited
}

// BeginRound re-arms the settlement guard for a new round
func (l *Ledger) BeginRound() {
	l.paid = false
}

// ClearStake resets a player's per-round stake fields without touching the
// pot. Used on round reset after settlement, when stakes are already paid out.
func ClearStake(rec *model.PlayerRecord) {
	rec.HasStaked = false
	rec.Stake = 0
}
