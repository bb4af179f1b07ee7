package claims

import (
	"encoding/json"
	"time"

	"github.com/cantorhq/cantor/internal/model"
)

// Registry tracks the current round's win claims for one room, in submission
// order. Like the ledger it is pure in-memory state, serialized by the room's
// event loop.
type Registry struct {
	claims  []*model.Claim
	byID    map[model.PlayerID]*model.Claim
	settled bool
}

// New creates an empty Registry
func New() *Registry {
	return &Registry{
		byID: make(map[model.PlayerID]*model.Claim),
	}
}

// Add records a pending claim. A duplicate claim from a player already in the
// registry is ignored and returns nil. Once the round is settled no further
// claims can be created.
func (r *Registry) Add(claimant model.PlayerID, snapshot json.RawMessage, at time.Time) (*model.Claim, error) {
	if r.settled {
		return nil, model.ErrClaimsSettled
	}
	if _, ok := r.byID[claimant]; ok {
		return nil, nil
	}

	c := &model.Claim{
		Claimant:    claimant,
		SubmittedAt: at,
		Snapshot:    snapshot,
		Status:      model.ClaimPending,
	}
	r.claims = append(r.claims, c)
	r.byID[claimant] = c
	return c, nil
}

// Resolve records the host's verdict for one pending claim
func (r *Registry) Resolve(claimant model.PlayerID, approve bool) (*model.Claim, error) {
	c, ok := r.byID[claimant]
	if !ok || c.Status != model.ClaimPending {
		return nil, model.ErrClaimNotPending
	}
	if approve {
		c.Status = model.ClaimValidated
	} else {
		c.Status = model.ClaimRejected
	}
	return c, nil
}

// Len returns the number of claims this round
func (r *Registry) Len() int {
	return len(r.claims)
}

// All returns copies of all claims in submission order
func (r *Registry) All() []model.Claim {
	out := make([]model.Claim, len(r.claims))
	for i, c := range r.claims {
		out[i] = *c
	}
	return out
}

// Pending returns the claims still awaiting a verdict, in submission order
func (r *Registry) Pending() []model.Claim {
	var out []model.Claim
	for _, c := range r.claims {
		if c.Status == model.ClaimPending {
			out = append(out, *c)
		}
	}
	return out
}

// AllResolved reports whether every claim has received a verdict
func (r *Registry) AllResolved() bool {
	for _, c := range r.claims {
		if c.Status == model.ClaimPending {
			return false
		}
	}
	return true
}

// Validated returns the claimants with validated claims, in submission order
func (r *Registry) Validated() []model.PlayerID {
	var out []model.PlayerID
	for _, c := range r.claims {
		if c.Status == model.ClaimValidated {
			out = append(out, c.Claimant)
		}
	}
	return out
}

// MarkSettled latches the registry closed for the rest of the round
func (r *Registry) MarkSettled() {
	r.settled = true
}

// Settled reports whether the round's claims have been settled
func (r *Registry) Settled() bool {
	return r.settled
}

// Reset clears the registry for a new round
func (r *Registry) Reset() {
	r.claims = nil
	r.byID = make(map[model.PlayerID]*model.Claim)
	r.settled = false
}
