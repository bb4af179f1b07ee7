package model

import (
	"encoding/json"
	"time"
)

// ClaimStatus is the validation state of a win claim
type ClaimStatus string

const (
	ClaimPending   ClaimStatus = "pending"
	ClaimValidated ClaimStatus = "validated"
	ClaimRejected  ClaimStatus = "rejected"
)

// Claim is a player's assertion of having won the current round. The board
// snapshot is opaque to the coordinator; only the host's display layer
// interprets it.
type Claim struct {
	Claimant    PlayerID        `json:"claimant"`
	SubmittedAt time.Time       `json:"submitted_at"`
	Snapshot    json.RawMessage `json:"snapshot,omitempty"`
	Status      ClaimStatus     `json:"status"`
}
