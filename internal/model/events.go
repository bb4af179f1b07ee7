package model

import (
	"encoding/json"
	"fmt"
)

// CommandType tags an inbound command from a connection
type CommandType string

const (
	CmdStake      CommandType = "stake"
	CmdPickCards  CommandType = "pick_cards"
	CmdStartRound CommandType = "start_round"
	CmdShuffle    CommandType = "shuffle"
	CmdClaim      CommandType = "claim"
	CmdVerdict    CommandType = "verdict"
	CmdAddBot     CommandType = "add_bot"
	CmdLeave      CommandType = "leave"
)

// Command is the tagged-variant form of a connection message. Fields beyond
// Type are populated per variant; ParseCommand validates shape before the
// command reaches room state.
type Command struct {
	Type CommandType `json:"type"`

	// stake
	Amount int `json:"amount,omitempty"`

	// pick_cards / claim
	Payload json.RawMessage `json:"payload,omitempty"`

	// verdict
	Claimant PlayerID `json:"claimant,omitempty"`
	Approve  bool     `json:"approve,omitempty"`

	// add_bot
	Name string `json:"name,omitempty"`
}

// ParseCommand decodes and validates a raw connection message
func ParseCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("malformed command: %w", err)
	}
	switch cmd.Type {
	case CmdStake:
		if cmd.Amount <= 0 {
			return Command{}, ErrInvalidStake
		}
	case CmdVerdict:
		if cmd.Claimant == "" {
			return Command{}, fmt.Errorf("verdict requires a claimant")
		}
	case CmdPickCards, CmdStartRound, CmdShuffle, CmdClaim, CmdAddBot, CmdLeave:
	default:
		return Command{}, fmt.Errorf("unknown command type %q", cmd.Type)
	}
	return cmd, nil
}

// EventType tags an outbound event to one or all room connections
type EventType string

const (
	EventRole         EventType = "role"
	EventRoomSnapshot EventType = "room"
	EventPot          EventType = "pot"
	EventRoundStarted EventType = "round_started"
	EventContent      EventType = "content"
	EventClaimWindow  EventType = "claim_window"
	EventClaimFiled   EventType = "claim_filed"
	EventClaimList    EventType = "claim_list"
	EventVerdict      EventType = "verdict"
	EventSettlement   EventType = "settlement"
	EventRoundResumed EventType = "round_resumed"
	EventHostChanged  EventType = "host_changed"
	EventError        EventType = "error"
)

// Event is an outbound message. To narrows delivery to one connection; empty
// To broadcasts to the whole room.
type Event struct {
	Type EventType `json:"type"`
	To   ConnID    `json:"-"`
	Data any       `json:"data,omitempty"`
}

// Targeted reports whether the event is for a single connection
func (e Event) Targeted() bool {
	return e.To != ""
}

// RolePayload tells a connection whether it holds the host role
type RolePayload struct {
	PlayerID PlayerID `json:"player_id"`
	IsHost   bool     `json:"is_host"`
}

// MemberView is one player as seen in a room snapshot
type MemberView struct {
	ID          PlayerID `json:"id"`
	DisplayName string   `json:"display_name"`
	IsHost      bool     `json:"is_host"`
	IsBot       bool     `json:"is_bot,omitempty"`
	Connected   bool     `json:"connected"`
	HasStaked   bool     `json:"has_staked"`
	Stake       int      `json:"stake,omitempty"`
}

// SnapshotPayload is the full observable room state, sent on join/rebind and
// after membership changes
type SnapshotPayload struct {
	Key     RoomKey       `json:"key"`
	Status  RoomStatus    `json:"status"`
	Mode    GameMode      `json:"mode"`
	Pot     int           `json:"pot"`
	Members []MemberView  `json:"members"`
	History []ContentUnit `json:"history,omitempty"`
}

// PotPayload reports the pot after a stake or refund
type PotPayload struct {
	Pot      int      `json:"pot"`
	PlayerID PlayerID `json:"player_id,omitempty"`
	Stake    int      `json:"stake,omitempty"`
}

// ClaimWindowPayload opens the claim grace window for the room
type ClaimWindowPayload struct {
	Claimant PlayerID `json:"claimant"`
	ClosesMS int64    `json:"closes_ms"`
}

// ClaimListPayload delivers the ordered pending claims to the host
type ClaimListPayload struct {
	Claims []Claim `json:"claims"`
}

// VerdictPayload reports one resolved claim
type VerdictPayload struct {
	Claimant PlayerID    `json:"claimant"`
	Status   ClaimStatus `json:"status"`
}

// SettlementPayload reports the round's payouts. Remainder is the undistributed
// pot mod winner-count; split payouts round down.
type SettlementPayload struct {
	Payouts   map[PlayerID]int `json:"payouts"`
	Remainder int              `json:"remainder"`
}

// HostChangedPayload announces a host migration
type HostChangedPayload struct {
	HostID PlayerID `json:"host_id"`
}

// ErrorPayload is a user-visible rejection
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
