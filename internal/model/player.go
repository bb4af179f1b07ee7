package model

import (
	"encoding/json"
	"time"
)

// PlayerID is the stable identity of a player: the external account key, or
// the display name for anonymous play.
type PlayerID string

// ConnID identifies a single live connection. A player's ConnID changes on
// reconnect; the PlayerRecord does not.
type ConnID string

// PlayerRecord is a player's presence in one room. The record survives
// reconnects; only the connection handle is replaced.
type PlayerRecord struct {
	ID          PlayerID
	Conn        ConnID // empty while disconnected-but-grace-held
	DisplayName string
	Balance     int // cached mirror of the external store, advisory only
	HasStaked   bool
	Stake       int
	Payload     json.RawMessage // per-round game-mode payload (e.g. chosen cards)
	IsHost      bool
	IsBot       bool
	JoinedAt    time.Time
}

// Connected reports whether the record currently has a live connection.
func (p *PlayerRecord) Connected() bool {
	return p.Conn != ""
}
