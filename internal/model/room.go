package model

// RoomKey is an opaque identifier for joining rooms
type RoomKey string

// GameMode tags which content driver a room runs
type GameMode string

const (
	ModeCardCaller  GameMode = "card_caller"
	ModeBoardWalker GameMode = "board_walker"
	ModeSpinner     GameMode = "spinner"
)

// ValidMode reports whether m names a known game mode
func ValidMode(m GameMode) bool {
	switch m {
	case ModeCardCaller, ModeBoardWalker, ModeSpinner:
		return true
	}
	return false
}

// RoomStatus is the room's position in the round state machine
type RoomStatus string

const (
	// StatusLobby accepts joins and stakes, no round running
	StatusLobby RoomStatus = "lobby"
	// StatusActive has the game-mode driver emitting content
	StatusActive RoomStatus = "active"
	// StatusAwaitingClaims holds the claim grace window open, driver paused
	StatusAwaitingClaims RoomStatus = "awaiting_claims"
	// StatusResolving has the host validating claims sequentially
	StatusResolving RoomStatus = "resolving"
)

// ContentUnit is one piece of round content emitted by a game-mode driver:
// a called card, a board step, or a spin outcome.
type ContentUnit struct {
	Kind  string `json:"kind"`
	Label string `json:"label,omitempty"`
	Value int    `json:"value"`
	// Final marks the driver's terminal unit (deck exhausted, token on the
	// last cell, a take-all spin)
	Final bool `json:"final,omitempty"`
}
