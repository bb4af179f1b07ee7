package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")

	// Room errors
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomExists   = errors.New("room already exists")
	ErrNotInRoom    = errors.New("player is not in room")
	ErrInvalidMode  = errors.New("unknown game mode")

	// Betting errors
	ErrInvalidState      = errors.New("operation not valid in current room status")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAlreadyStaked     = errors.New("player has already staked this round")
	ErrInvalidStake      = errors.New("stake amount must be positive")

	// Claim errors
	ErrClaimTooLate    = errors.New("claim window has closed for this round")
	ErrClaimsSettled   = errors.New("claims are already settled for this round")
	ErrClaimNotPending = errors.New("claim is not pending")

	// Payment errors
	ErrCheckoutNotFound = errors.New("checkout session not found")
	ErrInvalidAmount    = errors.New("amount must be positive")
)
