package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// GuestAccountTTL expires idle guest accounts; registered accounts and
	// their history never expire
	GuestAccountTTL time.Duration

	// CheckoutTTL expires abandoned checkout sessions
	CheckoutTTL time.Duration

	// TransactionHistoryLimit caps the per-account history list length
	TransactionHistoryLimit int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:                     "redis://localhost:6379",
		PoolSize:                10,
		MinIdleConns:            2,
		GuestAccountTTL:         24 * time.Hour,
		CheckoutTTL:             time.Hour,
		TransactionHistoryLimit: 500,
	}
}
