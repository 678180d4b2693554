package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// MaxRetries bounds how often a unit of work is re-run after a
	// concurrent write to one of the accounts it read
	MaxRetries int

	// ProcessedTTL is how long transaction ids are remembered for replay
	// protection
	ProcessedTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   5,
		ProcessedTTL: 24 * time.Hour,
	}
}
