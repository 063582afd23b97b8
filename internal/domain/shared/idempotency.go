package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which operation keys were already applied.
// The production coordinator uses it to reject a retried lifecycle
// transition whose previous attempt already committed; the event layer
// uses it to deduplicate redelivered events.
type IdempotencyStore interface {
	// MarkProcessed records key with the given TTL. It reports true
	// when the key was newly recorded, false when already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether key was recorded and has not expired.
	IsProcessed(ctx context.Context, key string) (bool, error)

	Close() error
}

// IdempotencyConfig controls the duplicate guard.
type IdempotencyConfig struct {
	// TTL bounds how long an applied key blocks repeats.
	TTL time.Duration

	Enabled bool
}

// DefaultIdempotencyConfig enables the guard with a 24h window.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
