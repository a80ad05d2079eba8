package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys of operations that are running or done so a
// retried request does not repeat an external side effect
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl. It returns true if the key was newly
	// claimed and false if someone already holds it.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks whether key is currently claimed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release drops a claim so the operation can be attempted again
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}
