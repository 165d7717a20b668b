package cache

import (
	"context"
	"time"
)

// Store defines the interface to the shared key-value cache service used for
// short-lived markers such as the duplicate-order lock. Implementations must
// be safe for concurrent use across request-handling goroutines and across
// processes.
type Store interface {
	// Get retrieves the value at key. Returns an empty string when the key
	// does not exist.
	Get(ctx context.Context, key string) (string, error)

	// SetWithTTL stores a value at key with the given expiry.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
