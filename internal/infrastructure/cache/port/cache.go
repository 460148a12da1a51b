package port

import (
	"context"
	"time"
)

// Cache is the key-value store backing session lookups. Values are opaque
// strings; serialization belongs to the caller. Implementations must be safe
// for concurrent use.
type Cache interface {
	// Get fetches the value for key, or ErrMiss when the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key. A zero or negative TTL means no expiration.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Del removes the given keys and returns how many existed.
	Del(ctx context.Context, keys ...string) (int64, error)
}

// ErrMiss distinguishes an absent key from a transport failure.
var ErrMiss = errMiss{}

type errMiss struct{}

func (e errMiss) Error() string { return "cache: miss" }
