package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/cinedash/pkg/idx"
)

var ErrNotFound = errors.New("store: not found")

// DefaultTTL bounds how long an untouched client entry is kept.
const DefaultTTL = 30 * 24 * time.Hour

// ClientStorage is a per-browser key/value store. Every browser is
// identified by the opaque client id carried in its cookie, and each one
// gets its own namespace of keys. Concrete drivers (memory, sqlite, redis)
// implement this and must be safe for concurrent use.
//
// Entries expire after the driver's TTL without a write. Get never returns
// an expired entry.
type ClientStorage interface {
	// Get returns the value under key, or ErrNotFound.
	Get(ctx context.Context, clientID idx.ID, key string) (string, error)

	// Set creates or replaces the value under key and refreshes its expiry.
	Set(ctx context.Context, clientID idx.ID, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, clientID idx.ID, key string) error

	// DeleteExpired purges entries past their expiry and reports how many
	// were removed. Drivers with native expiry return 0.
	DeleteExpired(ctx context.Context) (int64, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error
}
