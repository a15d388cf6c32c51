// Package session persists token to owner mappings in an external key-value
// store with a store-enforced expiry. The store is the sole source of truth
// for live sessions; the service keeps no in-memory copy.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the token has no live session. An expired session is
// indistinguishable from one that never existed.
var ErrNotFound = errors.New("session: not found")

// Store defines how sessions are stored and retrieved.
type Store interface {
	// Put persists token -> owner with the given expiry.
	Put(ctx context.Context, token, owner string, ttl time.Duration) error
	// Get returns the owner recorded for token, or ErrNotFound.
	Get(ctx context.Context, token string) (string, error)
}
