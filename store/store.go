// Package store provides the durable key->blob persistence used by the game
// engines to snapshot their state across restarts.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value exists under the key.
var ErrNotFound = errors.New("store: key not found")

// Store is the persistence substrate for engine snapshots. Each engine
// instance writes its full state under a single key, last writer wins.
type Store interface {
	// Get returns the blob stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put overwrites the blob stored under key.
	Put(ctx context.Context, key string, value []byte) error
}
