// Package store defines the storage abstraction used by krate.
//
// A Store is a durable key -> (bytes, modified-timestamp) mapping. It never
// interprets the bytes it holds: serialization and byte transforms happen
// above it. Implementations MUST be byte-for-byte transparent: Get must
// return exactly the []byte previously passed to Put for the same key.
//
// Absence is not an error anywhere in this contract. A key with no record
// reads as (Record{}, false, nil); its modified time is the zero time.
package store

import (
	"context"
	"time"
)

// Record is a stored (key, bytes, modified) triple.
type Record struct {
	Key      string
	Value    []byte
	Modified time.Time
}

// Store is a durable key-value store with per-key modification times.
// Must be safe for concurrent use.
//
// Put is an upsert: insert when absent, otherwise replace the value and
// stamp a fresh modified time. The replacement must be atomic per key; a
// concurrent Get observes either the old record or the new one, never a
// half-written mix. Concurrent Puts to the same key race and the later
// write wins.
type Store interface {
	// Put upserts value under key and stamps modified = now.
	Put(ctx context.Context, key string, value []byte) error

	// Get returns (record, true, nil) on hit; (Record{}, false, nil) on miss.
	Get(ctx context.Context, key string) (Record, bool, error)

	// Modified returns the record's modified time, or the zero time when
	// no record exists for key.
	Modified(ctx context.Context, key string) (time.Time, error)

	// Remove deletes the record if present. Removing an absent key is a
	// no-op, not an error.
	Remove(ctx context.Context, key string) error

	// Keys returns every stored key, sorted ascending.
	Keys(ctx context.Context) ([]string, error)

	// Modifieds returns the modified time for every stored key.
	Modifieds(ctx context.Context) (map[string]time.Time, error)

	// Close releases resources.
	Close(ctx context.Context) error
}
