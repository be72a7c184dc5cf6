package krate

import (
	"context"
	"time"

	"github.com/SonPatrick/Krate/intercept"
	"github.com/SonPatrick/Krate/serializer"
	"github.com/SonPatrick/Krate/store"
)

// Krate is the cache façade: a durable store, a serializer+interceptor
// pipeline, and a change-notification bus. Typed reads and writes are the
// package-level generic functions (Get, Put, GetAndFetch, GetOrFetch);
// the untyped operations live here.
type Krate struct {
	store store.Store
	ser   serializer.Serializer
	icept intercept.Interceptor
	log   Logger
	hooks Hooks
	bus   *broadcaster
}

// Keys returns every cached key, sorted ascending.
func (k *Krate) Keys(ctx context.Context) ([]string, error) {
	keys, err := k.store.Keys(ctx)
	if err != nil {
		return nil, &StorageError{Op: "keys", Err: err}
	}
	return keys, nil
}

// Modifieds returns the last-modified time for every cached key.
func (k *Krate) Modifieds(ctx context.Context) (map[string]time.Time, error) {
	m, err := k.store.Modifieds(ctx)
	if err != nil {
		return nil, &StorageError{Op: "modifieds", Err: err}
	}
	return m, nil
}

// Modified returns the last-modified time for key, or the zero time when
// the key has never been written.
func (k *Krate) Modified(ctx context.Context, key string) (time.Time, error) {
	t, err := k.store.Modified(ctx, key)
	if err != nil {
		return time.Time{}, &StorageError{Op: "modified", Key: key, Err: err}
	}
	return t, nil
}

// Remove deletes the record for key. Removing an absent key succeeds.
// Removals are not published on the Observe stream; only writes are
// observable. That asymmetry is part of the contract, not an oversight.
func (k *Krate) Remove(ctx context.Context, key string) error {
	if err := k.store.Remove(ctx, key); err != nil {
		return &StorageError{Op: "remove", Key: key, Err: err}
	}
	k.log.Debug("removed key", Fields{"key": key})
	return nil
}

// Observe subscribes to the keys of future successful writes. The stream is
// hot: events published before the subscription are never replayed. Each
// subscription buffers independently, so a slow consumer delays only
// itself. Cancel the subscription when done; Close cancels all of them.
func (k *Krate) Observe() *Subscription {
	return k.bus.subscribe(k.hooks)
}

// Close cancels all subscriptions and releases the store.
func (k *Krate) Close(ctx context.Context) error {
	k.bus.close()
	return k.store.Close(ctx)
}

// getRaw reads and opens the stored bytes for key without unmarshaling.
func (k *Krate) getRaw(ctx context.Context, key string) ([]byte, time.Time, bool, error) {
	rec, ok, err := k.store.Get(ctx, key)
	if err != nil {
		return nil, time.Time{}, false, &StorageError{Op: "get", Key: key, Err: err}
	}
	if !ok {
		return nil, time.Time{}, false, nil
	}
	plain, err := k.icept.Open(key, rec.Value)
	if err != nil {
		k.hooks.DecodeFailed(key, err)
		return nil, time.Time{}, false, &SerializationError{Key: key, Err: err}
	}
	return plain, rec.Modified, true, nil
}

// putValue encodes value through the pipeline, commits it, then publishes
// the key on the bus. Notification strictly follows the durable write and
// never happens on failure.
func (k *Krate) putValue(ctx context.Context, key string, value any) error {
	payload, err := k.ser.Marshal(value)
	if err != nil {
		return &SerializationError{Key: key, Err: err}
	}
	sealed, err := k.icept.Seal(key, payload)
	if err != nil {
		return &SerializationError{Key: key, Err: err}
	}
	if err := k.store.Put(ctx, key, sealed); err != nil {
		return &StorageError{Op: "put", Key: key, Err: err}
	}
	k.hooks.PutCommitted(key, len(sealed))
	k.log.Debug("put committed", Fields{"key": key, "bytes": len(sealed)})
	k.bus.publish(key)
	return nil
}
