package krate

import (
	"context"
	"time"
)

// Get looks up key and decodes the record into a T. Absence is not an
// error: a key that was never written (or was removed) returns ok=false
// with a nil error.
func Get[T any](ctx context.Context, k *Krate, key string) (T, bool, error) {
	v, _, ok, err := getWithModified[T](ctx, k, key)
	return v, ok, err
}

// Put encodes value through the serializer and interceptor, upserts the
// record, and publishes key on the Observe stream once the write is
// durably committed. A put for an existing key overwrites it; there is
// never more than one record per key.
func Put[T any](ctx context.Context, k *Krate, key string, value T) error {
	return k.putValue(ctx, key, value)
}

func getWithModified[T any](ctx context.Context, k *Krate, key string) (T, time.Time, bool, error) {
	var v T
	plain, modified, ok, err := k.getRaw(ctx, key)
	if err != nil || !ok {
		return v, modified, false, err
	}
	if err := k.ser.Unmarshal(plain, &v); err != nil {
		k.hooks.DecodeFailed(key, err)
		var zero T
		return zero, modified, false, &SerializationError{Key: key, Err: err}
	}
	return v, modified, true, nil
}

// View is a fixed-type window onto a Krate for callers whose store holds a
// single value type. It adds nothing over the package-level functions
// beyond binding T once.
type View[T any] struct {
	k *Krate
}

func NewView[T any](k *Krate) View[T] { return View[T]{k: k} }

func (v View[T]) Get(ctx context.Context, key string) (T, bool, error) {
	return Get[T](ctx, v.k, key)
}

func (v View[T]) Put(ctx context.Context, key string, value T) error {
	return Put(ctx, v.k, key, value)
}

func (v View[T]) GetAndFetch(ctx context.Context, key string, fetch FetchFunc[T]) <-chan Result[T] {
	return GetAndFetch(ctx, v.k, key, fetch)
}

func (v View[T]) GetOrFetch(ctx context.Context, key string, fetch RefreshFunc[T]) <-chan Result[T] {
	return GetOrFetch(ctx, v.k, key, fetch)
}
