package krate

import (
	"context"
	"time"
)

// FetchFunc loads a value from the remote source for GetAndFetch.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// RefreshFunc loads a value for GetOrFetch. It receives the key's
// last-modified time (the zero time when the key has never been written),
// so conditional or delta fetches are possible. Returning ok=false abstains:
// nothing is stored and nothing further is emitted, which is a valid,
// error-free outcome.
type RefreshFunc[T any] func(ctx context.Context, lastModified time.Time) (T, bool, error)

// Result is one item of a combinator stream: a value or an error, never
// both.
type Result[T any] struct {
	Value T
	Err   error
}

// GetAndFetch reads the cache and then always fetches.
//
// The stream delivers the cached value for key first, if one exists, then
// invokes fetch, stores its result under key, and delivers it; the channel
// closes when done. The cache read strictly precedes the fetch: the cached
// emission is an unbuffered send, so fetch does not start until the
// consumer has received (or ctx has ended) step one. An already-delivered
// cached value is never retracted by a later fetch failure; the failure
// follows it on the stream as a *FetchError.
//
// Cancelling ctx before fetch starts guarantees fetch is never invoked.
// Once fetch has completed, its write-back runs on a context detached from
// ctx's cancellation, so a consumer that walks away mid-flight can still
// find the fetched value cached (fire-and-forget write-back).
func GetAndFetch[T any](ctx context.Context, k *Krate, key string, fetch FetchFunc[T]) <-chan Result[T] {
	out := make(chan Result[T])
	go func() {
		defer close(out)

		cached, _, ok, err := getWithModified[T](ctx, k, key)
		if err != nil {
			emit(ctx, out, Result[T]{Err: err})
			return
		}
		if ok {
			if !emit(ctx, out, Result[T]{Value: cached}) {
				return
			}
		}
		if ctx.Err() != nil {
			return
		}

		fetched, err := fetch(ctx)
		if err != nil {
			k.hooks.FetchFailed(key, err)
			emit(ctx, out, Result[T]{Err: &FetchError{Key: key, Err: err}})
			return
		}
		if err := Put(context.WithoutCancel(ctx), k, key, fetched); err != nil {
			emit(ctx, out, Result[T]{Err: err})
			return
		}
		emit(ctx, out, Result[T]{Value: fetched})
	}()
	return out
}

// GetOrFetch reads the cache and lets fetch decide whether a fresh value
// is needed.
//
// The stream delivers the cached value for key first, if one exists. fetch
// is then invoked either way, with the key's last-modified time (zero time
// when nothing was cached). If fetch yields a value it is stored and
// delivered; if it abstains the stream simply ends. Net length is 0, 1, or
// 2 items. Error and cancellation behavior match GetAndFetch.
func GetOrFetch[T any](ctx context.Context, k *Krate, key string, fetch RefreshFunc[T]) <-chan Result[T] {
	out := make(chan Result[T])
	go func() {
		defer close(out)

		cached, modified, ok, err := getWithModified[T](ctx, k, key)
		if err != nil {
			emit(ctx, out, Result[T]{Err: err})
			return
		}
		if ok {
			if !emit(ctx, out, Result[T]{Value: cached}) {
				return
			}
		}
		if ctx.Err() != nil {
			return
		}

		fetched, yielded, err := fetch(ctx, modified)
		if err != nil {
			k.hooks.FetchFailed(key, err)
			emit(ctx, out, Result[T]{Err: &FetchError{Key: key, Err: err}})
			return
		}
		if !yielded {
			return
		}
		if err := Put(context.WithoutCancel(ctx), k, key, fetched); err != nil {
			emit(ctx, out, Result[T]{Err: err})
			return
		}
		emit(ctx, out, Result[T]{Value: fetched})
	}()
	return out
}

// emit sends r unless ctx ends first; reports whether the send happened.
func emit[T any](ctx context.Context, out chan<- Result[T], r Result[T]) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}
