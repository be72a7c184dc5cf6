package krate

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Deduped collapses concurrent identical fetches: while one call for key is
// in flight, later calls wait for and share its result instead of hitting
// the remote source again. Combinator sequencing is unchanged; this only
// wraps the fetch function.
//
//	var g singleflight.Group
//	results := krate.GetAndFetch(ctx, k, "user:1",
//	    krate.Deduped(&g, "user:1", fetchUser))
func Deduped[T any](g *singleflight.Group, key string, fetch FetchFunc[T]) FetchFunc[T] {
	return func(ctx context.Context) (T, error) {
		v, err, _ := g.Do(key, func() (any, error) {
			return fetch(ctx)
		})
		if err != nil {
			var zero T
			return zero, err
		}
		return v.(T), nil
	}
}
