// Package front decorates any krate store with a ristretto read-front.
//
// Reads are served from process memory when hot; misses fall through to the
// inner store and warm the front. Writes and removals go to the inner store
// first and then drop the front entry, so the next read repopulates from
// the authoritative record. Listing operations always delegate to the inner
// store. Coherent within one process only, which is the scope krate targets.
package front

import (
	"context"
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/SonPatrick/Krate/store"
)

type Config struct {
	// Inner is the authoritative store. Required.
	Inner store.Store

	// Ristretto sizing. Zero values pick defaults suitable for a few
	// thousand hot records.
	NumCounters int64
	MaxCost     int64
	BufferItems int64
}

type Front struct {
	inner store.Store
	c     *rc.Cache
}

var _ store.Store = (*Front)(nil)

func New(cfg Config) (*Front, error) {
	if cfg.Inner == nil {
		return nil, errors.New("front: inner store is required")
	}
	counters := cfg.NumCounters
	if counters <= 0 {
		counters = 100_000
	}
	maxCost := cfg.MaxCost
	if maxCost <= 0 {
		maxCost = 64 << 20 // 64 MiB of record bytes
	}
	buffers := cfg.BufferItems
	if buffers <= 0 {
		buffers = 64
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: counters,
		MaxCost:     maxCost,
		BufferItems: buffers,
	})
	if err != nil {
		return nil, err
	}
	return &Front{inner: cfg.Inner, c: c}, nil
}

func (f *Front) Put(ctx context.Context, key string, value []byte) error {
	if err := f.inner.Put(ctx, key, value); err != nil {
		return err
	}
	f.c.Del(key)
	return nil
}

func (f *Front) Get(ctx context.Context, key string) (store.Record, bool, error) {
	if v, ok := f.c.Get(key); ok {
		if rec, ok := v.(store.Record); ok {
			// Copy so a caller mutating the returned bytes cannot
			// corrupt the front entry shared with other callers.
			rec.Value = append([]byte(nil), rec.Value...)
			return rec, true, nil
		}
		f.c.Del(key) // unexpected entry shape
	}
	rec, ok, err := f.inner.Get(ctx, key)
	if err != nil || !ok {
		return store.Record{}, false, err
	}
	f.c.Set(key, rec, int64(len(rec.Key)+len(rec.Value)))
	return rec, true, nil
}

func (f *Front) Modified(ctx context.Context, key string) (time.Time, error) {
	if v, ok := f.c.Get(key); ok {
		if rec, ok := v.(store.Record); ok {
			return rec.Modified, nil
		}
	}
	return f.inner.Modified(ctx, key)
}

func (f *Front) Remove(ctx context.Context, key string) error {
	if err := f.inner.Remove(ctx, key); err != nil {
		return err
	}
	f.c.Del(key)
	return nil
}

func (f *Front) Keys(ctx context.Context) ([]string, error) {
	return f.inner.Keys(ctx)
}

func (f *Front) Modifieds(ctx context.Context) (map[string]time.Time, error) {
	return f.inner.Modifieds(ctx)
}

func (f *Front) Close(ctx context.Context) error {
	f.c.Close()
	return f.inner.Close(ctx)
}
