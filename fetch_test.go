package krate

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/singleflight"
)

// collect drains a combinator stream into values and a trailing error.
func collect[T any](t *testing.T, ch <-chan Result[T]) ([]T, error) {
	t.Helper()
	var vals []T
	var err error
	timeout := time.After(5 * time.Second)
	for {
		select {
		case r, ok := <-ch:
			if !ok {
				return vals, err
			}
			if r.Err != nil {
				err = r.Err
				continue
			}
			vals = append(vals, r.Value)
		case <-timeout:
			t.Fatalf("timed out draining stream")
		}
	}
}

func TestGetAndFetchMissYieldsFetchedOnly(t *testing.T) {
	ctx := context.Background()
	k := newTestKrate(t, nil)

	vals, err := collect(t, GetAndFetch(ctx, k, "foo", func(context.Context) (int, error) {
		return 42, nil
	}))
	if err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if len(vals) != 1 || vals[0] != 42 {
		t.Fatalf("vals = %v, want [42]", vals)
	}

	got, ok, err := Get[int](ctx, k, "foo")
	if err != nil || !ok || got != 42 {
		t.Fatalf("fetched value not written back: ok=%v err=%v got=%d", ok, err, got)
	}
}

func TestGetAndFetchHitYieldsCachedThenFetched(t *testing.T) {
	ctx := context.Background()
	k := newTestKrate(t, nil)

	if err := Put(ctx, k, "foo", 7); err != nil {
		t.Fatal(err)
	}

	vals, err := collect(t, GetAndFetch(ctx, k, "foo", func(context.Context) (int, error) {
		return 42, nil
	}))
	if err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if len(vals) != 2 || vals[0] != 7 || vals[1] != 42 {
		t.Fatalf("vals = %v, want [7 42] in that order", vals)
	}

	got, _, _ := Get[int](ctx, k, "foo")
	if got != 42 {
		t.Fatalf("store holds %d after refresh, want 42", got)
	}
}

func TestGetAndFetchErrorFollowsCachedValue(t *testing.T) {
	ctx := context.Background()
	k := newTestKrate(t, nil)

	if err := Put(ctx, k, "foo", 7); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("remote down")
	vals, err := collect(t, GetAndFetch(ctx, k, "foo", func(context.Context) (int, error) {
		return 0, boom
	}))
	if len(vals) != 1 || vals[0] != 7 {
		t.Fatalf("cached value must be delivered before the error, vals=%v", vals)
	}
	var fe *FetchError
	if !errors.As(err, &fe) || !errors.Is(err, boom) {
		t.Fatalf("want *FetchError wrapping cause, got %v", err)
	}

	// The cached value is never retracted.
	got, ok, _ := Get[int](ctx, k, "foo")
	if !ok || got != 7 {
		t.Fatalf("cached value lost after fetch failure: ok=%v got=%d", ok, got)
	}
}

func TestGetOrFetchAbstainOnEmptyCacheYieldsNothing(t *testing.T) {
	ctx := context.Background()
	k := newTestKrate(t, nil)

	var sawModified time.Time
	called := false
	vals, err := collect(t, GetOrFetch(ctx, k, "foo", func(_ context.Context, lastModified time.Time) (int, bool, error) {
		called = true
		sawModified = lastModified
		return 0, false, nil
	}))
	if err != nil {
		t.Fatalf("abstaining fetch must not error the stream: %v", err)
	}
	if len(vals) != 0 {
		t.Fatalf("vals = %v, want empty", vals)
	}
	if !called {
		t.Fatalf("fetch must be invoked even on a cache miss")
	}
	if !sawModified.IsZero() {
		t.Fatalf("lastModified = %v, want the zero-time sentinel", sawModified)
	}
}

func TestGetOrFetchCacheHitWithAbstain(t *testing.T) {
	ctx := context.Background()
	k := newTestKrate(t, nil)

	if err := Put(ctx, k, "foo", 7); err != nil {
		t.Fatal(err)
	}

	var sawModified time.Time
	vals, err := collect(t, GetOrFetch(ctx, k, "foo", func(_ context.Context, lastModified time.Time) (int, bool, error) {
		sawModified = lastModified
		return 0, false, nil
	}))
	if err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if len(vals) != 1 || vals[0] != 7 {
		t.Fatalf("vals = %v, want [7]", vals)
	}
	if sawModified.IsZero() {
		t.Fatalf("fetch must receive the key's real last-modified time")
	}
}

func TestGetOrFetchCacheHitWithFreshValue(t *testing.T) {
	ctx := context.Background()
	k := newTestKrate(t, nil)

	if err := Put(ctx, k, "foo", 7); err != nil {
		t.Fatal(err)
	}

	vals, err := collect(t, GetOrFetch(ctx, k, "foo", func(context.Context, time.Time) (int, bool, error) {
		return 42, true, nil
	}))
	if err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if len(vals) != 2 || vals[0] != 7 || vals[1] != 42 {
		t.Fatalf("vals = %v, want [7 42]", vals)
	}

	got, _, _ := Get[int](ctx, k, "foo")
	if got != 42 {
		t.Fatalf("store holds %d, want 42", got)
	}
}

func TestGetOrFetchErrorPropagates(t *testing.T) {
	ctx := context.Background()
	k := newTestKrate(t, nil)

	boom := errors.New("remote down")
	vals, err := collect(t, GetOrFetch(ctx, k, "foo", func(context.Context, time.Time) (int, bool, error) {
		return 0, false, boom
	}))
	if len(vals) != 0 {
		t.Fatalf("vals = %v, want empty", vals)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("want error wrapping cause, got %v", err)
	}
}

func TestCancelBeforeConsumingSkipsFetch(t *testing.T) {
	k := newTestKrate(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var fetched atomic.Bool
	ch := GetAndFetch(ctx, k, "foo", func(context.Context) (int, error) {
		fetched.Store(true)
		return 42, nil
	})

	// Drain whatever the combinator managed to do before noticing ctx.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				if fetched.Load() {
					t.Fatalf("fetch was invoked despite cancelled context")
				}
				return
			}
		case <-deadline:
			t.Fatalf("stream did not close after cancellation")
		}
	}
}

func TestWriteBackSurvivesConsumerCancellation(t *testing.T) {
	k := newTestKrate(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	fetchEntered := make(chan struct{})
	release := make(chan struct{})

	ch := GetAndFetch(ctx, k, "foo", func(context.Context) (int, error) {
		close(fetchEntered)
		<-release
		return 42, nil
	})

	<-fetchEntered
	cancel() // consumer walks away while fetch is in flight
	close(release)

	// Stream closes without delivering; the write-back still lands.
	for range ch {
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		got, ok, _ := Get[int](context.Background(), k, "foo")
		if ok && got == 42 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("fire-and-forget write-back never landed: ok=%v got=%d", ok, got)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDedupedCollapsesConcurrentFetches(t *testing.T) {
	ctx := context.Background()
	k := newTestKrate(t, nil)

	var g singleflight.Group
	var calls atomic.Int32
	gate := make(chan struct{})
	fetch := Deduped(&g, "foo", func(context.Context) (int, error) {
		calls.Add(1)
		<-gate
		return 42, nil
	})

	a := GetAndFetch(ctx, k, "foo", fetch)
	b := GetAndFetch(ctx, k, "foo", fetch)

	// Both streams are past the cache read once their fetches have been
	// invoked; give them a moment to pile onto the same flight.
	time.Sleep(50 * time.Millisecond)
	close(gate)

	for _, ch := range []<-chan Result[int]{a, b} {
		vals, err := collect(t, ch)
		if err != nil {
			t.Fatalf("stream error: %v", err)
		}
		if len(vals) == 0 || vals[len(vals)-1] != 42 {
			t.Fatalf("vals = %v, want trailing 42", vals)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("fetch ran %d times, want 1", calls.Load())
	}
}
