// Package asynchook decouples krate's diagnostic hooks from the hot path.
// Events are handed to a bounded queue and replayed on worker goroutines;
// when the queue is full, events are dropped rather than blocking a write.
//
//	raw := myHooks{}              // your sink (metrics, logs, ...)
//	hooks := asynchook.New(raw, 1, 1000)
//	defer hooks.Close()
//
//	k, _ := krate.New(krate.Options{Store: st, Hooks: hooks})
package asynchook

import (
	"sync"

	krate "github.com/SonPatrick/Krate"
)

type Hooks struct {
	inner krate.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ krate.Hooks = (*Hooks)(nil)

func New(inner krate.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) PutCommitted(key string, size int) {
	h.try(func() { h.inner.PutCommitted(key, size) })
}

func (h *Hooks) DecodeFailed(key string, err error) {
	h.try(func() { h.inner.DecodeFailed(key, err) })
}

func (h *Hooks) FetchFailed(key string, err error) {
	h.try(func() { h.inner.FetchFailed(key, err) })
}

func (h *Hooks) ObserverLagging(queued int) {
	h.try(func() { h.inner.ObserverLagging(queued) })
}
