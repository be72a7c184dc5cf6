// Package memory implements the krate store contract in process memory.
// Nothing survives a restart; it exists for tests and for composing with
// durable stores.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SonPatrick/Krate/store"
)

type Store struct {
	mu   sync.RWMutex
	recs map[string]store.Record
	now  func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		recs: make(map[string]store.Record),
		now:  time.Now,
	}
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	cp := append([]byte(nil), value...)
	s.mu.Lock()
	s.recs[key] = store.Record{Key: key, Value: cp, Modified: s.now()}
	s.mu.Unlock()
	return nil
}

func (s *Store) Get(_ context.Context, key string) (store.Record, bool, error) {
	s.mu.RLock()
	rec, ok := s.recs[key]
	s.mu.RUnlock()
	if !ok {
		return store.Record{}, false, nil
	}
	rec.Value = append([]byte(nil), rec.Value...)
	return rec, true, nil
}

func (s *Store) Modified(_ context.Context, key string) (time.Time, error) {
	s.mu.RLock()
	rec, ok := s.recs[key]
	s.mu.RUnlock()
	if !ok {
		return time.Time{}, nil
	}
	return rec.Modified, nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.recs, key)
	s.mu.Unlock()
	return nil
}

func (s *Store) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	keys := make([]string, 0, len(s.recs))
	for k := range s.recs {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Modifieds(_ context.Context) (map[string]time.Time, error) {
	s.mu.RLock()
	out := make(map[string]time.Time, len(s.recs))
	for k, rec := range s.recs {
		out[k] = rec.Modified
	}
	s.mu.RUnlock()
	return out, nil
}

func (s *Store) Close(context.Context) error { return nil }
