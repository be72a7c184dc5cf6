// Package bigcache implements the krate store contract on allegro/bigcache.
//
// This backend is ephemeral: entries live in process memory and may be
// evicted after LifeWindow. It is meant for development setups and tests
// that want krate semantics without a database file. Records carry their
// modified timestamp in a wire envelope since bigcache stores raw bytes.
package bigcache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/SonPatrick/Krate/internal/wire"
	"github.com/SonPatrick/Krate/store"
)

type Config struct {
	// LifeWindow is bigcache's entry lifetime. 0 defaults to 24h; krate
	// itself defines no expiry, so pick a window longer than the data's
	// useful life.
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int
}

type Store struct {
	c   *bc.BigCache
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

func New(cfg Config) (*Store, error) {
	life := cfg.LifeWindow
	if life <= 0 {
		life = 24 * time.Hour
	}
	conf := bc.DefaultConfig(life)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	return &Store{c: c, now: time.Now}, nil
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	return s.c.Set(key, wire.EncodeRecord(s.now(), value))
}

func (s *Store) Get(_ context.Context, key string) (store.Record, bool, error) {
	b, err := s.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return store.Record{}, false, nil
	}
	if err != nil {
		return store.Record{}, false, err
	}
	modified, payload, err := wire.DecodeRecord(b)
	if err != nil {
		return store.Record{}, false, fmt.Errorf("bigcache store: key %q: %w", key, err)
	}
	return store.Record{Key: key, Value: payload, Modified: modified}, true, nil
}

func (s *Store) Modified(_ context.Context, key string) (time.Time, error) {
	b, err := s.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	modified, err := wire.DecodeModified(b)
	if err != nil {
		return time.Time{}, fmt.Errorf("bigcache store: key %q: %w", key, err)
	}
	return modified, nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	err := s.c.Delete(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (s *Store) Keys(_ context.Context) ([]string, error) {
	var keys []string
	it := s.c.Iterator()
	for it.SetNext() {
		info, err := it.Value()
		if err != nil {
			return nil, err
		}
		keys = append(keys, info.Key())
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Modifieds(_ context.Context) (map[string]time.Time, error) {
	out := make(map[string]time.Time)
	it := s.c.Iterator()
	for it.SetNext() {
		info, err := it.Value()
		if err != nil {
			return nil, err
		}
		modified, err := wire.DecodeModified(info.Value())
		if err != nil {
			return nil, fmt.Errorf("bigcache store: key %q: %w", info.Key(), err)
		}
		out[info.Key()] = modified
	}
	return out, nil
}

func (s *Store) Close(context.Context) error {
	return s.c.Close()
}
