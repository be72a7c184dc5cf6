// Package redis implements the krate store contract on Redis.
//
// Each record is stored under "<namespace>:<key>" as a wire envelope
// carrying the modified timestamp next to the payload. The keyspace under
// the namespace prefix is owned by this store; foreign writes there are
// reported as corruption, not silently served.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/SonPatrick/Krate/internal/wire"
	"github.com/SonPatrick/Krate/store"
)

var ErrNilClient = errors.New("redis store: nil client")

// DefaultNamespace prefixes record keys when Config.Namespace is empty.
const DefaultNamespace = "krate"

const mgetBatch = 512

type Config struct {
	Client goredis.UniversalClient

	// Namespace isolates this store's keys. Defaults to DefaultNamespace.
	Namespace string

	// CloseClient releases the client in Close. Set only if this store
	// exclusively owns the client.
	CloseClient bool
}

type Store struct {
	rdb         goredis.UniversalClient
	prefix      string
	closeClient bool
	now         func() time.Time
}

var _ store.Store = (*Store)(nil)

func New(cfg Config) (*Store, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	return &Store{
		rdb:         cfg.Client,
		prefix:      ns + ":",
		closeClient: cfg.CloseClient,
		now:         time.Now,
	}, nil
}

func (s *Store) storageKey(key string) string { return s.prefix + key }

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	b := wire.EncodeRecord(s.now(), value)
	return s.rdb.Set(ctx, s.storageKey(key), b, 0).Err()
}

func (s *Store) Get(ctx context.Context, key string) (store.Record, bool, error) {
	b, err := s.rdb.Get(ctx, s.storageKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return store.Record{}, false, nil
	}
	if err != nil {
		return store.Record{}, false, err
	}
	modified, payload, err := wire.DecodeRecord(b)
	if err != nil {
		return store.Record{}, false, fmt.Errorf("redis store: key %q: %w", key, err)
	}
	return store.Record{Key: key, Value: payload, Modified: modified}, true, nil
}

func (s *Store) Modified(ctx context.Context, key string) (time.Time, error) {
	b, err := s.rdb.Get(ctx, s.storageKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	modified, err := wire.DecodeModified(b)
	if err != nil {
		return time.Time{}, fmt.Errorf("redis store: key %q: %w", key, err)
	}
	return modified, nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.storageKey(key)).Err()
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Modifieds(ctx context.Context) (map[string]time.Time, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]time.Time, len(keys))
	for start := 0; start < len(keys); start += mgetBatch {
		end := start + mgetBatch
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[start:end]
		storageKeys := make([]string, len(batch))
		for i, k := range batch {
			storageKeys[i] = s.storageKey(k)
		}
		vals, err := s.rdb.MGet(ctx, storageKeys...).Result()
		if err != nil {
			return nil, err
		}
		for i, v := range vals {
			raw, ok := v.(string)
			if !ok {
				continue // key vanished between SCAN and MGET
			}
			modified, err := wire.DecodeModified([]byte(raw))
			if err != nil {
				return nil, fmt.Errorf("redis store: key %q: %w", batch[i], err)
			}
			out[batch[i]] = modified
		}
	}
	return out, nil
}

func (s *Store) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Close releases the underlying client only when this store owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (s *Store) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
