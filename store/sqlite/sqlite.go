// Package sqlite implements the krate store contract on a SQLite table
// using modernc.org/sqlite (pure Go, no CGO).
//
// One logical table per store instance, columns
// (key TEXT PRIMARY KEY, modified INTEGER, value BLOB), plus a unique index
// on key so the one-record-per-key invariant is enforced by the storage
// layer rather than application logic. Modified times are stored as Unix
// milliseconds. WAL mode is enabled for concurrent read performance.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/SonPatrick/Krate/store"
)

// DefaultTable is the table name used when Options.Table is empty.
const DefaultTable = "krate"

var tableNameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Options struct {
	// Path is the database file path, or ":memory:" for an in-memory
	// database. Required.
	Path string

	// Table overrides the table name. Must match [A-Za-z_][A-Za-z0-9_]*.
	Table string
}

// Store is a table-backed krate store. The underlying connection is owned
// by the store: acquired in Open, released in Close.
type Store struct {
	db    *sql.DB
	table string

	putStmt       string
	getStmt       string
	modifiedStmt  string
	removeStmt    string
	keysStmt      string
	modifiedsStmt string

	now func() time.Time
}

var _ store.Store = (*Store)(nil)

func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, errors.New("sqlite: path is required")
	}
	table := opts.Table
	if table == "" {
		table = DefaultTable
	}
	if !tableNameRE.MatchString(table) {
		return nil, fmt.Errorf("sqlite: invalid table name %q", table)
	}

	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, err
	}
	// A single connection sidesteps SQLITE_BUSY between writers and keeps
	// ":memory:" databases coherent across calls.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}

	schema := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %q (
			key      TEXT    NOT NULL PRIMARY KEY,
			modified INTEGER NOT NULL,
			value    BLOB    NOT NULL
		)`, table)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create table: %w", err)
	}
	index := fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %q ON %q (key)`,
		"idx_"+table+"_key", table)
	if _, err := db.Exec(index); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create index: %w", err)
	}

	s := &Store{
		db:    db,
		table: table,
		now:   time.Now,
	}
	s.putStmt = fmt.Sprintf(
		`INSERT INTO %q (key, modified, value) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET modified = excluded.modified, value = excluded.value`,
		table)
	s.getStmt = fmt.Sprintf(`SELECT modified, value FROM %q WHERE key = ?`, table)
	s.modifiedStmt = fmt.Sprintf(`SELECT modified FROM %q WHERE key = ?`, table)
	s.removeStmt = fmt.Sprintf(`DELETE FROM %q WHERE key = ?`, table)
	s.keysStmt = fmt.Sprintf(`SELECT key FROM %q`, table)
	s.modifiedsStmt = fmt.Sprintf(`SELECT key, modified FROM %q`, table)
	return s, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, s.putStmt, key, s.now().UnixMilli(), value)
	return err
}

func (s *Store) Get(ctx context.Context, key string) (store.Record, bool, error) {
	var millis int64
	var value []byte
	err := s.db.QueryRowContext(ctx, s.getStmt, key).Scan(&millis, &value)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Record{}, false, nil
	}
	if err != nil {
		return store.Record{}, false, err
	}
	return store.Record{Key: key, Value: value, Modified: time.UnixMilli(millis)}, true, nil
}

func (s *Store) Modified(ctx context.Context, key string) (time.Time, error) {
	var millis int64
	err := s.db.QueryRowContext(ctx, s.modifiedStmt, key).Scan(&millis)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(millis), nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, s.removeStmt, key)
	return err
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.keysStmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Modifieds(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, s.modifiedsStmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var k string
		var millis int64
		if err := rows.Scan(&k, &millis); err != nil {
			return nil, err
		}
		out[k] = time.UnixMilli(millis)
	}
	return out, rows.Err()
}

func (s *Store) Close(context.Context) error {
	return s.db.Close()
}
