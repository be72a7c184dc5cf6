package sqlite

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T, opts Options) *Store {
	t.Helper()
	if opts.Path == "" {
		opts.Path = filepath.Join(t.TempDir(), "krate.db")
	}
	s, err := Open(opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestOpenValidation(t *testing.T) {
	if _, err := Open(Options{}); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := Open(Options{Path: ":memory:", Table: "bad name"}); err == nil {
		t.Fatalf("expected error for invalid table name")
	}
	if _, err := Open(Options{Path: ":memory:", Table: "1leading"}); err == nil {
		t.Fatalf("expected error for leading digit table name")
	}
}

func TestUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t, Options{})

	if err := s.Put(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Put v1: %v", err)
	}
	first, ok, err := s.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get v1: ok=%v err=%v", ok, err)
	}

	if err := s.Put(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("Put v2: %v", err)
	}
	rec, ok, err := s.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get v2: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(rec.Value, []byte("v2")) {
		t.Fatalf("value = %q, want v2", rec.Value)
	}
	if rec.Modified.Before(first.Modified) {
		t.Fatalf("modified went backwards: %v -> %v", first.Modified, rec.Modified)
	}

	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "k" {
		t.Fatalf("keys = %v, want exactly [k]", keys)
	}
}

func TestMissAndIdempotentRemove(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t, Options{})

	if _, ok, err := s.Get(ctx, "absent"); err != nil || ok {
		t.Fatalf("Get absent: ok=%v err=%v", ok, err)
	}
	mod, err := s.Modified(ctx, "absent")
	if err != nil || !mod.IsZero() {
		t.Fatalf("Modified absent: %v err=%v, want zero time", mod, err)
	}
	if err := s.Remove(ctx, "absent"); err != nil {
		t.Fatalf("Remove absent: %v", err)
	}

	if err := s.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("Get after remove should miss")
	}
}

func TestModifiedStamp(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t, Options{})

	fixed := time.UnixMilli(1700000000000)
	s.now = func() time.Time { return fixed }

	if err := s.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	mod, err := s.Modified(ctx, "k")
	if err != nil {
		t.Fatalf("Modified: %v", err)
	}
	if !mod.Equal(fixed) {
		t.Fatalf("modified = %v, want %v", mod, fixed)
	}

	m, err := s.Modifieds(ctx)
	if err != nil {
		t.Fatalf("Modifieds: %v", err)
	}
	if got := m["k"]; !got.Equal(fixed) {
		t.Fatalf("Modifieds[k] = %v, want %v", got, fixed)
	}
}

func TestKeysSortedAcrossWrites(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t, Options{Table: "custom_tbl"})

	for _, k := range []string{"zeta", "alpha", "mid"} {
		if err := s.Put(ctx, k, []byte(k)); err != nil {
			t.Fatal(err)
		}
	}
	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "krate.db")

	s, err := Open(Options{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Put(ctx, "k", []byte("survives")); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2 := openTemp(t, Options{Path: path})
	rec, ok, err := s2.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get after reopen: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(rec.Value, []byte("survives")) {
		t.Fatalf("value = %q, want survives", rec.Value)
	}
}
