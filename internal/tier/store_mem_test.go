package tier

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testRecord(key string) Record {
	return Record{
		Key:         key,
		FullContent: "full content for " + key,
		ShortDigest: "digest",
		Overview:    "overview",
		CreatedAt:   time.Now().UTC(),
		SourceSize:  20,
	}
}

func TestInMemoryStore_PutGet(t *testing.T) {
	t.Parallel()

	s := NewInMemoryStore()
	ctx := context.Background()

	want := testRecord("2026-08-20")
	if err := s.Put(ctx, want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, "2026-08-20")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FullContent != want.FullContent {
		t.Errorf("got %q, want %q", got.FullContent, want.FullContent)
	}
}

func TestInMemoryStore_GetMissing(t *testing.T) {
	t.Parallel()

	s := NewInMemoryStore()
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("got %v, want ErrRecordNotFound", err)
	}
}

func TestInMemoryStore_PutReplaces(t *testing.T) {
	t.Parallel()

	s := NewInMemoryStore()
	ctx := context.Background()

	first := testRecord("k")
	if err := s.Put(ctx, first); err != nil {
		t.Fatalf("put: %v", err)
	}

	second := first
	second.FullContent = "replaced"
	if err := s.Put(ctx, second); err != nil {
		t.Fatalf("put replace: %v", err)
	}

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FullContent != "replaced" {
		t.Errorf("got %q, want %q", got.FullContent, "replaced")
	}
	if s.Len() != 1 {
		t.Errorf("len = %d, want 1", s.Len())
	}
}

func TestInMemoryStore_KeysSorted(t *testing.T) {
	t.Parallel()

	s := NewInMemoryStore()
	ctx := context.Background()

	for _, k := range []string{"2026-08-22", "2026-08-20", "2026-08-21"} {
		if err := s.Put(ctx, testRecord(k)); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}

	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	want := []string{"2026-08-20", "2026-08-21", "2026-08-22"}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
}

func TestInMemoryStore_Latest(t *testing.T) {
	t.Parallel()

	s := NewInMemoryStore()
	ctx := context.Background()

	if _, err := s.Latest(ctx); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("empty latest: got %v, want ErrRecordNotFound", err)
	}

	for _, k := range []string{"2026-08-20", "2026-08-22", "2026-08-21"} {
		if err := s.Put(ctx, testRecord(k)); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}

	got, err := s.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got.Key != "2026-08-22" {
		t.Errorf("latest = %q, want %q", got.Key, "2026-08-22")
	}
}

func TestCheckInvariant(t *testing.T) {
	t.Parallel()

	if err := CheckInvariant(Record{FullContent: "x"}); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("missing key: got %v, want ErrEmptyKey", err)
	}

	bad := Record{Key: "k", ShortDigest: "d"}
	if err := CheckInvariant(bad); !errors.Is(err, ErrMissingFull) {
		t.Errorf("derived tier without full: got %v, want ErrMissingFull", err)
	}

	ok := Record{Key: "k", FullContent: "f", Overview: "o"}
	if err := CheckInvariant(ok); err != nil {
		t.Errorf("valid record rejected: %v", err)
	}
}

func TestRecord_ContentAndLevels(t *testing.T) {
	t.Parallel()

	full := Record{Key: "k", FullContent: "f"}
	if _, ok := full.Content(Short); ok {
		t.Error("absent short tier reported present")
	}
	if got, ok := full.Content(Full); !ok || got != "f" {
		t.Errorf("full tier: got %q, %v", got, ok)
	}
	if n := len(full.Levels()); n != 1 {
		t.Errorf("levels = %d, want 1", n)
	}

	all := Record{Key: "k", FullContent: "f", ShortDigest: "s", Overview: "o"}
	if n := len(all.Levels()); n != 3 {
		t.Errorf("levels = %d, want 3", n)
	}
}

func TestLevel_ParseRoundtrip(t *testing.T) {
	t.Parallel()

	for _, l := range []Level{Short, Overview, Full} {
		got, ok := ParseLevel(l.String())
		if !ok || got != l {
			t.Errorf("ParseLevel(%q) = %v, %v", l.String(), got, ok)
		}
	}
	if _, ok := ParseLevel("bogus"); ok {
		t.Error("ParseLevel accepted bogus name")
	}
}
