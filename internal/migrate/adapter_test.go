package migrate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/flemzord/tiermem/internal/tier"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func newAdapter(store tier.Store) *Adapter {
	return NewAdapter(store, Limits{ShortMaxChars: 100, OverviewMaxChars: 500}, discardLogger(),
		WithClock(func() time.Time {
			return time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
		}))
}

func TestRun_MigratesMarkdownFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "2026-08-19.md", "# Log 2026-08-19\n\n- Wrote the schema\n- Fixed the race\n")
	writeFile(t, dir, "2026-08-20.md", "# Log 2026-08-20\n\nPlain notes for the day.\n")
	writeFile(t, dir, "notes.txt", "not markdown")
	writeFile(t, dir, "README", "no extension")

	store := tier.NewInMemoryStore()
	res, err := newAdapter(store).Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.Migrated != 2 || res.Skipped != 0 || res.Failed != 0 {
		t.Errorf("result = %+v", res)
	}
	if len(res.Keys) != 2 || res.Keys[0] != "2026-08-19" || res.Keys[1] != "2026-08-20" {
		t.Errorf("keys = %v", res.Keys)
	}
	if res.Tiers != (TierCounts{Short: 2, Overview: 2, Full: 2}) {
		t.Errorf("tier counts = %+v, want 2 of each", res.Tiers)
	}

	rec, err := store.Get(context.Background(), "2026-08-19")
	if err != nil {
		t.Fatalf("get migrated record: %v", err)
	}
	if rec.ShortDigest == "" || rec.Overview == "" {
		t.Error("derived tiers missing on migrated record")
	}
	if rec.SourceSize == 0 {
		t.Error("source size not recorded")
	}
}

func TestRun_Idempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "2026-08-19.md", "first version")

	store := tier.NewInMemoryStore()
	a := newAdapter(store)
	ctx := context.Background()

	if _, err := a.Run(ctx, dir); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Change the file; a re-run must not overwrite the stored record.
	writeFile(t, dir, "2026-08-19.md", "second version")

	res, err := a.Run(ctx, dir)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.Migrated != 0 || res.Skipped != 1 {
		t.Errorf("result = %+v, want 0 migrated, 1 skipped", res)
	}

	rec, err := store.Get(ctx, "2026-08-19")
	if err != nil {
		t.Fatal(err)
	}
	if rec.FullContent != "first version" {
		t.Errorf("re-run overwrote record: %q", rec.FullContent)
	}
}

func TestRun_MissingDirectory(t *testing.T) {
	t.Parallel()

	a := newAdapter(tier.NewInMemoryStore())
	if _, err := a.Run(context.Background(), filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("missing directory should be a hard error")
	}
}

// failingStore rejects Put for one key so a single bad record can be
// observed without aborting the run.
type failingStore struct {
	tier.Store
	badKey string
}

func (s *failingStore) Put(ctx context.Context, rec tier.Record) error {
	if rec.Key == s.badKey {
		return errors.New("disk full")
	}
	return s.Store.Put(ctx, rec)
}

func TestRun_StoreFailureDoesNotAbort(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "bad.md", "content")
	writeFile(t, dir, "good.md", "content")

	store := &failingStore{Store: tier.NewInMemoryStore(), badKey: "bad"}
	res, err := newAdapter(store).Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Failed != 1 || res.Migrated != 1 {
		t.Errorf("result = %+v, want 1 failed, 1 migrated", res)
	}
	if len(res.Keys) != 1 || res.Keys[0] != "good" {
		t.Errorf("keys = %v, want [good]", res.Keys)
	}
}

func TestRun_CaseInsensitiveExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "upper.MD", "uppercase extension")

	res, err := newAdapter(tier.NewInMemoryStore()).Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Migrated != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.md", "content")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newAdapter(tier.NewInMemoryStore()).Run(ctx, dir); err == nil {
		t.Error("cancelled context should abort the run")
	}
}

func TestRecordKey(t *testing.T) {
	t.Parallel()

	cases := []struct{ path, want string }{
		{"/tmp/memory/2026-08-20.md", "2026-08-20"},
		{"notes.MD", "notes"},
		{"dir/topic.name.md", "topic.name"},
	}
	for _, tc := range cases {
		if got := recordKey(tc.path); got != tc.want {
			t.Errorf("recordKey(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
