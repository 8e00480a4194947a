package metrics

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/flemzord/tiermem/internal/classify"
)

func TestPersist_Roundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stats.json")

	a := NewAggregator(discardLogger(), WithPersistence(path))
	a.Record(sample(classify.Administrative, 100, 0.9))
	a.Record(sample(classify.Factual, 40, 0.5))
	if err := a.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	b := NewAggregator(discardLogger(), WithPersistence(path))
	if err := b.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	got := b.Summary()
	if got.TotalQueries != 2 {
		t.Errorf("TotalQueries = %d, want 2", got.TotalQueries)
	}
	if got.TotalTokensSaved != 140 {
		t.Errorf("TotalTokensSaved = %v, want 140", got.TotalTokensSaved)
	}
	if math.Abs(got.AverageSavingRate-0.7) > 1e-9 {
		t.Errorf("AverageSavingRate = %v, want 0.7", got.AverageSavingRate)
	}
	if len(b.Recent(10)) != 2 {
		t.Errorf("history length = %d, want 2", len(b.Recent(10)))
	}
}

func TestPersist_MissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "does-not-exist.json")
	a := NewAggregator(discardLogger(), WithPersistence(path))
	if err := a.Load(); err != nil {
		t.Fatalf("load missing file: %v", err)
	}
	if a.Summary().TotalQueries != 0 {
		t.Error("missing file produced non-empty state")
	}
}

func TestPersist_CorruptFileIgnored(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stats.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	a := NewAggregator(discardLogger(), WithPersistence(path))
	if err := a.Load(); err != nil {
		t.Fatalf("corrupt file should not fail load: %v", err)
	}
	if a.Summary().TotalQueries != 0 {
		t.Error("corrupt file produced non-empty state")
	}
}

func TestPersist_NoPathConfigured(t *testing.T) {
	t.Parallel()

	a := NewAggregator(discardLogger())
	if err := a.Load(); err != nil {
		t.Errorf("load without path: %v", err)
	}
	if err := a.Save(); err != nil {
		t.Errorf("save without path: %v", err)
	}
}

func TestPersist_SaveCreatesDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "stats.json")
	a := NewAggregator(discardLogger(), WithPersistence(path))
	a.Record(sample(classify.Creative, 5, 0.2))
	if err := a.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("stats file not written: %v", err)
	}
}
