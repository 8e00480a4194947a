// Package migrate imports existing flat memory files into the tier store.
// Migration is idempotent: a record whose key already exists in the store is
// skipped untouched, so re-running against the same directory is safe.
package migrate

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/flemzord/tiermem/internal/summarize"
	"github.com/flemzord/tiermem/internal/tier"
)

// Limits carries the tier size bounds applied while deriving summaries.
type Limits struct {
	ShortMaxChars    int
	OverviewMaxChars int
}

// TierCounts tallies the tier representations written during a run.
type TierCounts struct {
	Short    int `json:"short"`
	Overview int `json:"overview"`
	Full     int `json:"full"`
}

// Result summarizes one migration run.
type Result struct {
	Migrated int        `json:"migrated"`
	Skipped  int        `json:"skipped"`
	Failed   int        `json:"failed"`
	Tiers    TierCounts `json:"tiers"`
	Keys     []string   `json:"keys,omitempty"`
}

// Adapter migrates markdown memory files into a tier store.
type Adapter struct {
	store  tier.Store
	limits Limits
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithClock overrides the time source. For tests.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

// NewAdapter creates a migration adapter writing into store.
func NewAdapter(store tier.Store, limits Limits, logger *slog.Logger, opts ...Option) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Adapter{
		store:  store,
		limits: limits,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run migrates every .md file under dir. Files are processed in ascending
// name order so runs are deterministic. A file that fails to read or store
// is counted and logged but never aborts the run; only a missing directory
// is a hard error.
func (a *Adapter) Run(ctx context.Context, dir string) (Result, error) {
	files, err := listMarkdown(dir)
	if err != nil {
		return Result{}, fmt.Errorf("migrate: scanning %s: %w", dir, err)
	}

	var res Result
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("migrate: interrupted: %w", err)
		}

		key := recordKey(path)
		exists, err := a.store.Has(ctx, key)
		if err != nil {
			res.Failed++
			a.logger.Warn("migrate: existence check failed", "key", key, "error", err)
			continue
		}
		if exists {
			res.Skipped++
			a.logger.Debug("migrate: record exists, skipping", "key", key)
			continue
		}

		rec, err := a.migrateFile(ctx, key, path)
		if err != nil {
			res.Failed++
			a.logger.Warn("migrate: record failed", "key", key, "error", err)
			continue
		}

		res.Migrated++
		res.Keys = append(res.Keys, key)
		for _, lvl := range rec.Levels() {
			switch lvl {
			case tier.Short:
				res.Tiers.Short++
			case tier.Overview:
				res.Tiers.Overview++
			case tier.Full:
				res.Tiers.Full++
			}
		}
	}

	a.logger.Info("migrate: run complete",
		"dir", dir, "migrated", res.Migrated, "skipped", res.Skipped, "failed", res.Failed,
		"short", res.Tiers.Short, "overview", res.Tiers.Overview, "full", res.Tiers.Full)
	return res, nil
}

func (a *Adapter) migrateFile(ctx context.Context, key, path string) (tier.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return tier.Record{}, fmt.Errorf("reading %s: %w", path, err)
	}

	content := string(raw)
	rec := tier.Record{
		Key:         key,
		FullContent: content,
		ShortDigest: summarize.GenerateShort(content, a.limits.ShortMaxChars),
		Overview:    summarize.GenerateOverview(content, a.limits.OverviewMaxChars),
		CreatedAt:   a.now(),
		SourceSize:  len(raw),
	}

	if err := a.store.Put(ctx, rec); err != nil {
		return tier.Record{}, fmt.Errorf("storing %s: %w", key, err)
	}
	return rec, nil
}

// listMarkdown returns the .md files directly under dir, sorted by name.
func listMarkdown(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if e.Type()&fs.ModeSymlink != 0 {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".md") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// recordKey derives the store key from a file path: the base name without
// its extension.
func recordKey(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
