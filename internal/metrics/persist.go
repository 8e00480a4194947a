package metrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// snapshot is the on-disk JSON representation of the aggregator state.
type snapshot struct {
	TotalQueries     int64            `json:"total_queries"`
	TotalTokensSaved float64          `json:"total_tokens_saved"`
	SumSavingRate    float64          `json:"sum_saving_rate"`
	PerCategory      map[string]int64 `json:"per_category_counts"`
	History          []HistoryEntry   `json:"history,omitempty"`
}

// Load restores persisted statistics from the configured path. A missing
// file is not an error — the aggregator simply starts empty. A corrupt file
// is logged and ignored for the same reason: stats are best-effort and must
// never block startup.
func (a *Aggregator) Load() error {
	if a.path == "" {
		return nil
	}

	raw, err := os.ReadFile(a.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("metrics: reading %s: %w", a.path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		a.logger.Warn("metrics: stats file corrupt, starting empty", "path", a.path, "error", err)
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalQueries = snap.TotalQueries
	a.totalSaved = snap.TotalTokensSaved
	a.sumSavingRate = snap.SumSavingRate
	a.perCategory = snap.PerCategory
	if a.perCategory == nil {
		a.perCategory = make(map[string]int64)
	}
	a.history = snap.History
	if len(a.history) > historyCap {
		a.history = a.history[len(a.history)-historyCap:]
	}
	return nil
}

// Save writes the current statistics to the configured path. The write goes
// through a temp file + rename so a crash never leaves a half-written
// snapshot behind.
func (a *Aggregator) Save() error {
	if a.path == "" {
		return nil
	}

	a.mu.Lock()
	snap := snapshot{
		TotalQueries:     a.totalQueries,
		TotalTokensSaved: a.totalSaved,
		SumSavingRate:    a.sumSavingRate,
		PerCategory:      make(map[string]int64, len(a.perCategory)),
		History:          append([]HistoryEntry(nil), a.history...),
	}
	for k, v := range a.perCategory {
		snap.PerCategory[k] = v
	}
	a.mu.Unlock()

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("metrics: marshal stats: %w", err)
	}

	if dir := filepath.Dir(a.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("metrics: create directory %s: %w", dir, err)
		}
	}

	tmp := a.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("metrics: write stats: %w", err)
	}
	if err := os.Rename(tmp, a.path); err != nil {
		return fmt.Errorf("metrics: replace stats: %w", err)
	}
	return nil
}
