// Package metrics tracks per-query token-saving statistics, exposes running
// summaries and periodic reports, and projects economic savings. The
// Aggregator is an injectable service owned by the application — never a
// package-level mutable global — with an explicit persistence boundary:
// loaded at startup, saved on an interval and at shutdown.
package metrics

import (
	"log/slog"
	"sync"
	"time"

	"github.com/flemzord/tiermem/internal/classify"
)

// historyCap bounds the retained per-query history ring.
const historyCap = 100

// Sample is one resolved (non-cached) query observation.
type Sample struct {
	Category     classify.Category
	TierUsed     string
	TokensSaved  float64
	SavingRate   float64
	ResponseTime time.Duration
	QueryPreview string
}

// HistoryEntry is a persisted, truncated view of a Sample.
type HistoryEntry struct {
	Query       string    `json:"query"`
	Category    string    `json:"category"`
	TierUsed    string    `json:"tier_used"`
	TokensSaved float64   `json:"tokens_saved"`
	SavingRate  float64   `json:"saving_rate"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// Summary is a point-in-time view of the running statistics.
type Summary struct {
	TotalQueries      int64            `json:"total_queries"`
	TotalTokensSaved  float64          `json:"total_tokens_saved"`
	AverageSavingRate float64          `json:"average_saving_rate"`
	PerCategory       map[string]int64 `json:"per_category_counts"`
}

// Benefit is the economic cost-saving projection.
type Benefit struct {
	MonthlySavings float64 `json:"monthly_savings"`
	AnnualSavings  float64 `json:"annual_savings"`
}

// Aggregator accumulates query statistics. Safe for concurrent use.
type Aggregator struct {
	mu            sync.Mutex
	totalQueries  int64
	totalSaved    float64
	sumSavingRate float64
	perCategory   map[string]int64
	history       []HistoryEntry

	path   string
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock overrides the time source. For tests.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithPersistence sets the JSON snapshot path used by Load and Save.
func WithPersistence(path string) Option {
	return func(a *Aggregator) { a.path = path }
}

// NewAggregator creates an empty aggregator.
func NewAggregator(logger *slog.Logger, opts ...Option) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Aggregator{
		perCategory: make(map[string]int64),
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Record adds one observation. Called exactly once per resolved
// (non-cached) query by the retrieval path.
func (a *Aggregator) Record(s Sample) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalQueries++
	a.totalSaved += s.TokensSaved
	a.sumSavingRate += s.SavingRate
	a.perCategory[string(s.Category)]++

	a.history = append(a.history, HistoryEntry{
		Query:       truncatePreview(s.QueryPreview),
		Category:    string(s.Category),
		TierUsed:    s.TierUsed,
		TokensSaved: s.TokensSaved,
		SavingRate:  s.SavingRate,
		RecordedAt:  a.now(),
	})
	if len(a.history) > historyCap {
		a.history = a.history[len(a.history)-historyCap:]
	}

	observeSample(s)
}

// Summary returns the current running totals. AverageSavingRate is the
// running mean of recorded saving rates, not recomputed from history.
func (a *Aggregator) Summary() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.summaryLocked()
}

func (a *Aggregator) summaryLocked() Summary {
	s := Summary{
		TotalQueries:     a.totalQueries,
		TotalTokensSaved: a.totalSaved,
		PerCategory:      make(map[string]int64, len(a.perCategory)),
	}
	if a.totalQueries > 0 {
		s.AverageSavingRate = a.sumSavingRate / float64(a.totalQueries)
	}
	for k, v := range a.perCategory {
		s.PerCategory[k] = v
	}
	return s
}

// Recent returns the most recent n history entries, newest last.
func (a *Aggregator) Recent(n int) []HistoryEntry {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n <= 0 || len(a.history) == 0 {
		return nil
	}
	if n > len(a.history) {
		n = len(a.history)
	}
	out := make([]HistoryEntry, n)
	copy(out, a.history[len(a.history)-n:])
	return out
}

// Reset clears all accumulated statistics and history.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalQueries = 0
	a.totalSaved = 0
	a.sumSavingRate = 0
	a.perCategory = make(map[string]int64)
	a.history = nil
}

// EconomicBenefit projects cost savings from the historical average tokens
// saved per query. Pure: reads state, mutates nothing.
//
//	monthly = dailyQueries × 30 × avgTokensSavedPerQuery × avgTokenCost
//	annual  = dailyQueries × 365 × avgTokensSavedPerQuery × avgTokenCost
func (a *Aggregator) EconomicBenefit(dailyQueries int, avgTokenCost float64) Benefit {
	a.mu.Lock()
	defer a.mu.Unlock()

	var avgSaved float64
	if a.totalQueries > 0 {
		avgSaved = a.totalSaved / float64(a.totalQueries)
	}

	perDay := float64(dailyQueries) * avgSaved * avgTokenCost
	return Benefit{
		MonthlySavings: perDay * 30,
		AnnualSavings:  perDay * 365,
	}
}

func truncatePreview(q string) string {
	const max = 50
	if len(q) <= max {
		return q
	}
	return q[:max]
}
