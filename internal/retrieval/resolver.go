// Package retrieval resolves queries against the tier store: it classifies
// the query, selects the cheapest tier allowed by policy, falls back to
// higher-fidelity tiers when the selected one is absent, and accounts for
// the tokens saved relative to serving full content.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/tiermem/internal/cache"
	"github.com/flemzord/tiermem/internal/classify"
	"github.com/flemzord/tiermem/internal/config"
	"github.com/flemzord/tiermem/internal/metrics"
	"github.com/flemzord/tiermem/internal/summarize"
	"github.com/flemzord/tiermem/internal/tier"
)

// ErrNoRecords indicates the store holds nothing to answer from.
var ErrNoRecords = errors.New("retrieval: no records in store")

// ErrInvalidOverride indicates an unrecognized tier override name.
var ErrInvalidOverride = errors.New("retrieval: invalid tier override")

// keyPattern matches ISO date tokens used as record keys inside queries.
var keyPattern = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)

// Result is the outcome of one resolved query.
type Result struct {
	Answer         string                  `json:"answer"`
	TierUsed       string                  `json:"tier_used"`
	TokensSaved    float64                 `json:"tokens_saved"`
	SavingRate     float64                 `json:"saving_rate"`
	ResponseTime   time.Duration           `json:"response_time_ns"`
	Classification classify.Classification `json:"classification"`
	Cached         bool                    `json:"cached"`
	RecordKey      string                  `json:"record_key"`
}

// Resolver answers queries from the tier store. Safe for concurrent use.
type Resolver struct {
	store    tier.Store
	provider *config.Provider
	agg      *metrics.Aggregator
	cache    *cache.Cache[Result]
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock overrides the time source. For tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// NewResolver wires a resolver from its collaborators. The cache may be
// disabled via config; it must not be nil.
func NewResolver(store tier.Store, provider *config.Provider, agg *metrics.Aggregator, resultCache *cache.Cache[Result], logger *slog.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{
		store:    store,
		provider: provider,
		agg:      agg,
		cache:    resultCache,
		logger:   logger,
		tracer:   otel.Tracer("github.com/flemzord/tiermem/internal/retrieval"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve answers a query. The override forces a tier ("short", "overview",
// "full") and bypasses classification-driven selection; "auto" and the empty
// string both request automatic selection. Concurrent identical queries
// share one resolution, and a resolution is accounted in the statistics
// exactly once.
func (r *Resolver) Resolve(ctx context.Context, query, override string) (Result, error) {
	if override == "auto" {
		override = ""
	}
	if override != "" {
		if _, ok := tier.ParseLevel(override); !ok {
			return Result{}, fmt.Errorf("%w: %q", ErrInvalidOverride, override)
		}
	}

	key := cache.Key(query, override)
	res, hit, err := r.cache.GetOrCompute(key, func() (Result, error) {
		return r.resolve(ctx, query, override)
	})
	if err != nil {
		return Result{}, err
	}

	if hit {
		metrics.ObserveCacheHit()
		res.Cached = true
	}
	return res, nil
}

func (r *Resolver) resolve(ctx context.Context, query, override string) (Result, error) {
	metrics.ObserveCacheMiss()
	start := r.now()

	ctx, span := r.tracer.Start(ctx, "retrieval.resolve")
	defer span.End()

	cfg := r.provider.Current().Memory
	cls := classify.Classify(query)

	var target tier.Level
	if override != "" {
		target, _ = tier.ParseLevel(override)
	} else {
		target = selectTier(cls, cfg.Mode, cfg.TokenOptimization, cfg.MinConfidence)
	}

	rec, err := r.lookup(ctx, query)
	if err != nil {
		span.RecordError(err)
		return Result{}, err
	}

	answer, used := serveTier(rec, target)

	fullTokens := estimateTokens(rec.FullContent)
	servedTokens := estimateTokens(answer)
	saved := fullTokens - servedTokens
	var rate float64
	if fullTokens > 0 {
		rate = saved / fullTokens
	}

	res := Result{
		Answer:         answer,
		TierUsed:       used.String(),
		TokensSaved:    saved,
		SavingRate:     rate,
		ResponseTime:   r.now().Sub(start),
		Classification: cls,
		RecordKey:      rec.Key,
	}

	span.SetAttributes(
		attribute.String("query.category", string(cls.Category)),
		attribute.Float64("query.confidence", cls.Confidence),
		attribute.String("tier.target", target.String()),
		attribute.String("tier.used", used.String()),
		attribute.Float64("tokens.saved", saved),
	)

	r.agg.Record(metrics.Sample{
		Category:     cls.Category,
		TierUsed:     used.String(),
		TokensSaved:  saved,
		SavingRate:   rate,
		ResponseTime: res.ResponseTime,
		QueryPreview: query,
	})

	r.logger.Debug("query resolved",
		"category", string(cls.Category),
		"confidence", cls.Confidence,
		"tier", used.String(),
		"tokens_saved", saved,
		"record", rec.Key,
	)

	return res, nil
}

// lookup picks the record to answer from: a record whose key appears as a
// date token in the query, otherwise the most recent record.
func (r *Resolver) lookup(ctx context.Context, query string) (tier.Record, error) {
	for _, token := range keyPattern.FindAllString(query, -1) {
		rec, err := r.store.Get(ctx, token)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, tier.ErrRecordNotFound) {
			return tier.Record{}, fmt.Errorf("retrieval: fetching record %q: %w", token, err)
		}
	}

	rec, err := r.store.Latest(ctx)
	if errors.Is(err, tier.ErrRecordNotFound) {
		return tier.Record{}, ErrNoRecords
	}
	if err != nil {
		return tier.Record{}, fmt.Errorf("retrieval: fetching latest record: %w", err)
	}
	return rec, nil
}

// Ingest stores new content under key. When auto-summarization is enabled
// the reduced tiers are derived immediately; otherwise only full content is
// stored and queries fall back to it. The result cache is cleared since any
// cached answer may now be stale.
func (r *Resolver) Ingest(ctx context.Context, key, content string) error {
	ctx, span := r.tracer.Start(ctx, "retrieval.ingest")
	defer span.End()

	cfg := r.provider.Current().Memory

	rec := tier.Record{
		Key:         key,
		FullContent: content,
		CreatedAt:   r.now().UTC(),
		SourceSize:  len(content),
	}
	if cfg.AutoSummarize {
		rec.ShortDigest = summarize.GenerateShort(content, cfg.Layers.ShortMaxChars)
		rec.Overview = summarize.GenerateOverview(content, cfg.Layers.OverviewMaxChars)
	}

	if err := r.store.Put(ctx, rec); err != nil {
		span.RecordError(err)
		return fmt.Errorf("retrieval: ingesting %q: %w", key, err)
	}

	r.cache.Clear()
	r.logger.Info("record ingested", "key", key, "tiers", len(rec.Levels()), "size", rec.SourceSize)
	return nil
}

// estimateTokens approximates the token count of text as one token per four
// characters.
func estimateTokens(s string) float64 {
	return float64(len(s)) / 4
}
