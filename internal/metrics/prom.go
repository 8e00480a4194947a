package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus collectors for the query path. Registered on the default
// registry and exposed by the gateway's /metrics handler.
var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tiermem",
		Name:      "queries_total",
		Help:      "Resolved queries by category and tier served.",
	}, []string{"category", "tier"})

	tokensSavedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tiermem",
		Name:      "tokens_saved_total",
		Help:      "Estimated tokens saved by serving reduced tiers.",
	})

	savingRate = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tiermem",
		Name:      "saving_rate",
		Help:      "Per-query saving rate relative to full content.",
		Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
	})

	responseSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tiermem",
		Name:      "response_seconds",
		Help:      "Query resolution latency in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	cacheEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tiermem",
		Name:      "cache_events_total",
		Help:      "Result cache hits and misses.",
	}, []string{"outcome"})
)

func observeSample(s Sample) {
	queriesTotal.WithLabelValues(string(s.Category), s.TierUsed).Inc()
	tokensSavedTotal.Add(s.TokensSaved)
	savingRate.Observe(s.SavingRate)
	responseSeconds.Observe(s.ResponseTime.Seconds())
}

// ObserveCacheHit and ObserveCacheMiss feed the cache counter from the
// retrieval path, which is the only place that knows the outcome.
func ObserveCacheHit()  { cacheEvents.WithLabelValues("hit").Inc() }
func ObserveCacheMiss() { cacheEvents.WithLabelValues("miss").Inc() }
