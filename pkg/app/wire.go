package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/flemzord/tiermem/internal/cache"
	"github.com/flemzord/tiermem/internal/config"
	"github.com/flemzord/tiermem/internal/core"
	"github.com/flemzord/tiermem/internal/metrics"
	"github.com/flemzord/tiermem/internal/retrieval"
	"github.com/flemzord/tiermem/internal/tier"
)

// wireResolver builds the result cache and the retrieval resolver from the
// loaded store and registers the resolver for cross-module discovery.
// Must be called after LoadModules and before Start.
func wireResolver(
	appCtx *core.AppContext,
	provider *config.Provider,
	agg *metrics.Aggregator,
	logger *slog.Logger,
) error {
	svc, ok := appCtx.Service("tier.store")
	if !ok {
		return fmt.Errorf("wiring resolver: no tier store module loaded (configure %q)", "store.sqlite")
	}
	store, ok := svc.(tier.Store)
	if !ok {
		return fmt.Errorf("wiring resolver: service %q has unexpected type %T", "tier.store", svc)
	}

	mem := provider.Current().Memory
	resultCache := cache.New[retrieval.Result](
		time.Duration(mem.Cache.TTLSeconds)*time.Second,
		mem.Cache.Enabled,
	)

	// A config swap may change tier policy or limits; cached answers are
	// invalid either way.
	provider.OnChange(func(*config.Config) {
		resultCache.Clear()
	})

	resolver := retrieval.NewResolver(store, provider, agg, resultCache, logger)
	appCtx.RegisterService("retrieval.resolver", resolver)

	logger.Info("resolver wired",
		"cache_enabled", mem.Cache.Enabled,
		"cache_ttl_seconds", mem.Cache.TTLSeconds,
		"mode", mem.Mode,
	)

	return nil
}
