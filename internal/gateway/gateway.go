// Package gateway exposes the HTTP surface: health and status, the query
// and migration API, the performance dashboard, Prometheus metrics, and a
// WebSocket stats feed. It is a leaf module — nothing imports it.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/tiermem/internal/config"
	"github.com/flemzord/tiermem/internal/core"
	"github.com/flemzord/tiermem/internal/metrics"
	"github.com/flemzord/tiermem/internal/migrate"
	"github.com/flemzord/tiermem/internal/retrieval"
	"github.com/flemzord/tiermem/internal/tier"
)

func init() {
	core.RegisterModule(&Gateway{})
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Gateway)(nil)
	_ core.Provisioner  = (*Gateway)(nil)
	_ core.Validator    = (*Gateway)(nil)
	_ core.Starter      = (*Gateway)(nil)
	_ core.Stopper      = (*Gateway)(nil)
)

// Gateway is the HTTP gateway module.
type Gateway struct {
	config    Config
	appCtx    *core.AppContext
	logger    *slog.Logger
	server    *http.Server
	startedAt time.Time

	// Resolved lazily at Start() via service registry.
	store    tier.Store
	resolver *retrieval.Resolver
	agg      *metrics.Aggregator
	provider *config.Provider
	migrator *migrate.Adapter
}

// ModuleInfo implements core.Module.
func (g *Gateway) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "gateway.http",
		New: func() core.Module { return &Gateway{} },
	}
}

// Configure implements core.Configurable.
func (g *Gateway) Configure(node *yaml.Node) error {
	if err := node.Decode(&g.config); err != nil {
		return err
	}
	g.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (g *Gateway) Provision(ctx *core.AppContext) error {
	g.appCtx = ctx
	g.logger = ctx.Logger
	return nil
}

// Validate implements core.Validator.
func (g *Gateway) Validate() error {
	if _, err := net.ResolveTCPAddr("tcp", g.config.Bind); err != nil {
		return errors.New("gateway: invalid bind address: " + g.config.Bind)
	}
	return nil
}

// Start implements core.Starter. It resolves dependencies from the service
// registry (lazy binding) and starts the HTTP server.
func (g *Gateway) Start() error {
	if svc, ok := g.appCtx.Service("tier.store"); ok {
		if store, ok := svc.(tier.Store); ok {
			g.store = store
		}
	}
	if svc, ok := g.appCtx.Service("retrieval.resolver"); ok {
		if resolver, ok := svc.(*retrieval.Resolver); ok {
			g.resolver = resolver
		}
	}
	if svc, ok := g.appCtx.Service("metrics.aggregator"); ok {
		if agg, ok := svc.(*metrics.Aggregator); ok {
			g.agg = agg
		}
	}
	if svc, ok := g.appCtx.Service("config.provider"); ok {
		if provider, ok := svc.(*config.Provider); ok {
			g.provider = provider
		}
	}

	if g.store != nil && g.provider != nil {
		mem := g.provider.Current().Memory
		g.migrator = migrate.NewAdapter(g.store, migrate.Limits{
			ShortMaxChars:    mem.Layers.ShortMaxChars,
			OverviewMaxChars: mem.Layers.OverviewMaxChars,
		}, g.logger)
	}

	g.startedAt = time.Now()

	g.server = &http.Server{
		Addr:         g.config.Bind,
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}

	go func() {
		g.logger.Info("gateway listening", "addr", g.config.Bind)
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop implements core.Stopper. Graceful shutdown with configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
