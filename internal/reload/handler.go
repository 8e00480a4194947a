package reload

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flemzord/tiermem/internal/config"
	"github.com/flemzord/tiermem/internal/core"
)

// Handler reloads application configuration, swaps it into the provider,
// and notifies modules.
type Handler struct {
	app      *core.App
	appCtx   *core.AppContext
	provider *config.Provider
	logger   *slog.Logger
}

// NewHandler creates a reload handler. The AppContext is the one the
// application was provisioned with so the shared service registry survives
// reloads.
func NewHandler(app *core.App, appCtx *core.AppContext, provider *config.Provider, logger *slog.Logger) *Handler {
	return &Handler{
		app:      app,
		appCtx:   appCtx,
		provider: provider,
		logger:   logger,
	}
}

// HandleReload loads a fresh config from disk, validates it, swaps it into
// the provider, and calls Reload on all modules that implement core.Reloader.
func (h *Handler) HandleReload(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	return h.handleReload(ctx, cfg)
}

// HandleReloadFromConfig reloads modules from a pre-loaded, already-validated
// config. The caller is responsible for calling config.Validate before this
// method — it will not re-validate.
func (h *Handler) HandleReloadFromConfig(ctx context.Context, cfg *config.Config) error {
	return h.handleReload(ctx, cfg)
}

func (h *Handler) handleReload(ctx context.Context, cfg *config.Config) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before reload: %w", err)
	}

	h.provider.Swap(cfg)

	if err := h.app.ReloadModules(h.appCtx.WithModuleConfigs(cfg.Modules)); err != nil {
		return fmt.Errorf("reloading modules: %w", err)
	}

	h.logger.Info("configuration reloaded successfully")
	return nil
}
