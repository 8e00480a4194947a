// Package monitor runs the background jobs that keep statistics durable:
// periodic snapshot persistence and daily report generation.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/tiermem/internal/core"
	"github.com/flemzord/tiermem/internal/cron"
	"github.com/flemzord/tiermem/internal/metrics"
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// Config holds the monitor module configuration.
type Config struct {
	// PersistSchedule is the cron expression for stats persistence.
	// Defaults to every 5 minutes.
	PersistSchedule string `yaml:"persist_schedule"`

	// ReportSchedule is the cron expression for daily report generation.
	// Defaults to just after midnight.
	ReportSchedule string `yaml:"report_schedule"`

	// ReportDir is where daily reports are written. Relative paths
	// resolve against the data directory. Defaults to "reports".
	ReportDir string `yaml:"report_dir"`
}

// Module owns the cron scheduler and its jobs.
type Module struct {
	config    Config
	scheduler *cron.Scheduler
	logger    *slog.Logger
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "monitor.cron",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("monitor: decode config: %w", err)
	}
	return nil
}

// Provision implements core.Provisioner. The metrics aggregator must have
// been registered before this module loads.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.logger = ctx.Logger

	svc, ok := ctx.Service("metrics.aggregator")
	if !ok {
		return fmt.Errorf("monitor: service %q not registered", "metrics.aggregator")
	}
	agg, ok := svc.(*metrics.Aggregator)
	if !ok {
		return fmt.Errorf("monitor: service %q has unexpected type %T", "metrics.aggregator", svc)
	}

	reportDir := m.config.ReportDir
	if reportDir == "" {
		reportDir = "reports"
	}
	if !filepath.IsAbs(reportDir) {
		reportDir = filepath.Join(ctx.DataDir, reportDir)
	}

	m.scheduler = cron.NewScheduler(ctx.Logger)

	if err := m.scheduler.RegisterJob(&cron.StatsPersistJob{
		Aggregator:   agg,
		Logger:       ctx.Logger,
		ScheduleExpr: m.config.PersistSchedule,
	}); err != nil {
		return fmt.Errorf("monitor: registering stats job: %w", err)
	}

	if err := m.scheduler.RegisterJob(&cron.DailyReportJob{
		Aggregator:   agg,
		ReportDir:    reportDir,
		Logger:       ctx.Logger,
		ScheduleExpr: m.config.ReportSchedule,
	}); err != nil {
		return fmt.Errorf("monitor: registering report job: %w", err)
	}

	return nil
}

// Start implements core.Starter.
func (m *Module) Start() error {
	return m.scheduler.Start()
}

// Stop implements core.Stopper. Job totals are logged before shutdown so
// failure counts survive in the logs.
func (m *Module) Stop(ctx context.Context) error {
	for _, js := range m.scheduler.Stats() {
		m.logger.Info("monitor: job totals",
			"job", js.Name, "runs", js.Runs, "failures", js.Failures, "skipped", js.Skipped)
	}
	return m.scheduler.Stop(ctx)
}
