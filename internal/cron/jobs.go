package cron

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/flemzord/tiermem/internal/metrics"
)

// StatsPersistJob writes the statistics snapshot to disk so accumulated
// savings survive restarts.
type StatsPersistJob struct {
	Aggregator   *metrics.Aggregator
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "*/5 * * * *"
}

// Compile-time interface check.
var _ Job = (*StatsPersistJob)(nil)

// Name implements Job.
func (j *StatsPersistJob) Name() string { return "stats_persist" }

// Schedule implements Job.
func (j *StatsPersistJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/5 * * * *"
}

// Run persists the current statistics snapshot.
func (j *StatsPersistJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("cron: stats persist cancelled: %w", ctx.Err())
	}
	if err := j.Aggregator.Save(); err != nil {
		return fmt.Errorf("cron: persisting stats: %w", err)
	}
	return nil
}

// DailyReportJob renders the daily performance report into the report
// directory, one file per day.
type DailyReportJob struct {
	Aggregator   *metrics.Aggregator
	ReportDir    string
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "5 0 * * *" (just after midnight)
}

// Compile-time interface check.
var _ Job = (*DailyReportJob)(nil)

// Name implements Job.
func (j *DailyReportJob) Name() string { return "daily_report" }

// Schedule implements Job.
func (j *DailyReportJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "5 0 * * *"
}

// Run writes today's report. An existing file for the same day is
// overwritten, making retries after a failed tick safe.
func (j *DailyReportJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("cron: daily report cancelled: %w", ctx.Err())
	}

	report, err := j.Aggregator.Report(metrics.Daily, metrics.Text)
	if err != nil {
		return fmt.Errorf("cron: rendering daily report: %w", err)
	}

	if err := os.MkdirAll(j.ReportDir, 0o700); err != nil {
		return fmt.Errorf("cron: creating report directory: %w", err)
	}

	name := fmt.Sprintf("report-%s.txt", time.Now().Format("2006-01-02"))
	path := filepath.Join(j.ReportDir, name)
	if err := os.WriteFile(path, []byte(report), 0o600); err != nil {
		return fmt.Errorf("cron: writing daily report: %w", err)
	}

	j.Logger.Info("cron: daily report written", "path", path)
	return nil
}
