package cron

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
)

// stubJob is a minimal Job for scheduler tests.
type stubJob struct {
	name     string
	schedule string
	mu       sync.Mutex
	calls    int
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }
func (j *stubJob) Run(context.Context) error {
	j.mu.Lock()
	j.calls++
	j.mu.Unlock()
	return nil
}

func TestScheduler_RegisterJob_DuplicateName(t *testing.T) {
	t.Parallel()

	s := NewScheduler(slog.Default())

	if err := s.RegisterJob(&stubJob{name: "stats_persist", schedule: "* * * * *"}); err != nil {
		t.Fatalf("first registration should succeed: %v", err)
	}
	if err := s.RegisterJob(&stubJob{name: "stats_persist", schedule: "* * * * *"}); err == nil {
		t.Fatal("duplicate registration should fail")
	}
}

func TestScheduler_Start_InvalidSchedule(t *testing.T) {
	t.Parallel()

	s := NewScheduler(slog.Default())
	_ = s.RegisterJob(&stubJob{name: "bad", schedule: "not a cron expr"})

	if err := s.Start(); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	s := NewScheduler(slog.Default())
	_ = s.RegisterJob(&stubJob{name: "noop", schedule: "* * * * *"})

	if err := s.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
}

func TestScheduler_NilLogger(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil)
	if err := s.RegisterJob(&stubJob{name: "noop", schedule: "* * * * *"}); err != nil {
		t.Fatalf("register: %v", err)
	}
}

func TestScheduler_StatsTracksOutcomes(t *testing.T) {
	t.Parallel()

	s := NewScheduler(slog.Default())
	_ = s.RegisterJob(&stubJob{name: "stats_persist", schedule: "* * * * *"})
	_ = s.RegisterJob(&stubJob{name: "daily_report", schedule: "* * * * *"})

	s.state["stats_persist"].noteRun(nil)
	s.state["stats_persist"].noteRun(errors.New("disk full"))
	s.state["daily_report"].noteSkip()

	stats := s.Stats()
	if len(stats) != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats[0].Name != "stats_persist" || stats[1].Name != "daily_report" {
		t.Errorf("stats out of registration order: %+v", stats)
	}
	if stats[0].Runs != 2 || stats[0].Failures != 1 || stats[0].LastErr != "disk full" {
		t.Errorf("persist stats = %+v", stats[0])
	}
	if stats[0].LastRun.IsZero() {
		t.Error("LastRun not recorded")
	}
	if stats[1].Skipped != 1 || stats[1].Runs != 0 {
		t.Errorf("report stats = %+v", stats[1])
	}
}

func TestScheduler_StatsClearsErrorAfterSuccess(t *testing.T) {
	t.Parallel()

	s := NewScheduler(slog.Default())
	_ = s.RegisterJob(&stubJob{name: "stats_persist", schedule: "* * * * *"})

	s.state["stats_persist"].noteRun(errors.New("transient"))
	s.state["stats_persist"].noteRun(nil)

	stats := s.Stats()
	if stats[0].LastErr != "" {
		t.Errorf("LastErr = %q, want cleared after a successful run", stats[0].LastErr)
	}
	if stats[0].Failures != 1 {
		t.Errorf("Failures = %d, want 1", stats[0].Failures)
	}
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	t.Parallel()

	s := NewScheduler(slog.Default())
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop without start: %v", err)
	}
}
