package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler manages periodic job execution using cron expressions.
// Each job is protected by a per-job mutex to prevent parallel execution
// of the same job (uses TryLock — atomic, no race), and its run, failure,
// and skipped-tick counts are tracked for shutdown reporting.
type Scheduler struct {
	mu     sync.Mutex
	cron   *cron.Cron
	jobs   []Job
	state  map[string]*jobState
	logger *slog.Logger
	cancel context.CancelFunc
}

// jobState carries the per-job run guard and execution counters. The
// counters use their own mutex so a finishing job never contends with
// Stop, which holds the scheduler mutex while draining.
type jobState struct {
	running sync.Mutex

	mu       sync.Mutex
	runs     int64
	failures int64
	skipped  int64
	lastRun  time.Time
	lastErr  string
}

func (st *jobState) noteRun(err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.runs++
	st.lastRun = time.Now()
	if err != nil {
		st.failures++
		st.lastErr = err.Error()
	} else {
		st.lastErr = ""
	}
}

func (st *jobState) noteSkip() {
	st.mu.Lock()
	st.skipped++
	st.mu.Unlock()
}

// JobStats is a point-in-time view of one job's execution counters.
type JobStats struct {
	Name     string    `json:"name"`
	Runs     int64     `json:"runs"`
	Failures int64     `json:"failures"`
	Skipped  int64     `json:"skipped"`
	LastRun  time.Time `json:"last_run"`
	LastErr  string    `json:"last_error,omitempty"`
}

// NewScheduler creates a scheduler. Jobs must be registered before Start().
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		state:  make(map[string]*jobState),
		logger: logger,
	}
}

// RegisterJob adds a job to the scheduler. Must be called before Start().
// Returns an error if a job with the same name is already registered.
func (s *Scheduler) RegisterJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := j.Name()
	if _, exists := s.state[name]; exists {
		return fmt.Errorf("cron: duplicate job name %q", name)
	}

	s.state[name] = &jobState{}
	s.jobs = append(s.jobs, j)
	return nil
}

// Start initializes the cron scheduler and begins executing registered jobs.
// Returns an error if any job has an invalid schedule expression.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	s.cron = cron.New(cron.WithParser(parser))

	for _, j := range s.jobs {
		job := j // capture loop variable
		st := s.state[job.Name()]

		_, err := s.cron.AddFunc(job.Schedule(), func() {
			// If the previous tick is still running, skip this one.
			if !st.running.TryLock() {
				st.noteSkip()
				s.logger.Warn("cron: job still running, skipping tick",
					"job", job.Name(),
				)
				return
			}
			defer st.running.Unlock()

			s.logger.Debug("cron: job started", "job", job.Name())
			err := job.Run(ctx)
			st.noteRun(err)
			if err != nil {
				s.logger.Error("cron: job failed",
					"job", job.Name(),
					"error", err,
				)
				return
			}
			s.logger.Debug("cron: job completed", "job", job.Name())
		})
		if err != nil {
			cancel()
			return fmt.Errorf("cron: invalid schedule for job %q: %w", job.Name(), err)
		}
	}

	s.cron.Start()
	s.logger.Info("cron: scheduler started", "jobs", len(s.jobs))
	return nil
}

// Stats reports per-job execution counters in registration order.
func (s *Scheduler) Stats() []JobStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStats, 0, len(s.jobs))
	for _, j := range s.jobs {
		st := s.state[j.Name()]
		st.mu.Lock()
		out = append(out, JobStats{
			Name:     j.Name(),
			Runs:     st.runs,
			Failures: st.failures,
			Skipped:  st.skipped,
			LastRun:  st.lastRun,
			LastErr:  st.lastErr,
		})
		st.mu.Unlock()
	}
	return out
}

// Stop gracefully shuts down the scheduler, waiting for in-flight jobs.
func (s *Scheduler) Stop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		// Wait for running jobs to complete.
		<-s.cron.Stop().Done()
		s.logger.Info("cron: scheduler stopped")
	}
	return nil
}
