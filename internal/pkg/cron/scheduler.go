package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	robfig "github.com/robfig/cron/v3"
)

// Job is a named function run on a fixed interval
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

// Scheduler runs registered jobs on a robfig/cron runner until it is stopped.
type Scheduler struct {
	runner *robfig.Cron
	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	jobs []Job
}

// NewScheduler creates a scheduler whose jobs see a context cancelled by parent or Stop
func NewScheduler(parent context.Context) *Scheduler {
	ctx, cancel := context.WithCancel(parent)
	return &Scheduler{
		runner: robfig.New(
			robfig.WithLogger(slogLogger{}),
			robfig.WithChain(robfig.Recover(slogLogger{}), robfig.SkipIfStillRunning(slogLogger{})),
		),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers a job. Sub-second intervals are rounded up to one second.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) error {
	if interval <= 0 {
		return fmt.Errorf("cron job %s: interval must be positive, got %s", name, interval)
	}

	job := Job{Name: name, Interval: interval, Fn: fn}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.runner.Schedule(robfig.Every(interval), robfig.FuncJob(func() {
		_ = s.execute(s.ctx, job)
	}))
	s.jobs = append(s.jobs, job)

	slog.Info("Cron job registered", "name", name, "interval", interval)
	return nil
}

// Start begins running all scheduled jobs. Calling it twice is a no-op.
func (s *Scheduler) Start() {
	s.runner.Start()
	slog.Info("Cron scheduler started", "job_count", len(s.runner.Entries()))
}

// Stop cancels the job context and waits for running jobs to return
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	<-s.runner.Stop().Done()
	slog.Info("Cron scheduler stopped")
}

// RunOnce runs every job once, outside the schedule, and returns their combined errors
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.mu.Lock()
	jobs := append([]Job(nil), s.jobs...)
	s.mu.Unlock()

	var errs []error
	for _, job := range jobs {
		if err := s.execute(ctx, job); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Scheduler) execute(ctx context.Context, job Job) error {
	start := time.Now()
	slog.Debug("Cron job starting", "name", job.Name)

	if err := job.Fn(ctx); err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		return fmt.Errorf("%s: %w", job.Name, err)
	}
	slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
	return nil
}

// slogLogger routes robfig/cron's own messages to the default slog logger.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
