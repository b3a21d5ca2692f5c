// internal/app/system/tasks/scheduler.go
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one scheduled unit of background work. Schedule is a standard
// five-field cron expression evaluated in UTC.
type Job struct {
	Name     string
	Schedule string
	Timeout  time.Duration // zero means 1 minute
	Run      func(ctx context.Context) error
}

// Scheduler runs Jobs on their cron schedules. A run that is still going
// when its next tick arrives is skipped rather than overlapped.
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		log: logger,
	}
}

// Add registers j. It fails on an unparseable schedule.
func (s *Scheduler) Add(j Job) error {
	if _, err := s.cron.AddFunc(j.Schedule, func() { s.runOnce(j) }); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", j.Name, j.Schedule, err)
	}
	s.log.Info("job registered", zap.String("job", j.Name), zap.String("schedule", j.Schedule))
	return nil
}

func (s *Scheduler) runOnce(j Job) {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error("job panicked", zap.String("job", j.Name), zap.Any("panic", rec))
		}
	}()
	if err := j.Run(ctx); err != nil {
		s.log.Error("job failed", zap.String("job", j.Name), zap.Error(err))
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop prevents new runs and waits for running jobs or ctx, whichever
// finishes first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out", zap.Error(ctx.Err()))
	}
}
