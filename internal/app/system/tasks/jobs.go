// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultEventCompletionSchedule runs the completion sweep every 15 minutes.
const DefaultEventCompletionSchedule = "*/15 * * * *"

// EventCompleter is satisfied by *eventstore.Store.
type EventCompleter interface {
	CompletePast(ctx context.Context, now time.Time) (int64, error)
}

// EventCompletionJob creates a job that marks published events whose end
// time has passed as completed.
func EventCompletionJob(events EventCompleter, logger *zap.Logger, schedule string, now func() time.Time) Job {
	if schedule == "" {
		schedule = DefaultEventCompletionSchedule
	}
	if now == nil {
		now = time.Now
	}
	return Job{
		Name:     "event-completion",
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			count, err := events.CompletePast(ctx, now().UTC())
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("completed past events", zap.Int64("count", count))
			}
			return nil
		},
	}
}
