// Package schedule runs periodic full rebuilds while watching, as a safety
// net for file-system events the watcher may have missed.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/sitewright/sitewright/internal/logfields"
	"github.com/sitewright/sitewright/internal/task"
)

// Scheduler wraps gocron for periodic task runs.
type Scheduler struct {
	scheduler gocron.Scheduler
	registry  *task.Registry
}

// New creates a scheduler driving the given registry.
func New(registry *task.Registry) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, registry: registry}, nil
}

// RunTaskEvery schedules the named task at the given interval.
// Returns the job ID for later management.
func (s *Scheduler) RunTaskEvery(ctx context.Context, interval time.Duration, taskName string) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := s.registry.Run(ctx, taskName); err != nil {
				slog.Warn("scheduled run failed", logfields.Task(taskName), logfields.Error(err))
			}
		}),
		gocron.WithName(fmt.Sprintf("%s-rebuild", taskName)),
	)
	if err != nil {
		return "", fmt.Errorf("create periodic job: %w", err)
	}
	return job.ID().String(), nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	slog.Info("starting rebuild scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	slog.Info("stopping rebuild scheduler")
	return s.scheduler.Shutdown()
}
