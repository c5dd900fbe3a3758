package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"quizfeed/internal/domain"
	"quizfeed/internal/ports"
)

// Scheduler wires the cron driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
	onReport func(domain.RunReport)

	// running serialises triggers so overlapping runs cannot publish the same day twice.
	running sync.Mutex
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{driver: driver, pipeline: pipeline, logger: logger.With("component", "scheduler")}
}

// OnReport registers a callback receiving every finished run's report.
func (s *Scheduler) OnReport(fn func(domain.RunReport)) {
	s.onReport = fn
}

// Start registers the pipeline with the driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	return s.driver.Start(ctx, func(trigger time.Time) {
		s.Trigger(ctx, trigger)
	})
}

// Trigger runs the pipeline once for trigger, skipping if a run is in progress.
func (s *Scheduler) Trigger(ctx context.Context, trigger time.Time) {
	if !s.running.TryLock() {
		s.logger.Warn("previous run still in progress, skipping trigger", "trigger", trigger)
		return
	}
	defer s.running.Unlock()

	report, err := s.pipeline.Run(ctx, trigger)
	if err != nil {
		s.logger.Error("scheduled run failed", "trigger", trigger, "error", err)
	}
	if s.onReport != nil {
		s.onReport(report)
	}
}

// Stop gracefully tears down the underlying driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
