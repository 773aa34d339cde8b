package usecase

import (
	"context"
	"log/slog"
	"time"

	"DailyDigest/internal/ports"
)

// Scheduler wires the ticker driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	opts     func(trigger time.Time) RunOptions
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring digest runs. opts is
// evaluated per trigger so each run gets fresh settings such as a dated
// output path.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, opts func(time.Time) RunOptions, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, pipeline: pipeline, opts: opts, logger: logger}
}

// Start registers the pipeline with the provided scheduler. A failed run is
// logged and the schedule continues.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil || s.opts == nil {
		return nil
	}

	job := func(trigger time.Time) {
		res, err := s.pipeline.Run(ctx, s.opts(trigger))
		if err != nil {
			s.logger.Error("scheduled run failed", "trigger", trigger, "error", err)
			return
		}
		s.logger.Info("scheduled run done", "trigger", trigger, "output", res.OutputPath)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
