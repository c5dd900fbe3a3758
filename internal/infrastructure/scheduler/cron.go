package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"quizfeed/internal/ports"
	"quizfeed/pkg/logger"
)

// ErrAlreadyStarted is returned by Start on a running scheduler.
var ErrAlreadyStarted = errors.New("scheduler already started")

// CronScheduler triggers a job on a standard five-field cron expression.
type CronScheduler struct {
	expr     string
	location *time.Location
	logger   cron.Logger

	mu   sync.Mutex
	cron *cron.Cron
	quit chan struct{}
	// stopped is done once the last runner has stopped and its running job returned.
	stopped context.Context
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// Validate reports whether expr is a parseable cron expression.
func Validate(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}

// NewCronScheduler builds a scheduler evaluating expr in location.
func NewCronScheduler(expr string, location *time.Location, log *slog.Logger) *CronScheduler {
	if location == nil {
		location = time.Local
	}
	return &CronScheduler{
		expr:     expr,
		location: location,
		logger:   cron.PrintfLogger(logger.New("scheduler", log)),
	}
}

// Start registers job and begins ticking until Stop is called or ctx is done.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return ErrAlreadyStarted
	}

	runner := cron.New(
		cron.WithLocation(c.location),
		cron.WithLogger(c.logger),
		cron.WithChain(cron.Recover(c.logger), cron.SkipIfStillRunning(c.logger)),
	)
	if _, err := runner.AddFunc(c.expr, func() {
		job(time.Now().In(c.location))
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", c.expr, err)
	}

	runner.Start()
	quit := make(chan struct{})
	c.cron = runner
	c.quit = quit
	c.stopped = nil

	go func() {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			if c.cron == runner {
				c.halt()
			}
			c.mu.Unlock()
		case <-quit:
		}
	}()

	return nil
}

// halt stops the current runner. c.mu must be held.
func (c *CronScheduler) halt() {
	c.stopped = c.cron.Stop()
	close(c.quit)
	c.cron = nil
	c.quit = nil
}

// Stop halts scheduling and waits for a running job, bounded by ctx. Every call
// waits, including those made after the start context already stopped the runner.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.cron != nil {
		c.halt()
	}
	stopped := c.stopped
	c.mu.Unlock()

	if stopped == nil {
		return nil
	}

	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
