// Package scheduler runs the reminder pipeline on a cron cadence.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// RunFunc is the work one tick performs. main.go adapts the pipeline into
// this shape so the scheduler stays free of service types.
type RunFunc func(ctx context.Context) error

// ReminderCron owns the cron instance driving the nightly reminder run.
type ReminderCron struct {
	cron *cron.Cron
}

// runTimeout bounds one scheduled pipeline pass.
const runTimeout = 5 * time.Minute

// New schedules run under expr and returns the (not yet started) ReminderCron.
// An invalid expression is reported immediately rather than at first tick.
func New(expr string, run RunFunc) (*ReminderCron, error) {
	c := cron.New()
	_, err := c.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		slog.Info("scheduled reminder run starting", "cron", expr)
		if err := run(ctx); err != nil {
			slog.Error("scheduled reminder run failed", "error", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return &ReminderCron{cron: c}, nil
}

// Start begins ticking in its own goroutine.
func (rc *ReminderCron) Start() {
	rc.cron.Start()
}

// Stop halts scheduling and returns a context that is done once any in-flight
// run has finished.
func (rc *ReminderCron) Stop() context.Context {
	return rc.cron.Stop()
}
