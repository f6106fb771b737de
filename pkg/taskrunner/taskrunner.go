// Package taskrunner runs a task on a fixed interval until stopped.
package taskrunner

import (
	"context"
	"log/slog"
	"time"
)

type Runner struct {
	name     string
	interval time.Duration
	task     func(context.Context)
	logger   *slog.Logger
	stop     chan struct{}
	done     chan struct{}
}

func New(name string, interval time.Duration, task func(context.Context), logger *slog.Logger) *Runner {
	return &Runner{
		name:     name,
		interval: interval,
		task:     task,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the runner's goroutine. The first run happens one interval
// after Start, not immediately.
func (r *Runner) Start(ctx context.Context) {
	go func() {
		defer close(r.done)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		r.logger.InfoContext(ctx, "periodic task started", "task", r.name, "interval", r.interval)
		for {
			select {
			case <-ticker.C:
				r.task(ctx)
			case <-r.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the runner and waits for an in-flight run to finish. Safe to
// call once.
func (r *Runner) Stop() {
	close(r.stop)
	<-r.done
	r.logger.Info("periodic task stopped", "task", r.name)
}
