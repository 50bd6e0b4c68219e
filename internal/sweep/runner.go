package sweep

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Runner drives the sweeper on a fixed interval. One slow or failing tick
// must never stop subsequent ticks, so each run is wrapped against both
// errors and panics.
type Runner struct {
	sweeper  *Sweeper
	interval time.Duration
	logger   *slog.Logger
	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewRunner creates a new Runner instance
func NewRunner(sweeper *Sweeper, interval time.Duration, logger *slog.Logger) *Runner {
	return &Runner{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the recurring sweep loop. It runs once immediately, then on
// every tick, until the context is canceled or Stop is called.
func (r *Runner) Start(ctx context.Context) {
	r.logger.Info("Sweep runner starting",
		slog.Duration("interval", r.interval),
	)

	r.wg.Add(1)
	go r.loop(ctx)
}

// Stop gracefully stops the runner, waiting for an in-flight tick to finish
func (r *Runner) Stop() {
	r.logger.Info("Stopping sweep runner...")
	close(r.stopChan)
	r.wg.Wait()
	r.logger.Info("Sweep runner stopped")
}

func (r *Runner) loop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.tick(ctx)

	for {
		select {
		case <-r.stopChan:
			r.logger.Info("Sweep runner stopping - stopChan closed")
			return

		case <-ctx.Done():
			r.logger.Info("Sweep runner stopping - context canceled")
			return

		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick runs one sweep, containing any error or panic to this iteration
func (r *Runner) tick(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Sweep tick panicked",
				slog.Any("panic", rec),
			)
		}
	}()

	result, err := r.sweeper.RunOnce(ctx)
	if err != nil {
		r.logger.Error("Sweep tick failed",
			slog.String("error", err.Error()),
		)
		return
	}

	if result.Skipped {
		r.logger.Debug("Sweep tick skipped - duplicate run",
			slog.String("job_id", result.JobID),
		)
	}
}
