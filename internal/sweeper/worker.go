package sweeper

import (
	"context"
	"log/slog"
	"time"
)

type runner interface {
	Run(context.Context) (Summary, error)
}

// WorkerConfig controls the background sweep loop.
type WorkerConfig struct {
	StartupDelay time.Duration
	Interval     time.Duration
}

// Worker runs the reconciliation on a timer until its context is canceled.
type Worker struct {
	runner runner
	cfg    WorkerConfig
	logger *slog.Logger
}

func NewWorker(r runner, cfg WorkerConfig, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.StartupDelay < 0 {
		cfg.StartupDelay = 0
	}
	if cfg.Interval < 0 {
		cfg.Interval = 0
	}
	return &Worker{runner: r, cfg: cfg, logger: logger}
}

func (w *Worker) Run(ctx context.Context) {
	if w.runner == nil {
		return
	}
	if w.cfg.StartupDelay > 0 {
		timer := time.NewTimer(w.cfg.StartupDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}

	w.runOnce(ctx)

	if w.cfg.Interval <= 0 {
		return
	}
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	start := time.Now()
	summary, err := w.runner.Run(ctx)
	if err != nil {
		w.logger.Error("blob sweep failed",
			"elapsed", time.Since(start).Round(time.Millisecond),
			"error", err,
		)
		return
	}
	w.logger.Info("blob sweep finished",
		"elapsed", time.Since(start).Round(time.Millisecond),
		"blobs", summary.Blobs,
		"referenced", summary.Referenced,
		"orphaned", summary.Orphaned,
		"deleted", summary.Deleted,
		"failed", summary.Failed,
	)
}
