package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sweepd/internal/logging"
)

// schedulerHandle tracks one scheduler goroutine so the monitor can replace
// it and Stop can wait for it.
type schedulerHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (d *Daemon) spawnScheduler(parent context.Context) *schedulerHandle {
	ctx, cancel := context.WithCancel(parent)
	h := &schedulerHandle{cancel: cancel, done: make(chan struct{})}
	go d.runScheduler(ctx, h)
	return h
}

// runScheduler is the Idle/Scanning loop. The first cycle runs immediately;
// subsequent cycles follow the scan interval. The loop survives any failure
// inside a cycle and exits only on context cancellation.
func (d *Daemon) runScheduler(ctx context.Context, h *schedulerHandle) {
	defer close(h.done)
	logger := logging.NewComponentLogger(d.logger, "scheduler")
	logger.Info("scheduler loop started", logging.Duration("interval", d.policy.ScanInterval))

	ticker := time.NewTicker(d.policy.ScanInterval)
	defer ticker.Stop()

	d.runCycle(ctx, logger)

	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduler loop stopped")
			return
		case <-ticker.C:
			if d.deferScan.CompareAndSwap(true, false) {
				// Back-pressure from the monitor: skip this tick. A skipped
				// cycle still proves liveness.
				logger.Info("scan deferred, cpu above threshold")
				d.store.Heartbeat(time.Now())
				continue
			}
			d.runCycle(ctx, logger)
		}
	}
}

// runCycle executes one scan and folds the outcome into the daemon state.
// A panic inside the scan is recorded as a failed cycle; the loop continues
// to the next tick either way.
func (d *Daemon) runCycle(ctx context.Context, logger *slog.Logger) {
	if ctx.Err() != nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("scan cycle failed", logging.String("panic", fmt.Sprint(r)))
			d.store.RecordFailure(time.Now())
			if err := d.store.Save(); err != nil {
				logger.Warn("state save failed", logging.Error(err))
			}
		}
	}()

	result := d.scanner.RunOnce(ctx)
	if ctx.Err() != nil {
		// Abandoned mid-scan during shutdown or a restart; the next cycle
		// re-evaluates from scratch, so nothing is folded in.
		return
	}

	summary := result.Summary()
	d.store.FoldResult(summary)
	if err := d.store.Save(); err != nil {
		logger.Warn("state save failed, next cycle will overwrite", logging.Error(err))
	}
	if d.journal != nil {
		if err := d.journal.RecordScan(ctx, summary); err != nil {
			logger.Warn("history journal write failed", logging.Error(err))
		}
	}

	logger.Info("scan cycle complete",
		logging.String(logging.FieldScanID, summary.ScanID),
		logging.Int("files_considered", summary.FilesConsidered),
		logging.Int("files_deleted", summary.FilesDeleted),
		logging.Int64("bytes_freed", summary.BytesFreed),
		logging.Int("errors", summary.ErrorCount),
		logging.Duration("elapsed", summary.CompletedAt.Sub(summary.StartedAt)))
}
