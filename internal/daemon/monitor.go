package daemon

import (
	"context"
	"log/slog"
	"time"

	"sweepd/internal/logging"
)

// runMonitor is the health loop. Each tick it samples CPU utilization to
// decide whether the next scan should be deferred, then checks the
// scheduler heartbeat and restarts the loop if it has gone stale.
func (d *Daemon) runMonitor(ctx context.Context) {
	defer d.monitorWG.Done()
	logger := logging.NewComponentLogger(d.logger, "monitor")
	logger.Info("health monitor started",
		logging.Duration("interval", d.policy.MonitorInterval),
		logging.Float64("cpu_threshold", d.policy.CPUThresholdPercent),
		logging.Duration("heartbeat_timeout", d.policy.HeartbeatTimeout))

	ticker := time.NewTicker(d.policy.MonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("health monitor stopped")
			return
		case <-ticker.C:
			d.checkCPU(ctx, logger)
			d.checkScheduler(ctx, logger)
		}
	}
}

func (d *Daemon) checkCPU(ctx context.Context, logger *slog.Logger) {
	percent, err := d.sampleCPU(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn("cpu sample failed", logging.Error(err))
		}
		return
	}
	if percent <= d.policy.CPUThresholdPercent {
		return
	}
	if d.deferScan.CompareAndSwap(false, true) {
		logger.Info("cpu above threshold, next scan will be deferred",
			logging.Float64("cpu_percent", percent),
			logging.Float64("threshold", d.policy.CPUThresholdPercent))
	}
}

// checkScheduler restarts the scheduler loop when the heartbeat is older
// than the configured timeout. A zero heartbeat means the store has not
// seen a cycle yet; Start seeds it, so zero only occurs transiently.
func (d *Daemon) checkScheduler(ctx context.Context, logger *slog.Logger) {
	if ctx.Err() != nil {
		return
	}
	hb := d.store.Current().SchedulerHeartbeat
	if hb.IsZero() {
		return
	}
	stale := time.Since(hb)
	if stale <= d.policy.HeartbeatTimeout {
		return
	}
	logger.Warn("scheduler heartbeat stale, restarting loop",
		logging.Duration("stale_for", stale),
		logging.Duration("timeout", d.policy.HeartbeatTimeout))
	d.restartScheduler(ctx)
}

// restartScheduler replaces the scheduler goroutine. The old loop is
// cancelled and given a bounded window to exit; persisted state carries
// over untouched, so the new loop resumes from the last durable record.
func (d *Daemon) restartScheduler(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if old := d.sched; old != nil {
		old.cancel()
		select {
		case <-old.done:
		case <-time.After(5 * time.Second):
			d.logger.Warn("previous scheduler loop did not exit in time")
		}
	}

	// Reset the grace window so the fresh loop is not immediately declared
	// stale before its first cycle completes.
	d.store.Heartbeat(time.Now())
	d.sched = d.spawnScheduler(ctx)
}
