package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"sweepd/internal/history"
	"sweepd/internal/logging"
	"sweepd/internal/retention"
	"sweepd/internal/scanner"
	"sweepd/internal/state"
)

// Daemon owns the two background activities (scheduler loop and health
// monitor) and enforces single-instance execution through a lock file.
type Daemon struct {
	policy  retention.Policy
	logger  *slog.Logger
	store   *state.Store
	journal *history.Store
	scanner *scanner.Scanner

	lockPath string
	lock     *flock.Flock

	sampleCPU CPUSampler

	running   atomic.Bool
	cancel    context.CancelFunc
	monitorWG sync.WaitGroup

	// deferScan is set by the monitor when CPU is above threshold and
	// consumed by the scheduler at its next tick.
	deferScan atomic.Bool

	mu    sync.Mutex
	sched *schedulerHandle
}

// Option configures optional Daemon behavior.
type Option func(*Daemon)

// WithJournal attaches a scan history journal.
func WithJournal(journal *history.Store) Option {
	return func(d *Daemon) { d.journal = journal }
}

// WithCPUSampler overrides the CPU utilization source (used in tests).
func WithCPUSampler(sampler CPUSampler) Option {
	return func(d *Daemon) {
		if sampler != nil {
			d.sampleCPU = sampler
		}
	}
}

// WithLockPath overrides the single-instance lock file location.
func WithLockPath(path string) Option {
	return func(d *Daemon) { d.lockPath = path }
}

// New constructs a daemon with initialized dependencies.
func New(policy retention.Policy, store *state.Store, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if store == nil || logger == nil {
		return nil, errors.New("daemon requires a state store and logger")
	}
	if policy.ScanInterval <= 0 || policy.MonitorInterval <= 0 || policy.HeartbeatTimeout <= 0 {
		return nil, errors.New("daemon requires positive scan, monitor, and heartbeat intervals")
	}

	d := &Daemon{
		policy:    policy,
		logger:    logger,
		store:     store,
		scanner:   scanner.New(policy, logger),
		lockPath:  filepath.Join(os.TempDir(), "sweepd.lock"),
		sampleCPU: defaultCPUSampler,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.lock = flock.New(d.lockPath)
	return d, nil
}

// Start launches the scheduler loop and health monitor as background
// goroutines. Calling Start while the daemon is already running is a no-op.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return nil
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another sweepd instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	prior := d.store.Load()
	if !prior.LastScanCompletedAt.IsZero() {
		d.logger.Info("resuming from prior state",
			logging.Time("last_scan_completed_at", prior.LastScanCompletedAt),
			logging.Int("consecutive_failures", prior.ConsecutiveFailures))
	}
	d.store.Heartbeat(time.Now())

	if len(d.policy.Directories) == 0 {
		d.logger.Warn("no directories configured, daemon will idle")
	}

	d.mu.Lock()
	d.sched = d.spawnScheduler(runCtx)
	d.mu.Unlock()

	d.monitorWG.Add(1)
	go d.runMonitor(runCtx)

	d.running.Store(true)
	d.logger.Info("sweepd daemon started",
		logging.String("lock", d.lockPath),
		logging.Duration("scan_interval", d.policy.ScanInterval),
		logging.Duration("monitor_interval", d.policy.MonitorInterval))
	return nil
}

// Stop signals both background activities and blocks until they exit.
// Shutdown is bounded by at most one in-flight scan: the stop signal is
// observed at loop tops, never mid-deletion.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.monitorWG.Wait()

	d.mu.Lock()
	sched := d.sched
	d.sched = nil
	d.mu.Unlock()
	if sched != nil {
		<-sched.done
	}

	if err := d.store.Save(); err != nil {
		d.logger.Warn("final state save failed", logging.Error(err))
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("sweepd daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.journal != nil {
		return d.journal.Close()
	}
	return nil
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	DeferPending  bool
	State         state.DaemonState
	StateFilePath string
	LockFilePath  string
}

// Status returns a torn-free snapshot of the daemon's condition.
func (d *Daemon) Status() Status {
	return Status{
		Running:       d.running.Load(),
		DeferPending:  d.deferScan.Load(),
		State:         d.store.Current(),
		StateFilePath: d.store.Path(),
		LockFilePath:  d.lockPath,
	}
}
