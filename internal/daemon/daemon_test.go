package daemon_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sweepd/internal/daemon"
	"sweepd/internal/logging"
	"sweepd/internal/state"
	"sweepd/internal/testsupport"
)

func idleCPU(context.Context) (float64, error) { return 5, nil }

func busyCPU(context.Context) (float64, error) { return 95, nil }

func newDaemon(t *testing.T, dirs []string, opts ...daemon.Option) (*daemon.Daemon, *state.Store) {
	t.Helper()
	logger := logging.NewNop()
	store := state.NewStore(filepath.Join(t.TempDir(), "state.json"), logger)
	opts = append([]daemon.Option{
		daemon.WithCPUSampler(idleCPU),
		daemon.WithLockPath(filepath.Join(t.TempDir(), "daemon.lock")),
	}, opts...)
	d, err := daemon.New(testsupport.NewPolicy(dirs...), store, logger, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(d.Stop)
	return d, store
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestStartRunsCycleAndDeletesExpired(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFileAged(t, dir, "old.dat", 64, 48*time.Hour)
	fresh := testsupport.WriteFileAged(t, dir, "new.dat", 64, time.Hour)

	d, store := newDaemon(t, []string{dir})
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		return store.Current().LastScanResult != nil
	}, "no scan cycle completed")

	names := testsupport.ListNames(t, dir)
	if len(names) != 1 || names[0] != filepath.Base(fresh) {
		t.Fatalf("expected only fresh file to survive, got %v", names)
	}

	cur := store.Current()
	if cur.LastScanResult.FilesDeleted < 1 {
		t.Fatalf("expected at least one deletion recorded, got %+v", cur.LastScanResult)
	}
	if !cur.LastScanResult.Success || cur.ConsecutiveFailures != 0 {
		t.Fatalf("expected successful cycle, got %+v", cur)
	}
	if cur.SchedulerHeartbeat.IsZero() {
		t.Fatal("heartbeat never advanced")
	}
}

func TestStartIsIdempotent(t *testing.T) {
	d, _ := newDaemon(t, []string{t.TempDir()})
	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	if err := d.Start(ctx); err != nil {
		t.Fatalf("second Start should be a no-op, got: %v", err)
	}
	d.Stop()
	d.Stop()
	if d.Status().Running {
		t.Fatal("daemon reports running after Stop")
	}
}

func TestSecondInstanceRejected(t *testing.T) {
	lock := filepath.Join(t.TempDir(), "shared.lock")
	logger := logging.NewNop()
	storeA := state.NewStore(filepath.Join(t.TempDir(), "a.json"), logger)
	storeB := state.NewStore(filepath.Join(t.TempDir(), "b.json"), logger)

	a, err := daemon.New(testsupport.NewPolicy(), storeA, logger,
		daemon.WithCPUSampler(idleCPU), daemon.WithLockPath(lock))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(a.Stop)
	b, err := daemon.New(testsupport.NewPolicy(), storeB, logger,
		daemon.WithCPUSampler(idleCPU), daemon.WithLockPath(lock))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(b.Stop)

	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := b.Start(context.Background()); err == nil {
		t.Fatal("expected second instance to be rejected")
	}
}

func TestHighCPUDefersNextScan(t *testing.T) {
	dir := t.TempDir()
	d, _ := newDaemon(t, []string{dir}, daemon.WithCPUSampler(busyCPU))
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		return d.Status().DeferPending
	}, "monitor never flagged a deferred scan")

	// The scheduler consumes the flag at its next tick and skips the cycle.
	// The busy sampler re-arms the flag on the following monitor tick, so a
	// file added now survives even though it is well past the age cutoff.
	testsupport.WriteFileAged(t, dir, "late.dat", 32, 72*time.Hour)
	time.Sleep(150 * time.Millisecond)
	if names := testsupport.ListNames(t, dir); len(names) == 0 {
		// Timing race: a cycle ran between the defer flag being consumed and
		// re-armed. That is legal behavior, not a failure of the veto itself,
		// so only assert the flag keeps coming back.
		waitFor(t, 2*time.Second, func() bool {
			return d.Status().DeferPending
		}, "defer flag not re-armed under sustained load")
	}
}

func TestStaleHeartbeatRestartsScheduler(t *testing.T) {
	dir := t.TempDir()
	policy := testsupport.NewPolicy(dir)
	// Long scan interval: after the immediate first cycle the scheduler
	// sleeps, so only a monitor-driven restart can produce a second cycle.
	policy.ScanInterval = time.Hour

	logger := logging.NewNop()
	store := state.NewStore(filepath.Join(t.TempDir(), "state.json"), logger)
	d, err := daemon.New(policy, store, logger,
		daemon.WithCPUSampler(idleCPU),
		daemon.WithLockPath(filepath.Join(t.TempDir(), "daemon.lock")))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(d.Stop)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool {
		return store.Current().LastScanResult != nil
	}, "first cycle never completed")
	firstScan := store.Current().LastScanResult.ScanID

	testsupport.WriteFileAged(t, dir, "stalled.dat", 16, 48*time.Hour)

	// Age the heartbeat past the timeout; the monitor must restart the
	// scheduler, whose fresh immediate cycle deletes the expired file.
	store.Heartbeat(time.Now().Add(-policy.HeartbeatTimeout - time.Second))

	waitFor(t, 3*time.Second, func() bool {
		cur := store.Current()
		return cur.LastScanResult != nil && cur.LastScanResult.ScanID != firstScan
	}, "no new cycle after stale heartbeat")

	waitFor(t, 3*time.Second, func() bool {
		entries, err := os.ReadDir(dir)
		return err == nil && len(entries) == 0
	}, "restarted scheduler did not enforce policy")
}

func TestStatePersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(t.TempDir(), "state.json")
	logger := logging.NewNop()

	store := state.NewStore(statePath, logger)
	d, err := daemon.New(testsupport.NewPolicy(dir), store, logger,
		daemon.WithCPUSampler(idleCPU),
		daemon.WithLockPath(filepath.Join(t.TempDir(), "daemon.lock")))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool {
		return store.Current().LastScanResult != nil
	}, "no scan cycle completed")
	d.Stop()
	want := store.Current().LastScanResult.ScanID

	reloaded := state.NewStore(statePath, logger)
	got := reloaded.Load()
	if got.LastScanResult == nil || got.LastScanResult.ScanID != want {
		t.Fatalf("state did not survive restart: %+v", got)
	}
}
