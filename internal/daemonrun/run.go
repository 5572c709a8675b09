package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"syscall"
	"time"

	"sweepd/internal/config"
	"sweepd/internal/daemon"
	"sweepd/internal/history"
	"sweepd/internal/logging"
	"sweepd/internal/state"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// keepLogFiles bounds how many per-run log files survive in the log
// directory, counting the current run's file. The daemon already manages
// other people's files; it should not hoard its own.
const keepLogFiles = 10

// Run wires configuration into a daemon and blocks until SIGINT or
// SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("sweepd-%s.log", runID))

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pruneOwnLogs(cfg.Paths.LogDir, logPath)

	pidPath := filepath.Join(cfg.Paths.LogDir, "sweepd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store := state.NewStore(cfg.Paths.StateFile, logger)

	var daemonOpts []daemon.Option
	if cfg.History.Enabled {
		journal, journalErr := history.Open(cfg.HistoryPath(), cfg.History.MaxRows)
		if journalErr != nil {
			logger.Warn("history journal unavailable, continuing without it",
				logging.Error(journalErr))
		} else {
			daemonOpts = append(daemonOpts, daemon.WithJournal(journal))
		}
	}

	d, err := daemon.New(cfg.Policy(), store, logger, daemonOpts...)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	<-signalCtx.Done()
	logger.Info("sweepd shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

// pruneOwnLogs removes the oldest per-run log files beyond the keep cap.
// Failures are ignored; stale logs are a nuisance, not an error.
func pruneOwnLogs(logDir, current string) {
	matches, err := filepath.Glob(filepath.Join(logDir, "sweepd-*.log"))
	if err != nil {
		return
	}
	var old []string
	for _, match := range matches {
		if match != current {
			old = append(old, match)
		}
	}
	// The cap includes the current run's file, so one fewer old file stays.
	const keepOld = keepLogFiles - 1
	if len(old) <= keepOld {
		return
	}
	// Run IDs are lexically sortable timestamps, so name order is age order.
	sort.Strings(old)
	for _, path := range old[:len(old)-keepOld] {
		_ = os.Remove(path)
	}
}
