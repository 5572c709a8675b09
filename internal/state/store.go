package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"sweepd/internal/logging"
)

// Store owns the DaemonState record: an in-memory copy serialized behind a
// mutex for torn-free reads, and a JSON file on disk replaced atomically on
// every save. Losing the file is harmless; the next start is a cold start.
type Store struct {
	path   string
	logger *slog.Logger

	mu  sync.RWMutex
	cur DaemonState
}

// NewStore creates a store for the given state file path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logging.NewComponentLogger(logger, "state"),
	}
}

// Load reads the persisted record into memory and returns it. A missing,
// unreadable, or corrupt file degrades to defaults: corruption is never
// fatal, it just means a cold start.
func (s *Store) Load() DaemonState {
	loaded, err := s.read()
	if err != nil {
		s.logger.Warn("state file unreadable, starting cold", logging.Error(err), logging.String("path", s.path))
		loaded = DaemonState{}
	}

	s.mu.Lock()
	s.cur = loaded
	s.mu.Unlock()
	return loaded
}

func (s *Store) read() (DaemonState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DaemonState{}, nil
		}
		return DaemonState{}, fmt.Errorf("read state file: %w", err)
	}
	if len(data) == 0 {
		return DaemonState{}, nil
	}
	var st DaemonState
	if err := json.Unmarshal(data, &st); err != nil {
		return DaemonState{}, fmt.Errorf("parse state file: %w", err)
	}
	return st, nil
}

// Current returns a copy of the in-memory state.
func (s *Store) Current() DaemonState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Heartbeat advances the scheduler liveness timestamp without touching disk.
// The next Save persists it along with the rest of the record.
func (s *Store) Heartbeat(t time.Time) {
	s.mu.Lock()
	s.cur.SchedulerHeartbeat = t
	s.mu.Unlock()
}

// FoldResult records the outcome of a scan cycle: timestamps, the summary,
// the failure streak, and the heartbeat.
func (s *Store) FoldResult(summary ScanSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.LastScanStartedAt = summary.StartedAt
	s.cur.LastScanCompletedAt = summary.CompletedAt
	s.cur.LastScanResult = &summary
	if summary.Success {
		s.cur.ConsecutiveFailures = 0
	} else {
		s.cur.ConsecutiveFailures++
	}
	s.cur.SchedulerHeartbeat = summary.CompletedAt
}

// RecordFailure marks a cycle that never produced a result (an unexpected
// internal failure caught at the scheduler boundary).
func (s *Store) RecordFailure(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.ConsecutiveFailures++
	s.cur.LastScanCompletedAt = at
	s.cur.SchedulerHeartbeat = at
}

// Save writes the current record atomically: marshal, write a temp file in
// the same directory, rename over the target. A concurrent reader sees
// either the old record or the new one, never a torn write.
func (s *Store) Save() error {
	s.mu.RLock()
	snapshot := s.cur
	s.mu.RUnlock()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// Path returns the state file location.
func (s *Store) Path() string {
	return s.path
}
