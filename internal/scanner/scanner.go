package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"sweepd/internal/logging"
	"sweepd/internal/retention"
)

// Scanner performs one full enforcement pass over the monitored directories.
// It lists files non-recursively, asks the retention evaluator which files to
// evict, and deletes them. Deletion is permanent; there are no trash
// semantics.
type Scanner struct {
	policy retention.Policy
	logger *slog.Logger

	// remove performs the actual unlink; swapped in tests to simulate
	// files vanishing between listing and deletion.
	remove func(path string) error
}

// New constructs a scanner for the resolved policy.
func New(policy retention.Policy, logger *slog.Logger) *Scanner {
	return &Scanner{
		policy: policy,
		logger: logging.NewComponentLogger(logger, "scanner"),
		remove: os.Remove,
	}
}

// RunOnce executes one scan cycle. Directories are processed independently:
// a missing or unreadable directory is recorded on its own result and
// skipped, never fatal to the cycle. After the per-directory age and count
// stages, the aggregate size stage runs once over the retained union, a
// barrier after all listings complete.
func (s *Scanner) RunOnce(ctx context.Context) *ScanResult {
	now := time.Now()
	result := newScanResult(uuid.NewString(), now)
	logger := s.logger.With(logging.String(logging.FieldScanID, result.ScanID))

	var retained []retention.FileRecord
	for _, dir := range s.policy.Directories {
		if ctx.Err() != nil {
			result.Success = false
			result.Dir(dir).Errors = append(result.Dir(dir).Errors, fmt.Sprintf("scan cancelled: %v", ctx.Err()))
			break
		}

		dr := result.Dir(dir)
		dr.FreeBytes = FreeBytes(dir)

		records := s.listDirectory(dir, dr)
		dr.FilesConsidered = len(records)
		if len(records) == 0 {
			continue
		}

		decisions, survivors := retention.EvaluateDirectory(records, now, s.policy.MaxAge, s.policy.MaxFilesPerDir)
		s.deleteSelected(logger, dr, decisions)
		retained = append(retained, survivors...)
	}

	if ctx.Err() == nil {
		// Global size stage: oldest first across every monitored directory.
		for _, decision := range retention.EvaluateSize(retained, s.policy.MaxDiskSizeBytes) {
			dr := result.Dir(filepath.Dir(decision.File.Path))
			s.deleteOne(logger, dr, decision)
		}
	}

	result.CompletedAt = time.Now()
	return result
}

// listDirectory returns FileRecords for the regular files directly inside
// dir. Subdirectories are not descended into. A listing failure is recorded
// as a directory-level error; a stat failure on one entry is recorded and
// the rest of the listing proceeds.
func (s *Scanner) listDirectory(dir string, dr *DirResult) []retention.FileRecord {
	entries, err := os.ReadDir(dir)
	if err != nil {
		dr.Errors = append(dr.Errors, fmt.Sprintf("list directory: %v", err))
		s.logger.Warn("directory unreadable, skipping for this cycle",
			logging.String(logging.FieldDirectory, dir),
			logging.Error(err))
		return nil
	}

	records := make([]retention.FileRecord, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Likely vanished between list and stat.
			dr.Errors = append(dr.Errors, fmt.Sprintf("stat %s: %v", entry.Name(), err))
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		records = append(records, retention.FileRecord{
			Path:    filepath.Join(dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return records
}

func (s *Scanner) deleteSelected(logger *slog.Logger, dr *DirResult, decisions []retention.Decision) {
	for _, decision := range decisions {
		s.deleteOne(logger, dr, decision)
	}
}

// deleteOne attempts a single eviction. Failures (already gone, permission
// denied) are contained: recorded on the directory result and the stage
// moves on. A file that vanished between listing and deletion is still a
// per-file error, even though there is nothing left to reclaim.
func (s *Scanner) deleteOne(logger *slog.Logger, dr *DirResult, decision retention.Decision) {
	if err := s.remove(decision.File.Path); err != nil {
		dr.Errors = append(dr.Errors, fmt.Sprintf("delete %s: %v", decision.File.Path, err))
		logger.Warn("delete failed",
			logging.String("path", decision.File.Path),
			logging.String("reason", string(decision.Reason)),
			logging.Error(err))
		return
	}
	dr.FilesDeleted++
	dr.BytesFreed += decision.File.Size
	logger.Debug("file evicted",
		logging.String("path", decision.File.Path),
		logging.String("reason", string(decision.Reason)),
		logging.Int64("size", decision.File.Size))
}
