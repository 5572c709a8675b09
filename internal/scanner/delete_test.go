package scanner

import (
	"context"
	"os"
	"testing"
	"time"

	"sweepd/internal/logging"
	"sweepd/internal/testsupport"
)

func TestRunOnceRecordsVanishedFile(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFileAged(t, dir, "going.log", 8, 48*time.Hour)

	s := New(testsupport.NewPolicy(dir), logging.NewNop())
	s.remove = func(path string) error {
		// An external deletion races the scan: the file is gone by the
		// time the eviction runs.
		_ = os.Remove(path)
		return os.Remove(path)
	}

	result := s.RunOnce(context.Background())
	if !result.Success {
		t.Fatal("contained per-file errors must not fail the cycle")
	}
	if result.TotalDeleted() != 0 {
		t.Fatalf("vanished file must not count as deleted, got %d", result.TotalDeleted())
	}
	if result.TotalErrors() != 1 {
		t.Fatalf("expected the vanished file recorded as a per-file error, got %d", result.TotalErrors())
	}
	if result.Summary().ErrorCount != 1 {
		t.Fatalf("expected the error surfaced in the summary, got %+v", result.Summary())
	}
}
