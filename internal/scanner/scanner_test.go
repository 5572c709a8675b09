package scanner_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sweepd/internal/logging"
	"sweepd/internal/scanner"
	"sweepd/internal/testsupport"
)

func TestRunOnceDeletesExpiredFiles(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFileAged(t, dir, "old.log", 10, 8*24*time.Hour)
	testsupport.WriteFileAged(t, dir, "fresh.log", 10, 6*24*time.Hour)

	policy := testsupport.NewPolicy(dir)
	policy.MaxAge = 7 * 24 * time.Hour

	result := scanner.New(policy, logging.NewNop()).RunOnce(context.Background())
	if !result.Success {
		t.Fatalf("expected success, errors: %v", result.Dirs[0].Errors)
	}
	if result.TotalDeleted() != 1 || result.TotalBytesFreed() != 10 {
		t.Fatalf("unexpected totals: deleted=%d freed=%d", result.TotalDeleted(), result.TotalBytesFreed())
	}

	names := testsupport.ListNames(t, dir)
	if len(names) != 1 || names[0] != "fresh.log" {
		t.Fatalf("unexpected remaining files: %v", names)
	}
}

func TestRunOnceIsIdempotentForAge(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFileAged(t, dir, "old.log", 10, 48*time.Hour)
	testsupport.WriteFileAged(t, dir, "fresh.log", 10, time.Hour)

	policy := testsupport.NewPolicy(dir)
	s := scanner.New(policy, logging.NewNop())

	first := s.RunOnce(context.Background())
	if first.TotalDeleted() != 1 {
		t.Fatalf("expected one deletion in first pass, got %d", first.TotalDeleted())
	}
	second := s.RunOnce(context.Background())
	if second.TotalDeleted() != 0 {
		t.Fatalf("expected nothing newly expired, got %d", second.TotalDeleted())
	}
}

func TestRunOnceCountCap(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 12; i++ {
		testsupport.WriteFileAged(t, dir, fmt.Sprintf("f%02d.log", i), 1, time.Duration(12-i)*time.Minute)
	}

	policy := testsupport.NewPolicy(dir)
	policy.MaxFilesPerDir = 10

	result := scanner.New(policy, logging.NewNop()).RunOnce(context.Background())
	if result.TotalDeleted() != 2 {
		t.Fatalf("expected 2 deletions, got %d", result.TotalDeleted())
	}

	names := testsupport.ListNames(t, dir)
	if len(names) != 10 {
		t.Fatalf("expected 10 files remaining, got %d", len(names))
	}
	// f00 and f01 are the oldest and must be the ones gone.
	for _, name := range names {
		if name == "f00.log" || name == "f01.log" {
			t.Fatalf("oldest file %s should have been deleted", name)
		}
	}
}

func TestRunOnceGlobalSizeCap(t *testing.T) {
	const mb = 1024 * 1024
	dirA := t.TempDir()
	dirB := t.TempDir()
	// A holds 3MB, B holds 2.5MB; cap 4MB forces 1.5MB out, oldest first
	// regardless of directory.
	testsupport.WriteFileAged(t, dirA, "a-oldest.bin", mb, 10*time.Hour)
	testsupport.WriteFileAged(t, dirA, "a-mid.bin", mb, 5*time.Hour)
	testsupport.WriteFileAged(t, dirA, "a-new.bin", mb, time.Hour)
	testsupport.WriteFileAged(t, dirB, "b-old.bin", mb, 8*time.Hour)
	testsupport.WriteFileAged(t, dirB, "b-new.bin", mb+mb/2, 2*time.Hour)

	policy := testsupport.NewPolicy(dirA, dirB)
	policy.MaxAge = 0
	policy.MaxDiskSizeBytes = 4 * mb

	result := scanner.New(policy, logging.NewNop()).RunOnce(context.Background())
	// 5.5MB total; evicting a-oldest (10h) then b-old (8h) reaches 3.5MB.
	if result.TotalDeleted() != 2 {
		t.Fatalf("expected 2 deletions, got %d", result.TotalDeleted())
	}
	if _, err := os.Stat(filepath.Join(dirA, "a-oldest.bin")); !os.IsNotExist(err) {
		t.Fatal("a-oldest.bin should be gone")
	}
	if _, err := os.Stat(filepath.Join(dirB, "b-old.bin")); !os.IsNotExist(err) {
		t.Fatal("b-old.bin should be gone")
	}

	var remaining int64
	for _, dir := range []string{dirA, dirB} {
		entries, _ := os.ReadDir(dir)
		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil {
				t.Fatalf("stat: %v", err)
			}
			remaining += info.Size()
		}
	}
	if remaining > 4*mb {
		t.Fatalf("aggregate %d still above cap", remaining)
	}
}

func TestRunOnceUnreadableDirectoryIsContained(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	good := t.TempDir()
	testsupport.WriteFileAged(t, good, "old.log", 4, 48*time.Hour)

	policy := testsupport.NewPolicy(missing, good)

	result := scanner.New(policy, logging.NewNop()).RunOnce(context.Background())
	if !result.Success {
		t.Fatal("a missing directory must not fail the cycle")
	}
	if len(result.Dirs) != 2 {
		t.Fatalf("expected both directories in result, got %d", len(result.Dirs))
	}
	if len(result.Dir(missing).Errors) == 0 {
		t.Fatal("expected an error recorded for the missing directory")
	}
	if result.Dir(good).FilesDeleted != 1 {
		t.Fatal("expected the healthy directory to still be processed")
	}
}

func TestRunOnceSkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	testsupport.WriteFileAged(t, sub, "nested-old.log", 10, 72*time.Hour)
	testsupport.WriteFileAged(t, dir, "top-old.log", 10, 72*time.Hour)

	policy := testsupport.NewPolicy(dir)

	result := scanner.New(policy, logging.NewNop()).RunOnce(context.Background())
	if result.Dir(dir).FilesConsidered != 1 {
		t.Fatalf("expected only the top-level file considered, got %d", result.Dir(dir).FilesConsidered)
	}
	if _, err := os.Stat(filepath.Join(sub, "nested-old.log")); err != nil {
		t.Fatal("nested file must be left alone")
	}
	if _, err := os.Stat(filepath.Join(dir, "top-old.log")); !os.IsNotExist(err) {
		t.Fatal("top-level expired file should be deleted")
	}
}

func TestRunOnceEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	result := scanner.New(testsupport.NewPolicy(dir), logging.NewNop()).RunOnce(context.Background())
	if !result.Success || result.TotalDeleted() != 0 || result.TotalErrors() != 0 {
		t.Fatalf("expected clean no-op, got %+v", result.Summary())
	}
}

func TestRunOnceCancelledContext(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFileAged(t, dir, "old.log", 10, 48*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := scanner.New(testsupport.NewPolicy(dir), logging.NewNop()).RunOnce(ctx)
	if result.Success {
		t.Fatal("expected cancelled cycle to be marked unsuccessful")
	}
	if _, err := os.Stat(filepath.Join(dir, "old.log")); err != nil {
		t.Fatal("no deletion should happen after cancellation")
	}
}

func TestSummaryAggregation(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFileAged(t, dir, "old1.log", 6, 48*time.Hour)
	testsupport.WriteFileAged(t, dir, "old2.log", 4, 48*time.Hour)

	result := scanner.New(testsupport.NewPolicy(dir), logging.NewNop()).RunOnce(context.Background())
	summary := result.Summary()
	if summary.FilesConsidered != 2 || summary.FilesDeleted != 2 || summary.BytesFreed != 10 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.ScanID == "" {
		t.Fatal("expected a scan identifier")
	}
	if summary.CompletedAt.Before(summary.StartedAt) {
		t.Fatal("completion must not precede start")
	}
}
