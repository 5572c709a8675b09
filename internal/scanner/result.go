package scanner

import (
	"time"

	"sweepd/internal/state"
)

// DirResult is the outcome of one scan cycle for a single monitored
// directory.
type DirResult struct {
	Path            string
	FilesConsidered int
	FilesDeleted    int
	BytesFreed      int64
	Errors          []string
	// FreeBytes is the filesystem free space observed during the scan,
	// captured best-effort for operator telemetry (-1 when unavailable).
	FreeBytes int64
}

// ScanResult aggregates one full pass over all monitored directories.
type ScanResult struct {
	ScanID      string
	StartedAt   time.Time
	CompletedAt time.Time
	// Success is false only when the cycle itself was cut short (for
	// example by cancellation). Contained per-file and per-directory errors
	// leave it true; they are reported through the Errors lists instead.
	Success bool
	Dirs    []*DirResult

	byPath map[string]*DirResult
}

func newScanResult(scanID string, started time.Time) *ScanResult {
	return &ScanResult{
		ScanID:    scanID,
		StartedAt: started,
		Success:   true,
		byPath:    make(map[string]*DirResult),
	}
}

// Dir returns the result bucket for a directory, creating it on first use.
func (r *ScanResult) Dir(path string) *DirResult {
	if dr, ok := r.byPath[path]; ok {
		return dr
	}
	dr := &DirResult{Path: path, FreeBytes: -1}
	r.byPath[path] = dr
	r.Dirs = append(r.Dirs, dr)
	return dr
}

// TotalConsidered sums files seen across all directories.
func (r *ScanResult) TotalConsidered() int {
	var n int
	for _, dr := range r.Dirs {
		n += dr.FilesConsidered
	}
	return n
}

// TotalDeleted sums deletions across all directories.
func (r *ScanResult) TotalDeleted() int {
	var n int
	for _, dr := range r.Dirs {
		n += dr.FilesDeleted
	}
	return n
}

// TotalBytesFreed sums reclaimed bytes across all directories.
func (r *ScanResult) TotalBytesFreed() int64 {
	var n int64
	for _, dr := range r.Dirs {
		n += dr.BytesFreed
	}
	return n
}

// TotalErrors counts contained errors across all directories.
func (r *ScanResult) TotalErrors() int {
	var n int
	for _, dr := range r.Dirs {
		n += len(dr.Errors)
	}
	return n
}

// Summary condenses the result into the form persisted in the daemon state.
func (r *ScanResult) Summary() state.ScanSummary {
	return state.ScanSummary{
		ScanID:          r.ScanID,
		StartedAt:       r.StartedAt,
		CompletedAt:     r.CompletedAt,
		Directories:     len(r.Dirs),
		FilesConsidered: r.TotalConsidered(),
		FilesDeleted:    r.TotalDeleted(),
		BytesFreed:      r.TotalBytesFreed(),
		ErrorCount:      r.TotalErrors(),
		Success:         r.Success,
	}
}
