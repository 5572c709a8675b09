package state

import "time"

// ScanSummary is the compact record of one scan cycle folded into the daemon
// state. The full per-directory breakdown lives in the history journal; this
// summary is what survives in the state file for quick operator inspection.
type ScanSummary struct {
	ScanID          string    `json:"scan_id"`
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
	Directories     int       `json:"directories"`
	FilesConsidered int       `json:"files_considered"`
	FilesDeleted    int       `json:"files_deleted"`
	BytesFreed      int64     `json:"bytes_freed"`
	ErrorCount      int       `json:"error_count"`
	Success         bool      `json:"success"`
}

// DaemonState is the single record persisted across restarts. It is written
// by the scheduler loop after every cycle and read by the health monitor; all
// access goes through the Store.
type DaemonState struct {
	LastScanStartedAt   time.Time    `json:"last_scan_started_at"`
	LastScanCompletedAt time.Time    `json:"last_scan_completed_at"`
	LastScanResult      *ScanSummary `json:"last_scan_result,omitempty"`
	ConsecutiveFailures int          `json:"consecutive_failures"`
	SchedulerHeartbeat  time.Time    `json:"scheduler_heartbeat"`
}
