package retention

import "time"

// FileRecord captures the filesystem metadata for one regular file in a
// monitored directory. Records are rebuilt from the live filesystem on every
// scan cycle and are never persisted.
type FileRecord struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Reason identifies which policy stage selected a file for deletion.
type Reason string

const (
	// ReasonExpired marks files older than the configured maximum age.
	ReasonExpired Reason = "expired"
	// ReasonCountOverflow marks the oldest files evicted to satisfy the
	// per-directory file count cap.
	ReasonCountOverflow Reason = "count-overflow"
	// ReasonSizeOverflow marks the globally oldest files evicted to satisfy
	// the aggregate disk size cap.
	ReasonSizeOverflow Reason = "size-overflow"
)

// Decision pairs a file with the stage that selected it for deletion.
type Decision struct {
	File   FileRecord
	Reason Reason
}

// Policy is the retention configuration resolved once at startup. All
// durations are positive after config validation; a zero cap disables the
// corresponding stage.
type Policy struct {
	Directories         []string
	MaxAge              time.Duration
	MaxFilesPerDir      int
	MaxDiskSizeBytes    int64
	ScanInterval        time.Duration
	MonitorInterval     time.Duration
	CPUThresholdPercent float64
	HeartbeatTimeout    time.Duration
}
