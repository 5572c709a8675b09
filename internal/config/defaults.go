package config

import (
	"os"
	"path/filepath"
)

const (
	defaultMaxAge              = "3d"
	defaultMaxFilesPerDir      = 10000
	defaultMaxDiskSizeMB       = 10240
	defaultScanInterval        = 300
	defaultMonitorInterval     = 300
	defaultCPUThreshold        = 80.0
	defaultHeartbeatTimeout    = 0 // 0 = twice the scan interval
	defaultLogDir              = "~/.local/share/sweepd/logs"
	defaultLogFormat           = "auto"
	defaultLogLevel            = "info"
	defaultHistoryMaxRows      = 1000
	defaultStateFileName       = "sweepd-state.json"
	defaultHistoryDatabaseName = "history.db"
)

// Default returns a Config populated with repository defaults. The monitored
// directory list is intentionally empty: without it the daemon is a no-op.
func Default() Config {
	return Config{
		Retention: Retention{
			MaxAge:         defaultMaxAge,
			MaxFilesPerDir: defaultMaxFilesPerDir,
			MaxDiskSizeMB:  defaultMaxDiskSizeMB,
		},
		Scan: Scan{
			IntervalSeconds: defaultScanInterval,
		},
		Monitor: Monitor{
			IntervalSeconds:         defaultMonitorInterval,
			CPUThresholdPercent:     defaultCPUThreshold,
			HeartbeatTimeoutSeconds: defaultHeartbeatTimeout,
		},
		Paths: Paths{
			StateFile: filepath.Join(os.TempDir(), defaultStateFileName),
			LogDir:    defaultLogDir,
		},
		History: History{
			Enabled: true,
			MaxRows: defaultHistoryMaxRows,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
