package testsupport

import (
	"time"

	"sweepd/internal/retention"
)

// NewPolicy returns a policy suitable for fast tests: short intervals, all
// caps disabled until a test overrides them.
func NewPolicy(dirs ...string) retention.Policy {
	return retention.Policy{
		Directories:         dirs,
		MaxAge:              24 * time.Hour,
		ScanInterval:        50 * time.Millisecond,
		MonitorInterval:     50 * time.Millisecond,
		CPUThresholdPercent: 80,
		HeartbeatTimeout:    200 * time.Millisecond,
	}
}
