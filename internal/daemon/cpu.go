package daemon

import (
	"context"
	"errors"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
)

// CPUSampler reports aggregate CPU utilization as a percentage in [0, 100].
type CPUSampler func(ctx context.Context) (float64, error)

// defaultCPUSampler measures utilization over a one second window across
// all cores combined.
func defaultCPUSampler(ctx context.Context) (float64, error) {
	percents, err := cpu.PercentWithContext(ctx, time.Second, false)
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return 0, errors.New("no cpu samples available")
	}
	return percents[0], nil
}
