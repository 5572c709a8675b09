package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Validate ensures the configuration is usable. An empty directory list is
// allowed (the daemon becomes a no-op); invalid durations and caps are not.
func (c *Config) Validate() error {
	if err := c.validateRetention(); err != nil {
		return err
	}
	if err := c.validateIntervals(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRetention() error {
	for _, dir := range c.Retention.Directories {
		if !filepath.IsAbs(dir) {
			return fmt.Errorf("retention.directories: %q is not absolute", dir)
		}
	}
	if c.maxAge <= 0 {
		return errors.New("retention.max_age must be positive")
	}
	if c.Retention.MaxFilesPerDir < 0 {
		return errors.New("retention.max_files_per_dir must not be negative")
	}
	if c.Retention.MaxDiskSizeMB < 0 {
		return errors.New("retention.max_disk_size_mb must not be negative")
	}
	return nil
}

func (c *Config) validateIntervals() error {
	if c.Scan.IntervalSeconds <= 0 {
		return errors.New("scan.interval_seconds must be positive")
	}
	if c.Monitor.IntervalSeconds <= 0 {
		return errors.New("monitor.interval_seconds must be positive")
	}
	if c.Monitor.CPUThresholdPercent <= 0 || c.Monitor.CPUThresholdPercent > 100 {
		return errors.New("monitor.cpu_threshold_percent must be in (0, 100]")
	}
	if c.Monitor.HeartbeatTimeoutSeconds <= c.Scan.IntervalSeconds {
		return errors.New("monitor.heartbeat_timeout_seconds must be greater than scan.interval_seconds")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.StateFile == "" {
		return errors.New("paths.state_file must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if c.History.Enabled && c.History.MaxRows <= 0 {
		return errors.New("history.max_rows must be positive when history is enabled")
	}
	return nil
}
