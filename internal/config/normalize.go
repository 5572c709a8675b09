package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeDirectories(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}

	maxAge, err := ParseMaxAge(c.Retention.MaxAge)
	if err != nil {
		return fmt.Errorf("retention.max_age: %w", err)
	}
	c.maxAge = maxAge

	if c.Monitor.HeartbeatTimeoutSeconds <= 0 {
		// Grace window defaults to two full scan intervals, floored at the
		// monitor interval so a single late tick is never treated as a stall.
		c.Monitor.HeartbeatTimeoutSeconds = 2 * c.Scan.IntervalSeconds
		if c.Monitor.HeartbeatTimeoutSeconds < c.Monitor.IntervalSeconds {
			c.Monitor.HeartbeatTimeoutSeconds = c.Monitor.IntervalSeconds
		}
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}

// normalizeDirectories expands every monitored path and removes duplicates
// while preserving the configured order.
func (c *Config) normalizeDirectories() error {
	seen := make(map[string]struct{}, len(c.Retention.Directories))
	cleaned := make([]string, 0, len(c.Retention.Directories))
	for _, dir := range c.Retention.Directories {
		trimmed := strings.TrimSpace(dir)
		if trimmed == "" {
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("retention.directories: %w", err)
		}
		if _, dup := seen[expanded]; dup {
			continue
		}
		seen[expanded] = struct{}{}
		cleaned = append(cleaned, expanded)
	}
	c.Retention.Directories = cleaned
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.StateFile, err = expandPath(c.Paths.StateFile); err != nil {
		return fmt.Errorf("paths.state_file: %w", err)
	}
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(c.Paths.LogDir, defaultHistoryDatabaseName)
	}
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

// applyEnvOverrides layers SWEEPD_* environment variables over the file
// values. The daemon originally shipped with an env-only configuration
// surface, so every retention knob stays reachable without a config file.
func (c *Config) applyEnvOverrides() {
	if v, ok := lookupEnv("SWEEPD_DIRECTORIES"); ok {
		c.Retention.Directories = strings.Split(v, ",")
	}
	if v, ok := lookupEnv("SWEEPD_MAX_AGE"); ok {
		c.Retention.MaxAge = v
	}
	if v, ok := lookupEnvInt("SWEEPD_MAX_FILES_PER_DIR"); ok {
		c.Retention.MaxFilesPerDir = v
	}
	if v, ok := lookupEnvInt("SWEEPD_MAX_DISK_SIZE_MB"); ok {
		c.Retention.MaxDiskSizeMB = int64(v)
	}
	if v, ok := lookupEnvInt("SWEEPD_SCAN_INTERVAL"); ok {
		c.Scan.IntervalSeconds = v
	}
	if v, ok := lookupEnvInt("SWEEPD_MONITOR_INTERVAL"); ok {
		c.Monitor.IntervalSeconds = v
	}
	if v, ok := lookupEnv("SWEEPD_CPU_THRESHOLD"); ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.Monitor.CPUThresholdPercent = parsed
		}
	}
	if v, ok := lookupEnvInt("SWEEPD_HEARTBEAT_TIMEOUT"); ok {
		c.Monitor.HeartbeatTimeoutSeconds = v
	}
	if v, ok := lookupEnv("SWEEPD_STATE_FILE"); ok {
		c.Paths.StateFile = v
	}
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func lookupEnvInt(key string) (int, bool) {
	v, ok := lookupEnv(key)
	if !ok {
		return 0, false
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return parsed, true
}
