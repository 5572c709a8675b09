package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"sweepd/internal/retention"
)

//go:embed sample_config.toml
var sampleConfig string

// Retention contains the eviction policy thresholds.
type Retention struct {
	Directories    []string `toml:"directories"`
	MaxAge         string   `toml:"max_age"`
	MaxFilesPerDir int      `toml:"max_files_per_dir"`
	MaxDiskSizeMB  int64    `toml:"max_disk_size_mb"`
}

// Scan contains scheduler timing configuration.
type Scan struct {
	IntervalSeconds int `toml:"interval_seconds"`
}

// Monitor contains health monitor configuration.
type Monitor struct {
	IntervalSeconds         int     `toml:"interval_seconds"`
	CPUThresholdPercent     float64 `toml:"cpu_threshold_percent"`
	HeartbeatTimeoutSeconds int     `toml:"heartbeat_timeout_seconds"`
}

// Paths contains file locations owned by the daemon.
type Paths struct {
	StateFile string `toml:"state_file"`
	LogDir    string `toml:"log_dir"`
}

// History contains configuration for the sqlite scan journal.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
	MaxRows int    `toml:"max_rows"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the full sweepd configuration.
type Config struct {
	Retention Retention `toml:"retention"`
	Scan      Scan      `toml:"scan"`
	Monitor   Monitor   `toml:"monitor"`
	Paths     Paths     `toml:"paths"`
	History   History   `toml:"history"`
	Logging   Logging   `toml:"logging"`

	maxAge time.Duration
}

// DefaultConfigPath returns the standard location of the config file.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/sweepd/config.toml")
}

// Load locates, parses, and validates a configuration file. Values may also
// be supplied through SWEEPD_* environment variables, which take precedence
// over the file. The returned config has all path fields expanded and the
// retention duration resolved.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(defaultPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaultPath, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return defaultPath, true, nil
}

// Policy resolves the immutable retention policy consumed by the evaluator,
// scanner, and daemon.
func (c *Config) Policy() retention.Policy {
	heartbeat := time.Duration(c.Monitor.HeartbeatTimeoutSeconds) * time.Second
	return retention.Policy{
		Directories:         append([]string(nil), c.Retention.Directories...),
		MaxAge:              c.maxAge,
		MaxFilesPerDir:      c.Retention.MaxFilesPerDir,
		MaxDiskSizeBytes:    c.Retention.MaxDiskSizeMB * 1024 * 1024,
		ScanInterval:        time.Duration(c.Scan.IntervalSeconds) * time.Second,
		MonitorInterval:     time.Duration(c.Monitor.IntervalSeconds) * time.Second,
		CPUThresholdPercent: c.Monitor.CPUThresholdPercent,
		HeartbeatTimeout:    heartbeat,
	}
}

// MaxAge returns the parsed retention duration.
func (c *Config) MaxAge() time.Duration {
	return c.maxAge
}

// HistoryPath returns the resolved scan journal location, empty when the
// journal is disabled.
func (c *Config) HistoryPath() string {
	if !c.History.Enabled {
		return ""
	}
	return c.History.Path
}

// EnsureDirectories creates the directories the daemon itself owns. The
// monitored directories are deliberately not created: a missing monitored
// directory is a per-cycle error, not a setup step.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, filepath.Dir(c.Paths.StateFile)} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.History.Enabled {
		if err := os.MkdirAll(filepath.Dir(c.History.Path), 0o755); err != nil {
			return fmt.Errorf("create history directory: %w", err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Sample returns the embedded sample configuration text.
func Sample() string {
	return sampleConfig
}
