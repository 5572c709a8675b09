package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"sweepd/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.MaxAge() != 3*24*time.Hour {
		t.Fatalf("expected default max age of 3 days, got %s", cfg.MaxAge())
	}
	policy := cfg.Policy()
	if policy.ScanInterval != 300*time.Second {
		t.Fatalf("unexpected scan interval %s", policy.ScanInterval)
	}
	if policy.CPUThresholdPercent != 80.0 {
		t.Fatalf("unexpected cpu threshold %v", policy.CPUThresholdPercent)
	}
	if policy.HeartbeatTimeout != 600*time.Second {
		t.Fatalf("expected heartbeat timeout to default to 2x scan interval, got %s", policy.HeartbeatTimeout)
	}
}

func TestLoadParsesFile(t *testing.T) {
	path := writeConfig(t, `
[retention]
directories = ["/var/log/app", "/var/log/app"]
max_age = "12h"
max_files_per_dir = 50
max_disk_size_mb = 100

[scan]
interval_seconds = 60
`)
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	policy := cfg.Policy()
	if len(policy.Directories) != 1 {
		t.Fatalf("expected duplicate directories removed, got %v", policy.Directories)
	}
	if policy.MaxAge != 12*time.Hour {
		t.Fatalf("unexpected max age %s", policy.MaxAge)
	}
	if policy.MaxDiskSizeBytes != 100*1024*1024 {
		t.Fatalf("unexpected size cap %d", policy.MaxDiskSizeBytes)
	}
	if policy.ScanInterval != time.Minute {
		t.Fatalf("unexpected scan interval %s", policy.ScanInterval)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"negative count cap": `
[retention]
max_files_per_dir = -1
`,
		"zero scan interval": `
[scan]
interval_seconds = 0
`,
		"bad max age": `
[retention]
max_age = "soon"
`,
		"cpu threshold over 100": `
[monitor]
cpu_threshold_percent = 140.0
`,
	}
	for name, contents := range cases {
		t.Run(name, func(t *testing.T) {
			if _, _, _, err := config.Load(writeConfig(t, contents)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SWEEPD_MAX_AGE", "45m")
	t.Setenv("SWEEPD_SCAN_INTERVAL", "30")
	t.Setenv("SWEEPD_CPU_THRESHOLD", "55.5")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	policy := cfg.Policy()
	if policy.MaxAge != 45*time.Minute {
		t.Fatalf("env max age not applied: %s", policy.MaxAge)
	}
	if policy.ScanInterval != 30*time.Second {
		t.Fatalf("env scan interval not applied: %s", policy.ScanInterval)
	}
	if policy.CPUThresholdPercent != 55.5 {
		t.Fatalf("env cpu threshold not applied: %v", policy.CPUThresholdPercent)
	}
}

func TestParseMaxAge(t *testing.T) {
	cases := []struct {
		input string
		want  time.Duration
	}{
		{"30s", 30 * time.Second},
		{"15m", 15 * time.Minute},
		{"6h", 6 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"3", 3 * 24 * time.Hour},
		{"1.5h", 90 * time.Minute},
		{" 2D ", 2 * 24 * time.Hour},
	}
	for _, tc := range cases {
		got, err := config.ParseMaxAge(tc.input)
		if err != nil {
			t.Fatalf("ParseMaxAge(%q) failed: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParseMaxAge(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}

	for _, bad := range []string{"", "abc", "-3d", "0"} {
		if _, err := config.ParseMaxAge(bad); err == nil {
			t.Fatalf("ParseMaxAge(%q) should fail", bad)
		}
	}
}

func TestCreateSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if err := config.CreateSample(path); err == nil {
		t.Fatal("expected error when config already exists")
	}
}
