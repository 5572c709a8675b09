// Package config loads, normalizes, and validates sweepd configuration.
//
// Values come from a TOML file (default ~/.config/sweepd/config.toml)
// layered with SWEEPD_* environment variable overrides. The resolved
// retention policy is exposed via Config.Policy and is immutable for the
// daemon's lifetime.
package config
