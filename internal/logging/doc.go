// Package logging assembles the structured slog loggers used across sweepd.
//
// It owns the console/JSON handlers, level and output plumbing, and the attr
// helpers that keep field names consistent between the scheduler, monitor,
// and CLI. A no-op logger is provided for tests and wiring code that cannot
// fail.
package logging
