// Package main hosts the sweepd CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the retention daemon in the foreground,
// triggers one-shot scan cycles, and surfaces persisted state, scan history,
// and configuration scaffolding. Command wiring stays thin here; the policy
// evaluation, scanning, and daemon lifecycle live in the internal packages.
package main
