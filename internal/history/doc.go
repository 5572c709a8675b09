// Package history journals completed scan cycles in SQLite.
//
// The journal backs the `sweepd history` command. It is bounded by a
// configurable row cap and is purely observational: the daemon never reads
// it back to make decisions.
package history
