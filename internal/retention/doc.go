// Package retention holds the eviction policy and its evaluator.
//
// The evaluator is pure: it takes a snapshot of FileRecords plus the resolved
// Policy and decides which files to delete and why, in a fixed stage order
// (age, then per-directory count, then aggregate size across all monitored
// directories). Filesystem access and deletion live in the scanner package.
package retention
