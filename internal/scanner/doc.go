// Package scanner executes scan cycles: listing monitored directories,
// applying the retention policy, and deleting the selected files.
//
// Errors are contained at the level they occur. A per-file failure never
// stops its stage, a per-directory failure never stops the cycle, and the
// full breakdown is carried in the ScanResult for the state store and the
// history journal.
package scanner
