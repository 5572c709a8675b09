// Package daemon runs the background retention enforcement service.
//
// A Daemon owns two goroutines. The scheduler loop executes scan cycles at
// a fixed interval and folds each outcome into the persisted state. The
// health monitor samples CPU utilization to apply back-pressure (the next
// scan is skipped while the host is busy) and watches the scheduler
// heartbeat, restarting the loop if it stalls. Single-instance execution
// is enforced with a file lock.
package daemon
