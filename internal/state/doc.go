// Package state persists the daemon's single cross-restart record.
//
// The record holds the last scan timestamps and summary, the consecutive
// failure streak, and the scheduler heartbeat the health monitor judges
// liveness by. Everything else the daemon knows is recomputed from the live
// filesystem each cycle.
package state
