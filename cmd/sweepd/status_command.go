package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sweepd/internal/logging"
	"sweepd/internal/scanner"
	"sweepd/internal/state"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the last persisted daemon state and free space",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store := state.NewStore(cfg.Paths.StateFile, logging.NewNop())
			cur := store.Load()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Daemon: %s\n", daemonLiveness(cfg.Paths.LogDir))
			fmt.Fprintf(out, "State file: %s\n", cfg.Paths.StateFile)
			if cur.LastScanCompletedAt.IsZero() {
				fmt.Fprintln(out, "No scan cycle recorded yet")
			} else {
				fmt.Fprintf(out, "Last scan completed: %s (%s ago)\n",
					cur.LastScanCompletedAt.Local().Format(time.RFC3339),
					time.Since(cur.LastScanCompletedAt).Round(time.Second))
			}
			if cur.ConsecutiveFailures > 0 {
				fmt.Fprintf(out, "Consecutive failures: %d\n", cur.ConsecutiveFailures)
			}
			if last := cur.LastScanResult; last != nil {
				fmt.Fprintln(out, renderTable(
					[]column{
						{title: "Scan"},
						{title: "Directories", numeric: true},
						{title: "Considered", numeric: true},
						{title: "Deleted", numeric: true},
						{title: "Freed", numeric: true},
						{title: "Errors", numeric: true},
						{title: "OK"},
					},
					[][]string{{
						last.ScanID,
						strconv.Itoa(last.Directories),
						strconv.Itoa(last.FilesConsidered),
						strconv.Itoa(last.FilesDeleted),
						formatBytes(last.BytesFreed),
						strconv.Itoa(last.ErrorCount),
						yesNo(last.Success),
					}},
				))
			}

			if len(cfg.Retention.Directories) > 0 {
				rows := make([][]string, 0, len(cfg.Retention.Directories))
				for _, dir := range cfg.Retention.Directories {
					rows = append(rows, []string{dir, formatFreeBytes(scanner.FreeBytes(dir))})
				}
				fmt.Fprintln(out, renderTable(
					[]column{{title: "Directory"}, {title: "Free Space", numeric: true}},
					rows,
				))
			}
			return nil
		},
	}
}

// daemonLiveness reports whether a daemon pid file exists and its process
// still responds. Best effort; stale pid files read as "not running".
func daemonLiveness(logDir string) string {
	data, err := os.ReadFile(filepath.Join(logDir, "sweepd.pid"))
	if err != nil {
		return "not running"
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return "not running"
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return "not running"
	}
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		return fmt.Sprintf("not running (stale pid file for %d)", pid)
	}
	return fmt.Sprintf("running (pid %d)", pid)
}
