package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"sweepd/internal/history"
	"sweepd/internal/logging"
	"sweepd/internal/scanner"
	"sweepd/internal/state"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one scan cycle immediately and report the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("prepare directories: %w", err)
			}

			logger := logging.NewNop()
			if !quiet {
				logger, err = logging.New(logging.Options{
					Level:       cfg.Logging.Level,
					Format:      cfg.Logging.Format,
					OutputPaths: []string{"stderr"},
				})
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}
			}

			result := scanner.New(cfg.Policy(), logger).RunOnce(cmd.Context())
			summary := result.Summary()

			store := state.NewStore(cfg.Paths.StateFile, logger)
			store.Load()
			store.FoldResult(summary)
			if err := store.Save(); err != nil {
				logger.Warn("state save failed", logging.Error(err))
			}

			if cfg.History.Enabled {
				if journal, journalErr := history.Open(cfg.HistoryPath(), cfg.History.MaxRows); journalErr == nil {
					if err := journal.RecordScan(cmd.Context(), summary); err != nil {
						logger.Warn("history journal write failed", logging.Error(err))
					}
					_ = journal.Close()
				}
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(result.Dirs))
			for _, dir := range result.Dirs {
				rows = append(rows, []string{
					dir.Path,
					strconv.Itoa(dir.FilesConsidered),
					strconv.Itoa(dir.FilesDeleted),
					formatBytes(dir.BytesFreed),
					strconv.Itoa(len(dir.Errors)),
					formatFreeBytes(dir.FreeBytes),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]column{
					{title: "Directory"},
					{title: "Considered", numeric: true},
					{title: "Deleted", numeric: true},
					{title: "Freed", numeric: true},
					{title: "Errors", numeric: true},
					{title: "Free Space", numeric: true},
				},
				rows,
			))
			fmt.Fprintf(out, "Scan %s: %d deleted, %s freed, %d errors\n",
				summary.ScanID, summary.FilesDeleted, formatBytes(summary.BytesFreed), summary.ErrorCount)

			if summary.ErrorCount > 0 {
				return fmt.Errorf("scan completed with %d errors", summary.ErrorCount)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress per-file log output")
	return cmd
}
