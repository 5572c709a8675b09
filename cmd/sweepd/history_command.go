package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"sweepd/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent scan cycles from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("scan history is disabled; enable [history] in the configuration")
			}

			journal, err := history.Open(cfg.HistoryPath(), cfg.History.MaxRows)
			if err != nil {
				return fmt.Errorf("open history journal: %w", err)
			}
			defer journal.Close()

			records, err := journal.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No scan cycles recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					rec.CompletedAt.Local().Format(time.RFC3339),
					rec.ScanID,
					strconv.Itoa(rec.Directories),
					strconv.Itoa(rec.FilesConsidered),
					strconv.Itoa(rec.FilesDeleted),
					formatBytes(rec.BytesFreed),
					strconv.Itoa(rec.ErrorCount),
					yesNo(rec.Success),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]column{
					{title: "Completed"},
					{title: "Scan"},
					{title: "Dirs", numeric: true},
					{title: "Considered", numeric: true},
					{title: "Deleted", numeric: true},
					{title: "Freed", numeric: true},
					{title: "Errors", numeric: true},
					{title: "OK"},
				},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of cycles to show")
	return cmd
}
