package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"mkvaudur/internal/history"
	"mkvaudur/internal/reconcile"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded track exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.History.Enabled {
				fmt.Fprintln(out, "History is disabled")
				return nil
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			var entries []history.Entry
			if runID != "" {
				entries, err = store.ForRun(cmd.Context(), runID)
			} else {
				entries, err = store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history recorded")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.RecordedAt.Local().Format("2006-01-02 15:04:05"),
					filepath.Base(entry.SourcePath),
					strconv.Itoa(entry.TrackID),
					entry.Language,
					entry.Action,
					reconcile.FormatSeconds(entry.Difference),
					string(entry.Status),
					historyDetail(entry),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Recorded", "Source", "Track", "Lang", "Action", "Difference", "Status", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")
	cmd.Flags().StringVar(&runID, "run", "", "Only show entries of this run ID")
	return cmd
}

func historyDetail(entry history.Entry) string {
	if entry.Status == history.StatusFailed {
		return entry.ErrorMessage
	}
	return entry.OutputPath
}
