package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"channelsurfer/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List finished downloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if clearAll {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return fmt.Errorf("clear history: %w", err)
				}
				fmt.Fprintf(out, "Removed %d history entries\n", removed)
				return nil
			}

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No downloads recorded yet")
				return nil
			}
			headers := []string{"Finished", "Identifier", "Title", "Outcome", "Size", "Elapsed", "Detail"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}
			fmt.Fprintln(out, renderTableWith(headers, historyRows(entries, time.Now()), aligns, tableOptions{
				maxWidth: map[int]int{2: 36, 6: 48},
			}))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show (0 shows all)")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete all recorded history")
	return cmd
}

func historyRows(entries []history.Entry, now time.Time) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		size := ""
		if entry.Bytes > 0 {
			size = humanize.Bytes(uint64(entry.Bytes))
		}
		detail := entry.Message
		if entry.ErrorKind != "" {
			detail = strings.TrimSpace(entry.ErrorKind + ": " + detail)
		}
		if entry.Outcome == history.OutcomeSuccess {
			detail = entry.ArtifactPath
		}
		rows = append(rows, []string{
			humanize.RelTime(entry.FinishedAt, now, "ago", "from now"),
			entry.Identifier,
			entry.Title,
			titleCaser.String(string(entry.Outcome)),
			size,
			entry.Elapsed().Round(time.Second).String(),
			detail,
		})
	}
	return rows
}
