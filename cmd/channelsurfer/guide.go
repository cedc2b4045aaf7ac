package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newGuideCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "guide",
		Short: "Show the TV guide built from the library's sidecars",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			channels, missing, err := libraryGuide(cfg.Paths.LibraryDir, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(channels)
			}
			if len(channels) == 0 {
				fmt.Fprintf(out, "No guide entries found in %s\n", cfg.Paths.LibraryDir)
				return nil
			}
			headers := []string{"CH", "Station", "Day", "Time", "Title", "Duration", "Category", "★"}
			aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft}
			fmt.Fprintln(out, renderTableWith(headers, guideRows(channels), aligns, tableOptions{
				title:    "TV GUIDE " + guideClock(time.Now()),
				maxWidth: map[int]int{4: 40},
			}))
			if missing > 0 {
				fmt.Fprintf(out, "%d video(s) have no guide data\n", missing)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum programmes per channel (0 shows all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the guide as JSON")
	return cmd
}
