package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"channelsurfer/internal/config"
	"channelsurfer/internal/download"
	"channelsurfer/internal/history"
	"channelsurfer/internal/logging"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var fileName string

	cmd := &cobra.Command{
		Use:   "download <identifier>",
		Short: "Download an item's video into the library with its guide record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identifier := strings.TrimSpace(args[0])
			cfg := ctx.configValue()
			logger := ctx.loggerValue()

			target := cfg.Paths.LibraryDir
			if strings.TrimSpace(outputDir) != "" {
				expanded, err := config.ExpandPath(outputDir)
				if err != nil {
					return fmt.Errorf("resolve output dir: %w", err)
				}
				target = expanded
			}

			client, err := ctx.archiveClient()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				logging.WarnWithContext(logger, "download history unavailable", "history_open_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "downloads still work; history will not be recorded"),
				)
				store = nil
			} else {
				defer store.Close()
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Fetching metadata for: %s\n", identifier)

			progress := newProgressReporter(cmd.ErrOrStderr(), identifier)
			orchestrator := download.NewOrchestrator(1, logger)
			defer orchestrator.Close()
			task := ctx.downloader(client).Task(identifier, download.Options{
				OutputDir:     target,
				PreferredFile: fileName,
				Progress:      progress.update,
			})
			if err := orchestrator.Start(identifier, task); err != nil {
				return err
			}
			if err := orchestrator.Wait(cmd.Context()); err != nil {
				orchestrator.Close()
			}
			progress.finish()

			var result error
			for _, outcome := range orchestrator.Poll() {
				recordOutcome(context.WithoutCancel(cmd.Context()), store, outcome, logger)
				if err := reportDownload(out, outcome); err != nil {
					result = errors.Join(result, err)
				}
			}
			return result
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory to save into (defaults to paths.library_dir)")
	cmd.Flags().StringVarP(&fileName, "file", "f", "", "Name of the video file to download when the item has several")
	return cmd
}

func reportDownload(out io.Writer, outcome download.Outcome) error {
	switch outcome.Kind {
	case download.OutcomeSuccess:
		res := outcome.Result
		rec := res.Record
		fmt.Fprintf(out, "Downloaded: %s (%s)\n", res.FileName, humanize.Bytes(uint64(max(res.Bytes, 0))))
		fmt.Fprintf(out, "  Saved to: %s\n", res.ArtifactPath)
		fmt.Fprintf(out, "  Guide: CH %d %s, %s %s-%s, %s\n",
			rec.ChannelNumber, rec.StationCallsign, rec.DayOfWeek, rec.StartTime, rec.EndTime, rec.Category)
		return nil
	case download.OutcomeAborted:
		if outcome.Err != nil {
			return fmt.Errorf("download %s aborted: %w", outcome.Identifier, outcome.Err)
		}
		return fmt.Errorf("download %s aborted: %s", outcome.Identifier, outcome.Reason)
	default:
		return fmt.Errorf("download %s: %w", outcome.Identifier, outcome.Err)
	}
}
