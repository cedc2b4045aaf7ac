package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"channelsurfer/internal/library"
)

func newClearCommand(ctx *commandContext) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every video in the library along with its guide record",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			lock, err := acquireLibraryLock(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = lock.Unlock() }()

			out := cmd.OutOrStdout()
			if !assumeYes {
				fmt.Fprintf(out, "WARNING: This will delete all video files in %s.\n", cfg.Paths.LibraryDir)
				ok, err := newPrompter(cmd.InOrStdin(), out).confirm(cmd.Context(), "Are you sure you want to proceed?")
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Operation cancelled.")
					return nil
				}
			}
			return clearLibrary(cmd.Context(), out, cfg.Paths.LibraryDir, ctx.loggerValue())
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func clearLibrary(ctx context.Context, out io.Writer, dir string, logger *slog.Logger) error {
	colorize := shouldColorize(out)
	result, err := library.Clear(ctx, dir, logger)
	if err != nil {
		return fmt.Errorf("clear library: %w", err)
	}
	fmt.Fprintln(out, renderStatusLine(statusOK, fmt.Sprintf("Deleted %d video files.", result.Count()), colorize))
	for _, failure := range result.Errors {
		fmt.Fprintln(out, renderStatusLine(statusError, fmt.Sprintf("%s: %v", failure.Path, failure.Error), colorize))
	}
	return nil
}
