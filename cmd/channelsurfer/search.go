package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"channelsurfer/internal/archive"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var mediaType string

	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Search the Internet Archive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return fmt.Errorf("search query required")
			}
			cfg := ctx.configValue()
			client, err := ctx.archiveClient()
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = cfg.Archive.SearchRows
			}
			if strings.TrimSpace(mediaType) == "" {
				mediaType = cfg.Archive.MediaType
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Searching for: %s\n", query)
			resp, err := client.Search(cmd.Context(), archive.Query{Text: query, MediaType: mediaType, Rows: limit})
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			renderSearchResults(out, query, resp, shouldColorize(out))
			if len(resp.Documents) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "To download a video, run:")
				fmt.Fprintln(out, "  channelsurfer download <identifier>")
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (defaults to archive.search_rows)")
	cmd.Flags().StringVar(&mediaType, "media-type", "", "Archive media type to search (defaults to archive.media_type)")
	return cmd
}
