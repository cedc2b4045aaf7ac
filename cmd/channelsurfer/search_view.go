package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"channelsurfer/internal/archive"
	"channelsurfer/internal/textutil"
)

const (
	descriptionLimit = 200
	// estimatedSizeLabel stands in for items that report no size.
	estimatedSizeLabel = "~15MB (est.)"
	searchRule         = 60
)

var titleCaser = cases.Title(language.English)

func formatCreators(creators []string) string {
	switch len(creators) {
	case 0:
		return "Unknown"
	case 1:
		return creators[0]
	default:
		return creators[0] + " et al"
	}
}

func formatItemSize(size *uint64) string {
	if size == nil {
		return estimatedSizeLabel
	}
	return humanize.Bytes(*size)
}

func formatDownloadCount(count *uint64) string {
	if count == nil {
		return "0"
	}
	return humanize.Comma(int64(*count))
}

func formatMediaType(mediaType string) string {
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		return ""
	}
	return titleCaser.String(mediaType)
}

func documentTitle(doc archive.SearchDocument) string {
	if strings.TrimSpace(doc.Title) == "" {
		return "(No Title)"
	}
	return doc.Title
}

func documentYear(doc archive.SearchDocument) string {
	if strings.TrimSpace(doc.Year) == "" {
		return "Unknown"
	}
	return doc.Year
}

// renderSearchResults prints the numbered two-line listing used by both the
// search command and the menu.
func renderSearchResults(out io.Writer, query string, resp *archive.SearchResponse, colorize bool) {
	if resp == nil || len(resp.Documents) == 0 {
		fmt.Fprintf(out, "No results found for query: %s\n", query)
		return
	}
	total := resp.NumFound
	if total < uint64(len(resp.Documents)) {
		total = uint64(len(resp.Documents))
	}
	fmt.Fprintf(out, "Found %s results (showing %d)\n", humanize.Comma(int64(total)), len(resp.Documents))
	if resp.Partial {
		fmt.Fprintln(out, renderStatusLine(statusWarn, "response was malformed; showing the items that could be recovered", colorize))
	}
	fmt.Fprintln(out, strings.Repeat("=", searchRule))
	for i, doc := range resp.Documents {
		index := paint(ansiGold, "["+strconv.Itoa(i+1)+"]", colorize)
		line := fmt.Sprintf("%s %s (%s) %s", index, documentTitle(doc), documentYear(doc), formatItemSize(doc.EstimatedSizeBytes))
		if media := formatMediaType(doc.MediaType); media != "" {
			line += " " + paint(ansiGray, media, colorize)
		}
		fmt.Fprintln(out, line)
		fmt.Fprintf(out, "    Creator: %s  ID: %s  Downloads: %s\n",
			formatCreators(doc.Creators),
			paint(ansiGreen, doc.Identifier, colorize),
			formatDownloadCount(doc.DownloadCount),
		)
		if desc := textutil.CollapseWhitespace(doc.Description); desc != "" {
			fmt.Fprintf(out, "    %s\n", paint(ansiGray, textutil.Truncate(desc, descriptionLimit), colorize))
		}
		fmt.Fprintln(out, strings.Repeat("-", searchRule))
	}
}
