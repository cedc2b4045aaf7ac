package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"channelsurfer/internal/guide"
	"channelsurfer/internal/library"
	"channelsurfer/internal/textutil"
)

const (
	guideWidth      = 78
	guideTitleWidth = 30
)

// libraryGuide scans dir and groups its sidecar records into channels. It
// also reports how many videos have no readable guide record.
func libraryGuide(dir string, limit int) ([]library.Channel, int, error) {
	entries, err := library.Scan(dir)
	if err != nil {
		return nil, 0, err
	}
	records := make([]guide.Record, 0, len(entries))
	missing := 0
	for _, entry := range entries {
		if entry.Record == nil {
			missing++
			continue
		}
		records = append(records, *entry.Record)
	}
	return library.BuildGrid(records, limit), missing, nil
}

func guideClock(now time.Time) string {
	return now.Format("3:04 PM")
}

// renderGuideGrid prints the coloured channel listing shown by the menu.
func renderGuideGrid(out io.Writer, channels []library.Channel, missing int, now time.Time, colorize bool) {
	clock := guideClock(now)
	header := "TV GUIDE" + strings.Repeat(" ", max(guideWidth-len("TV GUIDE")-len(clock), 1)) + clock
	fmt.Fprintln(out, paint(ansiGuide, header, colorize))
	fmt.Fprintln(out)

	if len(channels) == 0 {
		fmt.Fprintln(out, "No guide entries found in the library.")
	}
	for _, ch := range channels {
		fmt.Fprintln(out, paint(ansiChannel, centre("CH "+strconv.Itoa(int(ch.Number)), 15), colorize))
		fmt.Fprintln(out, paint(ansiChannel, centre(ch.Callsign, 15), colorize))
		for _, rec := range ch.Programmes {
			start := paint(ansiGuide, centre(rec.StartTime, 10), colorize)
			title := paint(ansiGuide, fmt.Sprintf("%-*s", guideTitleWidth, textutil.Truncate(rec.Title, guideTitleWidth)), colorize)
			runtime := paint(ansiGuide, centre(strconv.Itoa(rec.Minutes())+"m", 10), colorize)
			line := start + " " + title + " " + runtime
			if rec.IsFeatured {
				line += " " + paint(ansiGold, "★", colorize)
			}
			fmt.Fprintln(out, line)
		}
		fmt.Fprintln(out)
	}
	if missing > 0 {
		fmt.Fprintln(out, renderStatusLine(statusWarn, fmt.Sprintf("%d video(s) have no guide data", missing), colorize))
	}
}

// guideRows flattens channels into table rows for the guide command.
func guideRows(channels []library.Channel) [][]string {
	rows := make([][]string, 0)
	for _, ch := range channels {
		for _, rec := range ch.Programmes {
			featured := ""
			if rec.IsFeatured {
				featured = "★"
			}
			rows = append(rows, []string{
				strconv.Itoa(int(ch.Number)),
				ch.Callsign,
				rec.DayOfWeek,
				rec.StartTime + " - " + rec.EndTime,
				rec.Title,
				rec.Duration,
				string(rec.Category),
				featured,
			})
		}
	}
	return rows
}

func centre(value string, width int) string {
	n := len([]rune(value))
	if n >= width {
		return value
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + value + strings.Repeat(" ", width-n-left)
}
