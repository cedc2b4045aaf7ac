package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"channelsurfer/internal/download"
	"channelsurfer/internal/guide"
	"channelsurfer/internal/history"
	"channelsurfer/internal/library"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine(statusError, "Download failed for x: boom", false)
	want := statusIndent + "✗ Download failed for x: boom"
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine(statusOK, "done", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestFormatCreators(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, "Unknown"},
		{[]string{"Prelinger"}, "Prelinger"},
		{[]string{"Prelinger", "Someone"}, "Prelinger et al"},
	}
	for _, tt := range tests {
		if got := formatCreators(tt.in); got != tt.want {
			t.Errorf("formatCreators(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatItemSize(t *testing.T) {
	size := uint64(1_500_000)
	if got := formatItemSize(&size); got != "1.5 MB" {
		t.Fatalf("formatItemSize = %q", got)
	}
	if got := formatItemSize(nil); got != estimatedSizeLabel {
		t.Fatalf("formatItemSize(nil) = %q", got)
	}
}

func TestFormatProgress(t *testing.T) {
	tests := []struct {
		done, total int64
		want        string
	}{
		{0, 0, "-"},
		{500, 0, "500 B"},
		{50, 100, "50 B / 100 B (50%)"},
	}
	for _, tt := range tests {
		if got := formatProgress(tt.done, tt.total); got != tt.want {
			t.Errorf("formatProgress(%d, %d) = %q, want %q", tt.done, tt.total, got, tt.want)
		}
	}
}

func TestCentre(t *testing.T) {
	if got := centre("CH 2", 8); got != "  CH 2  " {
		t.Fatalf("centre = %q", got)
	}
	if got := centre("WIDE VALUE", 4); got != "WIDE VALUE" {
		t.Fatalf("centre should not truncate, got %q", got)
	}
}

func TestRenderGuideGrid(t *testing.T) {
	channels := library.BuildGrid([]guide.Record{
		{Title: "Late Show", ChannelNumber: 4, StationCallsign: "WXYZ", StartTime: "9:00 PM", Duration: "60 min"},
		{Title: "Evening News", ChannelNumber: 2, StationCallsign: "WNEWS", StartTime: "7:00 PM", Duration: "30 min", IsFeatured: true},
	}, library.MenuProgrammes)

	var buf bytes.Buffer
	renderGuideGrid(&buf, channels, 1, time.Date(2024, 1, 1, 15, 4, 0, 0, time.UTC), false)
	out := buf.String()

	requireContains(t, out, "3:04 PM")
	news := strings.Index(out, "CH 2")
	late := strings.Index(out, "CH 4")
	if news < 0 || late < 0 || news > late {
		t.Fatalf("channels should be listed in ascending order:\n%s", out)
	}
	requireContains(t, out, "60m")
	requireContains(t, out, "★")
	requireContains(t, out, "1 video(s) have no guide data")
}

func TestHistoryEntryFromOutcome(t *testing.T) {
	started := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	entry := historyEntry(download.Outcome{
		Identifier:    "reefer_madness",
		Kind:          download.OutcomeAborted,
		Reason:        "cancelled",
		CorrelationID: "abc",
		StartedAt:     started,
		FinishedAt:    started.Add(time.Minute),
	})
	if entry.Outcome != history.OutcomeAborted || entry.Message != "cancelled" || entry.ErrorKind != "" {
		t.Fatalf("unexpected entry: %#v", entry)
	}
	if entry.Elapsed() != time.Minute {
		t.Fatalf("Elapsed = %v", entry.Elapsed())
	}
}

func TestHistoryRows(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rows := historyRows([]history.Entry{
		{Identifier: "a", Outcome: history.OutcomeSuccess, Bytes: 2000, ArtifactPath: "/lib/a.ia.mp4", StartedAt: now.Add(-time.Hour), FinishedAt: now.Add(-time.Hour + 30*time.Second)},
		{Identifier: "b", Outcome: history.OutcomeFailure, ErrorKind: "transport", Message: "reset", StartedAt: now, FinishedAt: now},
	}, now)
	if len(rows) != 2 {
		t.Fatalf("expected two rows, got %d", len(rows))
	}
	if rows[0][3] != "Success" || rows[0][4] != "2.0 kB" || rows[0][5] != "30s" || rows[0][6] != "/lib/a.ia.mp4" {
		t.Fatalf("unexpected success row: %#v", rows[0])
	}
	if rows[1][3] != "Failure" || rows[1][6] != "transport: reset" {
		t.Fatalf("unexpected failure row: %#v", rows[1])
	}
}
