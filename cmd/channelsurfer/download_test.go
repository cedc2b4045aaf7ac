package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"channelsurfer/internal/history"
	"channelsurfer/internal/library"
	"channelsurfer/internal/services"
	"channelsurfer/internal/testsupport"
)

func TestDownloadCommandWritesLibraryAndHistory(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"download", "reefer_madness"}, env.configPath, "")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	requireContains(t, out, "Downloaded: reefer_madness.mp4 (32 B)")
	requireContains(t, out, "Reefer Madness, reefer_madness.ia.mp4")

	records, err := library.Records(env.cfg.Paths.LibraryDir)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 1 || records[0].OriginalID != "reefer_madness" || records[0].Duration != "66 min" {
		t.Fatalf("unexpected library records: %#v", records)
	}

	store := testsupport.MustOpenHistory(t, env.cfg)
	entries, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one history entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Outcome != history.OutcomeSuccess || entry.Bytes != 32 || entry.Title != "Reefer Madness" || entry.CorrelationID == "" {
		t.Fatalf("unexpected history entry: %#v", entry)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "reefer_madness")
	requireContains(t, out, "Success")
}

func TestDownloadCommandOutputDirOverride(t *testing.T) {
	env := setupCLITestEnv(t)
	target := t.TempDir()

	if _, _, err := runCLI(t, []string{"download", "reefer_madness", "--output-dir", target}, env.configPath, ""); err != nil {
		t.Fatalf("download: %v", err)
	}
	names, err := library.Videos(target)
	if err != nil || len(names) != 1 {
		t.Fatalf("expected one video in override dir, got %v (%v)", names, err)
	}
	if names, _ := library.Videos(env.cfg.Paths.LibraryDir); len(names) != 0 {
		t.Fatalf("library dir should be untouched, got %v", names)
	}
}

func TestDownloadCommandNoVideoRecordsFailure(t *testing.T) {
	env := setupCLITestEnv(t)
	env.fake.AddItem("texts_only", `{"metadata":{"identifier":"texts_only","title":"Book"},"files":[{"name":"book.pdf","format":"Text PDF"}]}`, nil)

	_, _, err := runCLI(t, []string{"download", "texts_only"}, env.configPath, "")
	if !errors.Is(err, services.ErrNoArtifact) {
		t.Fatalf("expected ErrNoArtifact, got %v", err)
	}

	store := testsupport.MustOpenHistory(t, env.cfg)
	entries, err := store.ForIdentifier(context.Background(), "texts_only")
	if err != nil {
		t.Fatalf("ForIdentifier: %v", err)
	}
	if len(entries) != 1 || entries[0].Outcome != history.OutcomeFailure || entries[0].ErrorKind != "no_artifact" {
		t.Fatalf("unexpected history: %#v", entries)
	}
}

func TestGuideCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"download", "reefer_madness"}, env.configPath, ""); err != nil {
		t.Fatalf("download: %v", err)
	}
	records, err := library.Records(env.cfg.Paths.LibraryDir)
	if err != nil || len(records) != 1 {
		t.Fatalf("Records: %v %v", records, err)
	}

	out, _, err := runCLI(t, []string{"guide"}, env.configPath, "")
	if err != nil {
		t.Fatalf("guide: %v", err)
	}
	requireContains(t, out, "TV GUIDE")
	requireContains(t, out, "Reefer Madness")
	requireContains(t, out, records[0].StationCallsign)

	out, _, err = runCLI(t, []string{"guide", "--json"}, env.configPath, "")
	if err != nil {
		t.Fatalf("guide --json: %v", err)
	}
	var channels []library.Channel
	if err := json.Unmarshal([]byte(out), &channels); err != nil {
		t.Fatalf("decode guide json: %v\n%s", err, out)
	}
	if len(channels) != 1 || channels[0].Number != records[0].ChannelNumber || len(channels[0].Programmes) != 1 {
		t.Fatalf("unexpected guide: %#v", channels)
	}
}

func TestGuideCommandEmptyLibrary(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"guide"}, env.configPath, "")
	if err != nil {
		t.Fatalf("guide: %v", err)
	}
	requireContains(t, out, "No guide entries found")
}
