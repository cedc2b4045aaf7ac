package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"channelsurfer/internal/config"
	"channelsurfer/internal/testsupport"
)

const reeferMetadata = `{
  "metadata": {
    "identifier": "reefer_madness",
    "title": "Reefer Madness",
    "creator": "Dwain Esper",
    "subject": "drugs, exploitation",
    "year": "1936"
  },
  "files": [
    {"name": "reefer_madness.gif", "format": "Animated GIF"},
    {"name": "reefer_madness.mp4", "format": "h.264 MPEG4", "size": "32", "length": "3960.5"}
  ]
}`

const reeferSearch = `{
  "responseHeader": {"status": 0},
  "response": {"numFound": 2, "start": 0, "docs": [
    {"identifier": "reefer_madness", "title": "Reefer Madness", "year": "1936",
     "creator": ["Dwain Esper", "Louis Gasnier"], "downloads": 123456,
     "item_size": 734003200, "mediatype": "movies",
     "description": "A cautionary tale."},
    {"identifier": "reefer_trailer", "creator": "Unknown Studio"}
  ]}
}`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	fake       *testsupport.FakeArchive
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	t.Setenv("CHANNELSURFER_ARCHIVE_URL", "")
	t.Setenv("CHANNELSURFER_LIBRARY_DIR", "")

	fake := testsupport.NewFakeArchive(t)
	fake.SetSearchBody(reeferSearch)
	fake.AddItem("reefer_madness", reeferMetadata, map[string][]byte{
		"reefer_madness.mp4": bytes.Repeat([]byte("ab"), 16),
	})

	cfg := testsupport.NewConfig(t, testsupport.WithArchiveURL(fake.URL()))
	cfg.Logging.Level = "error"
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, fake: fake}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
