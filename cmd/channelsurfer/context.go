package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"channelsurfer/internal/archive"
	"channelsurfer/internal/config"
	"channelsurfer/internal/download"
	"channelsurfer/internal/guide"
	"channelsurfer/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// loggerValue builds the command logger once. A logger that cannot open its
// file output falls back to a no-op logger so commands keep working.
func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) archiveClient() (*archive.Client, error) {
	cfg := c.configValue()
	if cfg == nil {
		return nil, fmt.Errorf("configuration unavailable")
	}
	return archive.New(cfg.Archive.BaseURL,
		archive.WithUserAgent(cfg.Archive.UserAgent),
		archive.WithRequestTimeout(cfg.RequestTimeout()),
		archive.WithLogger(c.loggerValue()),
	)
}

func (c *commandContext) downloader(client *archive.Client) *download.Downloader {
	cfg := c.configValue()
	return download.NewDownloader(client,
		download.WithSynthesizer(guide.Synthesizer{ThumbnailBase: client.ThumbnailURL("")}),
		download.WithStreamTimeout(cfg.DownloadTimeout()),
		download.WithDownloaderLogger(c.loggerValue()),
	)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
