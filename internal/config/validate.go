package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validateDownloads(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateArchive() error {
	parsed, err := url.Parse(c.Archive.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("archive.base_url must be an absolute URL, got %q", c.Archive.BaseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("archive.base_url must use http or https, got %q", parsed.Scheme)
	}
	return ensurePositiveMap(map[string]int{
		"archive.search_rows":      c.Archive.SearchRows,
		"archive.request_timeout":  c.Archive.RequestTimeout,
		"archive.download_timeout": c.Archive.DownloadTimeout,
	})
}

func (c *Config) validateDownloads() error {
	if c.Downloads.MaxConcurrent <= 0 {
		return errors.New("downloads.max_concurrent must be positive")
	}
	return nil
}

func (c *Config) validateServer() error {
	if _, _, err := net.SplitHostPort(c.Server.Bind); err != nil {
		return fmt.Errorf("server.bind must be host:port: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
