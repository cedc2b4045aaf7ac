package config

const (
	defaultConfigPath      = "~/.config/channelsurfer/config.toml"
	defaultLibraryDir      = "~/Videos/channelsurfer"
	defaultLogDir          = "~/.local/share/channelsurfer/logs"
	defaultStateDir        = "~/.local/share/channelsurfer"
	defaultArchiveBaseURL  = "https://archive.org"
	defaultMediaType       = "movies"
	defaultSearchRows      = 10
	defaultUserAgent       = "channelsurfer/dev"
	defaultRequestTimeout  = 30
	defaultDownloadTimeout = 4 * 60 * 60
	defaultMaxConcurrent   = 3
	defaultServerBind      = "127.0.0.1:3030"
	defaultPlayer          = "mpv"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultLogMaxSizeMB    = 10
	defaultLogMaxBackups   = 3
	defaultLogMaxAgeDays   = 28

	// maxSearchRows mirrors the document cap applied by the best-effort extractor.
	maxSearchRows = 100
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
			StateDir:   defaultStateDir,
		},
		Archive: Archive{
			BaseURL:         defaultArchiveBaseURL,
			MediaType:       defaultMediaType,
			SearchRows:      defaultSearchRows,
			UserAgent:       defaultUserAgent,
			RequestTimeout:  defaultRequestTimeout,
			DownloadTimeout: defaultDownloadTimeout,
		},
		Downloads: Downloads{
			MaxConcurrent: defaultMaxConcurrent,
		},
		Server: Server{
			Bind:   defaultServerBind,
			Player: defaultPlayer,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}
