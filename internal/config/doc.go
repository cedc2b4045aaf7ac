// Package config loads, normalizes, and validates channelsurfer configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CHANNELSURFER_ARCHIVE_URL. The Config type centralizes every knob the CLI,
// the download orchestrator, and the playback server need.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
