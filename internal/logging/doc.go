// Package logging builds the slog loggers used across channelsurfer.
//
// It offers a compact console handler for interactive use, a JSON handler for
// machine consumption, rotating file output through lumberjack, and helpers
// that pull identifier and correlation fields out of a context.
package logging
