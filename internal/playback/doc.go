// Package playback serves the local library over HTTP.
//
// The server lists the library and its guide grid, serves artifact files,
// launches the configured player for a library file and streams events
// (playback finished, library changed, download finished) to browsers with
// server-sent events. Only files directly inside the library directory can
// be played.
package playback
