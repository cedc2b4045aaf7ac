// Package main hosts the channelsurfer CLI entrypoint and command graph.
//
// The Cobra command tree searches the Internet Archive, downloads items into
// the local library with their guide sidecars, renders the TV guide built from
// those sidecars, and runs the playback server. The interactive menu combines
// all of these in one long-running session with background downloads.
//
// Keep this package declarative: behaviour belongs in the internal packages,
// commands here only resolve configuration, wire components, and present
// results.
package main
