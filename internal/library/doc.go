// Package library owns the on-disk download directory: artifact naming,
// guide sidecars written next to each artifact, the guide grid rebuilt from
// those sidecars, and clearing the library.
//
// The sidecar is the only persisted form of guide data. Nothing here caches
// records; every listing re-reads the directory.
package library
