// Package download runs archive downloads in the background.
//
// The Orchestrator owns the registry of in-flight downloads keyed by item
// identifier. Tasks wait for one of a fixed number of download slots, each
// runs with its own cancellable context, and every task is reported exactly
// once through Poll after it finishes. A panicking task is reported as
// aborted rather than taking the process down.
//
// Downloader is the task body: fetch metadata, pick the video file, stream
// it into the library and write the guide sidecar next to it.
package download
