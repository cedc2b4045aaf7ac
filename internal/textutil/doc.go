// Package textutil provides small text helpers shared by the archive client,
// the download task, and the CLI.
//
// The primary use cases are:
//   - Sanitizing titles into filesystem-safe artifact names
//   - Truncating descriptions for display and excerpting raw payloads for
//     decode diagnostics
package textutil
