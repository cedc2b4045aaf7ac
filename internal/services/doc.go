// Package services defines shared plumbing consumed by the archive client, the
// download task body, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp archive identifiers, stage names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the decode / transport / no-artifact / filesystem taxonomy.
//
// Use these helpers when wiring new download or search logic so failures are
// reported and recorded the same way everywhere.
package services
