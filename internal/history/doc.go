// Package history persists a ledger of finished downloads in SQLite.
//
// The ledger answers "what did I download and did it work"; it never feeds
// the guide, which is rebuilt from sidecars alone. Busy database errors are
// retried with bounded backoff so the menu and a concurrent `history`
// invocation can share the file.
package history
