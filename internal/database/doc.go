// Package database provides SQLite-based storage for zonecheck.
//
// This package implements the StateDB, which stores:
//   - The user configuration as string key/value entries
//   - Completed security checks for the history view
//
// SQLite is accessed through modernc.org/sqlite, so the binary stays
// CGO-free. The database is a single file shared by every zonecheck
// process of the user; WAL mode lets a running watcher read while another
// process saves configuration.
package database
