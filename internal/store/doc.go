// Package store keeps a SQLite history of suite runs.
//
// Two tables are maintained:
//   - runs: one row per suite run with its summary counts
//   - entries: one row per test case, ordered by seq within a run
//
// Runs are identified by the report ID (UUIDv7), so listing runs by ID
// descending yields the most recent first. Saving a report whose ID is
// already stored is a no-op.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads while a run is being recorded
//   - synchronous=NORMAL
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: entries are deleted with their run
package store
