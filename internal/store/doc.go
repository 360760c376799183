// Package store provides SQLite-backed run history for userstats.
//
// Every compute run that passes path validation is recorded with its
// outcome: status, error code, user count, the exact bytes written to the
// output file and their digest. Run IDs are UUIDv7, so lexical order
// matches creation order.
//
// # Database Configuration
//
//   - WAL mode: history can be read while a run is being recorded
//   - synchronous=NORMAL
//   - busy_timeout=5000: wait for locks up to 5 seconds
//
// Listing is deterministic: ORDER BY started_at DESC, id DESC.
package store
