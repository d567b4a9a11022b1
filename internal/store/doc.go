// Package store keeps a SQLite ledger of completed IFC imports.
//
// Each import records the content hash of the source file, the resolved
// building address and summary counts, followed by one row per equipment
// item. Recording the same source for the same building twice is a no-op.
//
// # Ordering
//
// Imports are ordered by seq, a per-ledger logical counter, then by id.
// Equipment rows are ordered by address with BINARY collation. Wall time is
// never stored, so two ledgers fed the same files read back identically.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON: equipment rows cascade with their import
package store
