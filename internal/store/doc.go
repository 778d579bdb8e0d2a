// Package store provides SQLite-backed storage for migrated documents.
//
// Two tables:
//   - documents: the canonical JSON body of each document with its
//     persisted revision and content hash
//   - migration_runs: one row per ledger run that changed a document
//
// All ordering uses the seq column, a logical clock assigned by the
// store. Queries order by seq ASC, id ASC COLLATE BINARY so listings are
// identical across runs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Document bodies and hashes come from doc.Snapshot and doc.Hash.
package store
