// Package model defines the schema-level vocabulary the migration engine
// works with: entities, descriptor tables, membership tags and the two
// reference wrappers (Ownership and Assignment).
//
// The package holds type definitions and small helpers only. The walker,
// ledger and steps import model; model imports nothing internal.
//
// Key constraints:
//   - Entities are pointer types. The walker uses interface equality as
//     identity, so a non-pointer entity would break cycle detection.
//   - Descriptors are static tables supplied by the document model, never
//     derived by reflection.
//   - Writes always go through a Slot so that deferred fixes can address
//     collection members by index or key.
package model
