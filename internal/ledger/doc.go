// Package ledger runs the ordered catalogue of migration steps against a
// loaded document root.
//
// Every step carries a fixed revision. Run executes exactly the steps
// whose revision exceeds the root's stored revision, in ascending order,
// and advances the stored revision after each step that returns without
// error, whether or not the step found anything to change. A second Run
// on a migrated root is therefore a no-op.
//
// Revisions are permanent: stored documents depend on them. New steps are
// appended with the next unused revision; existing steps are never
// renumbered or reordered.
//
// Each step runs with its own Context (walker, deferred buffer, logger,
// GlobalID generator). Nothing is shared between steps or documents, so
// one Ledger may serve many documents as long as each Run stays on a
// single goroutine.
package ledger
