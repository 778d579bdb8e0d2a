// Package steps provides the migration step kinds built on the walker and
// the deferred buffer, and the default revision catalogue.
//
// Step kinds:
//   - PatchProperty: rewrite a legacy stored scalar into its current form
//   - RepairReferences: rebind stale cross-references to the live entity
//     carrying the same GlobalID
//   - RepairOwnership: correct Ownership wrappers whose recorded owner is
//     not the slot's structural parent
//   - ResolveDuplicateIDs: give fresh GlobalIDs to all but the first of
//     siblings sharing one
//
// All steps walk first, record fixes, and apply them only after the walk
// has returned.
package steps
