// Package harness runs migration scenarios against the default catalogue.
//
// A scenario names a document fixture, runs the ledger over it with a
// deterministic GlobalID generator and checks assertions against the
// resulting report and the migrated graph.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: legacy_repair
//	description: "What this scenario validates"
//	document: ../documents/legacy.yaml
//	until: 3            # optional, defaults to the latest revision
//	id_start: 100       # optional, first minted ID is 00000000-...-000000000064
//	assertions:
//	  - type: revision
//	    expect: 5
//	  - type: changed
//	    steps: [normalize-names, repair-references]
//	  - type: value
//	    route: Domain.Definitions[0]
//	    property: Name
//	    expect: Motor
//	  - type: same
//	    route: Domain.Compositions["main"].Connectors[0]
//	    property: Target
//	    target: Domain.Compositions["main"].Parts[1].Type.Ports[0]
//	  - type: owner
//	    route: Domain.Compositions["main"].Parts[0].Ports["a"]
//	    target: Domain.Compositions["main"].Parts[0]
//	  - type: unique_ids
//
// The document path is resolved relative to the scenario file.
//
// # Assertion Types
//
//   - revision, fixes, flagged: compare the report against expect
//   - changed: the steps that reported a change, in order
//   - value: a property of the entity at route, compared as text
//   - same: a reference property points at the entity at target
//   - owner: the recorded owner of the entity at route is the entity at
//     target, or none when target is "-"
//   - unique_ids: no collection holds two entities with the same GlobalID
//
// Routes are the ones the walker assigns, so they refer to the first
// path an entity is reached through.
//
// # Golden Files
//
// RunWithGolden compares the canonical JSON of the step trace against
// testdata/golden/{name}.golden. To regenerate:
//
//	go test ./internal/harness -update
package harness
