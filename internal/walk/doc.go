// Package walk implements the generic graph walker and the deferred
// mutation buffer that every migration step is built on.
//
// TRAVERSAL:
//
// A Walker visits every entity reachable from its roots exactly once.
// Cycle and sharing safety come from an identity-keyed visited set that
// is created fresh for each Walk call and never outlives it. Slots are
// read through descriptors in declaration order (properties first, then
// collections), so traversal order and route strings are deterministic.
//
// Owned slots pass the declaring entity down as the child's direct owner.
// External slots, and shared assignments, pass no owner.
//
// DEFERRED MUTATION:
//
// Steps never write while a walk is in progress. They record fixes into
// a Buffer during the walk and call ApplyAll once Walk has returned. The
// buffer refuses to apply while its guard (normally the walker) reports
// an active walk.
//
//	w := walk.New()
//	buf := walk.NewBuffer(w)
//	err := w.Walk(roots, func(n walk.Node) error {
//	    return buf.Record(n.Entity, prop, newValue)
//	})
//	...
//	applied, err := buf.ApplyAll()
package walk
