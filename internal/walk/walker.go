package walk

import (
	"fmt"

	"github.com/roach88/docmig/internal/model"
)

// Node is one visited entity.
type Node struct {
	// Entity is the visited entity, already unwrapped.
	Entity model.Entity

	// Route is a human-readable breadcrumb such as
	// "Domain.Compositions[\"main\"].Parts[0]". Diagnostic only.
	Route string

	// Owner is the direct owner when the entity was reached through an
	// Owned slot, nil for roots and for entities reached by reference.
	Owner model.Entity

	// Via is the slot the entity was first reached through, nil for roots.
	Via *model.Slot

	// Raw is the slot value before unwrapping (possibly a model.Ref).
	Raw any
}

// SlotNode describes an entity-bearing slot of a visited entity.
type SlotNode struct {
	Slot       model.Slot
	Route      string
	Raw        any
	Target     model.Entity
	Membership model.Membership // effective membership, see model.Effective
}

// Declaring returns the entity that declares the slot.
func (s SlotNode) Declaring() model.Entity {
	return s.Slot.Entity
}

// CollectionNode describes a collection of a visited entity together
// with its members as read before any member was visited.
type CollectionNode struct {
	Entity     model.Entity
	Collection *model.CollectionDescriptor
	Route      string
	Members    []model.Member

	parent string
}

// MemberRoute returns the route of member m, matching the route the
// walker gives the member's entity.
func (c CollectionNode) MemberRoute(m model.Member) string {
	return c.parent + "." + c.Collection.Segment(m)
}

// VisitFunc is called once per distinct reachable entity.
type VisitFunc func(Node) error

// Visitor bundles the callbacks of a walk. Nil callbacks are skipped.
//
// Entity fires once per distinct entity. Slot fires for every
// entity-bearing slot of every visited entity, including slots whose
// target was already visited through another path. Collection fires
// once per collection of every visited entity, before its members.
type Visitor struct {
	Entity     VisitFunc
	Slot       func(SlotNode) error
	Collection func(CollectionNode) error
}

// Walker performs cycle-safe traversals of an entity graph.
//
// A Walker is not safe for concurrent use. Create one per document (the
// ledger creates one per step).
type Walker struct {
	visited map[model.Entity]struct{}
	active  bool
	visits  int
}

// New creates a walker.
func New() *Walker {
	return &Walker{}
}

// Active reports whether a walk is in progress.
func (w *Walker) Active() bool {
	return w.active
}

// Visits returns the number of entities visited by the most recent walk.
func (w *Walker) Visits() int {
	return w.visits
}

// Walk visits every entity reachable from roots exactly once.
func (w *Walker) Walk(roots []model.Entity, visit VisitFunc) error {
	return w.WalkWith(roots, Visitor{Entity: visit})
}

// WalkWith is Walk with the full set of callbacks.
//
// The first callback or descriptor error aborts the walk and is returned.
// Walks do not nest: calling WalkWith from inside a callback returns
// ErrWalkActive.
func (w *Walker) WalkWith(roots []model.Entity, v Visitor) error {
	if w.active {
		return ErrWalkActive
	}
	w.active = true
	defer func() { w.active = false }()

	w.visited = make(map[model.Entity]struct{})
	w.visits = 0

	for i, root := range roots {
		if root == nil {
			continue
		}
		route := model.TypeOf(root)
		if len(roots) > 1 {
			route = fmt.Sprintf("%s[%d]", route, i)
		}
		if err := w.enter(Node{Entity: root, Route: route}, v); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) enter(n Node, v Visitor) error {
	if _, seen := w.visited[n.Entity]; seen {
		return nil
	}
	w.visited[n.Entity] = struct{}{}
	w.visits++

	if v.Entity != nil {
		if err := v.Entity(n); err != nil {
			return err
		}
	}
	return w.descend(n, v)
}

func (w *Walker) descend(n Node, v Visitor) error {
	d := n.Entity.Descriptor()
	if d == nil {
		return &TraversalError{Route: n.Route, Err: fmt.Errorf("%w: %T has no descriptor", ErrMalformedDescriptor, n.Entity)}
	}

	for _, p := range d.Properties {
		if p == nil || p.Read == nil {
			return &TraversalError{Route: n.Route, Err: fmt.Errorf("%w: %s property without reader", ErrMalformedDescriptor, d.Type)}
		}
		raw, err := p.Read(n.Entity)
		if err != nil {
			return &TraversalError{Route: n.Route + "." + p.Name, Err: err}
		}
		if err := w.follow(n, model.PropertySlot(n.Entity, p), p.Membership, raw, v); err != nil {
			return err
		}
	}

	for _, c := range d.Collections {
		if c == nil || c.Read == nil {
			return &TraversalError{Route: n.Route, Err: fmt.Errorf("%w: %s collection without reader", ErrMalformedDescriptor, d.Type)}
		}
		members, err := c.Read(n.Entity)
		if err != nil {
			return &TraversalError{Route: n.Route + "." + c.Name, Err: err}
		}
		if v.Collection != nil {
			cn := CollectionNode{Entity: n.Entity, Collection: c, Route: n.Route + "." + c.Name, Members: members, parent: n.Route}
			if err := v.Collection(cn); err != nil {
				return err
			}
		}
		for _, m := range members {
			if err := w.follow(n, model.MemberSlot(n.Entity, c, m), c.Membership, m.Value, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// follow unwraps raw and enters its entity, if any.
func (w *Walker) follow(parent Node, slot model.Slot, declared model.Membership, raw any, v Visitor) error {
	target, _ := model.Unwrap(raw)
	if target == nil {
		return nil
	}
	route := parent.Route + "." + slot.Name()
	membership := model.Effective(declared, raw)

	if v.Slot != nil {
		sn := SlotNode{Slot: slot, Route: route, Raw: raw, Target: target, Membership: membership}
		if err := v.Slot(sn); err != nil {
			return err
		}
	}

	var owner model.Entity
	if membership == model.Owned {
		owner = parent.Entity
	}
	return w.enter(Node{Entity: target, Route: route, Owner: owner, Via: &slot, Raw: raw}, v)
}
