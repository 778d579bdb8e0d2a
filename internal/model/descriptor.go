package model

import (
	"errors"
	"fmt"
	"strconv"
)

// Membership classifies a slot for the graph walker.
type Membership int

const (
	// Owned slots hold children. The walker recurses with the declaring
	// entity as the child's direct owner.
	Owned Membership = iota
	// External slots hold cross-references. The walker recurses with no
	// owner, so repairs never attribute ownership across the boundary.
	External
)

func (m Membership) String() string {
	switch m {
	case Owned:
		return "owned"
	case External:
		return "external"
	default:
		return "unknown"
	}
}

// CollectionKind distinguishes indexable lists from key→value maps.
type CollectionKind int

const (
	Ordered CollectionKind = iota
	Keyed
)

func (k CollectionKind) String() string {
	if k == Keyed {
		return "keyed"
	}
	return "ordered"
}

// Errors returned by descriptor accessors.
var (
	ErrNotUnique     = errors.New("entity has no global id")
	ErrReadOnly      = errors.New("slot is read-only")
	ErrInvalidValue  = errors.New("invalid slot value")
	ErrMissingMember = errors.New("collection member not found")
)

// Descriptor is the per-type catalogue of slots.
// Properties and collections are walked in declaration order.
type Descriptor struct {
	Type        string
	Properties  []*PropertyDescriptor
	Collections []*CollectionDescriptor
}

// Property returns the named property descriptor or nil.
func (d *Descriptor) Property(name string) *PropertyDescriptor {
	for _, p := range d.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Collection returns the named collection descriptor or nil.
func (d *Descriptor) Collection(name string) *CollectionDescriptor {
	for _, c := range d.Collections {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// PropertyDescriptor describes a single scalar or reference slot.
//
// Read returns the raw slot value: nil, an Entity, a Ref wrapper, or a
// scalar. Write replaces it. Write may be nil for read-only slots.
type PropertyDescriptor struct {
	Name       string
	Membership Membership
	Read       func(Entity) (any, error)
	Write      func(Entity, any) error
}

// Member is one entry of a collection.
// Index is meaningful for Ordered collections, Key for Keyed ones.
type Member struct {
	Index int
	Key   string
	Value any
}

// CollectionDescriptor describes an ordered list or keyed map slot.
//
// Read returns members in collection order. Keyed collections report
// members in ascending key order so traversal is deterministic.
// WriteMember replaces the value at m.Index (Ordered) or m.Key (Keyed).
type CollectionDescriptor struct {
	Name        string
	Kind        CollectionKind
	Membership  Membership
	Read        func(Entity) ([]Member, error)
	WriteMember func(Entity, Member) error
}

// GlobalIDProperty reads and writes the GlobalID of Unique entities.
// Descriptor tables of unique types list it first.
var GlobalIDProperty = &PropertyDescriptor{
	Name:       "GlobalId",
	Membership: External,
	Read: func(e Entity) (any, error) {
		u, ok := e.(Unique)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotUnique, TypeOf(e))
		}
		return u.GlobalID(), nil
	},
	Write: func(e Entity, v any) error {
		u, ok := e.(Unique)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotUnique, TypeOf(e))
		}
		id, ok := v.(GlobalID)
		if !ok {
			return fmt.Errorf("%w: GlobalId expects GlobalID, got %T", ErrInvalidValue, v)
		}
		u.SetGlobalID(id)
		return nil
	},
}

// Segment renders the route segment for member m of c.
//
//	Parts[2]
//	Ports["in"]
func (c *CollectionDescriptor) Segment(m Member) string {
	if c.Kind == Keyed {
		return c.Name + "[" + strconv.Quote(m.Key) + "]"
	}
	return c.Name + "[" + strconv.Itoa(m.Index) + "]"
}
