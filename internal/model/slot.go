package model

import (
	"errors"
	"fmt"
)

// ErrInvalidSlot is returned for slots without a target entity or descriptor.
var ErrInvalidSlot = errors.New("invalid slot")

// Slot addresses one writable location in the graph: a property of an
// entity, or a single member (by index or key) of one of its collections.
type Slot struct {
	Entity     Entity
	Property   *PropertyDescriptor
	Collection *CollectionDescriptor
	Member     Member
}

// PropertySlot addresses property p of e.
func PropertySlot(e Entity, p *PropertyDescriptor) Slot {
	return Slot{Entity: e, Property: p}
}

// MemberSlot addresses the member of collection c of e identified by m's
// index or key. m.Value is ignored.
func MemberSlot(e Entity, c *CollectionDescriptor, m Member) Slot {
	return Slot{Entity: e, Collection: c, Member: Member{Index: m.Index, Key: m.Key}}
}

// Validate checks that the slot names a target and exactly one descriptor.
func (s Slot) Validate() error {
	if s.Entity == nil {
		return fmt.Errorf("%w: nil entity", ErrInvalidSlot)
	}
	if (s.Property == nil) == (s.Collection == nil) {
		return fmt.Errorf("%w: need exactly one of property or collection", ErrInvalidSlot)
	}
	return nil
}

// Name renders the slot as a route segment.
func (s Slot) Name() string {
	switch {
	case s.Property != nil:
		return s.Property.Name
	case s.Collection != nil:
		return s.Collection.Segment(s.Member)
	default:
		return "?"
	}
}

// Membership returns the declared membership of the slot.
func (s Slot) Membership() Membership {
	if s.Property != nil {
		return s.Property.Membership
	}
	if s.Collection != nil {
		return s.Collection.Membership
	}
	return External
}

// Read returns the current raw value of the slot.
func (s Slot) Read() (any, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.Property != nil {
		return s.Property.Read(s.Entity)
	}
	members, err := s.Collection.Read(s.Entity)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if s.matches(m) {
			return m.Value, nil
		}
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrMissingMember, TypeOf(s.Entity), s.Name())
}

// Write replaces the raw value of the slot.
func (s Slot) Write(v any) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.Property != nil {
		if s.Property.Write == nil {
			return fmt.Errorf("%w: %s.%s", ErrReadOnly, TypeOf(s.Entity), s.Property.Name)
		}
		return s.Property.Write(s.Entity, v)
	}
	if s.Collection.WriteMember == nil {
		return fmt.Errorf("%w: %s.%s", ErrReadOnly, TypeOf(s.Entity), s.Collection.Name)
	}
	return s.Collection.WriteMember(s.Entity, Member{Index: s.Member.Index, Key: s.Member.Key, Value: v})
}

// Same reports whether two slots address the same location.
func (s Slot) Same(o Slot) bool {
	if s.Entity != o.Entity || s.Property != o.Property || s.Collection != o.Collection {
		return false
	}
	if s.Collection == nil {
		return true
	}
	return s.matches(o.Member)
}

func (s Slot) matches(m Member) bool {
	if s.Collection.Kind == Keyed {
		return m.Key == s.Member.Key
	}
	return m.Index == s.Member.Index
}
