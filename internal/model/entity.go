package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Entity is any node in the document graph.
// Implementations must be pointer types; identity is pointer identity.
type Entity interface {
	Descriptor() *Descriptor
}

// Unique is an entity that carries a persisted GlobalID.
// A GlobalID must be unique among the siblings of its enclosing collection.
type Unique interface {
	Entity
	GlobalID() GlobalID
	SetGlobalID(GlobalID)
}

// Root is a top-level entity that owns the persisted revision counter.
//
// Revision starts at 0 for new documents and is only ever raised by the
// migration ledger. MarkDirty tells the persistence layer a save is
// warranted.
type Root interface {
	Entity
	Revision() int
	SetRevision(int)
	MarkDirty()
	Dirty() bool
}

// GlobalID is the 128-bit persisted identifier of a Unique entity.
type GlobalID uuid.UUID

// NilGlobalID is the zero identifier.
var NilGlobalID GlobalID

// ParseGlobalID parses the canonical hyphenated form.
func ParseGlobalID(s string) (GlobalID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return NilGlobalID, fmt.Errorf("parse global id %q: %w", s, err)
	}
	return GlobalID(u), nil
}

// MustParseGlobalID is like ParseGlobalID but panics on malformed input.
// Intended for fixtures and tests.
func MustParseGlobalID(s string) GlobalID {
	id, err := ParseGlobalID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id GlobalID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether id is the nil identifier.
func (id GlobalID) IsZero() bool {
	return id == NilGlobalID
}

// MarshalText implements encoding.TextMarshaler.
func (id GlobalID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *GlobalID) UnmarshalText(data []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(data); err != nil {
		return fmt.Errorf("parse global id %q: %w", data, err)
	}
	*id = GlobalID(u)
	return nil
}

// TypeOf returns the descriptor type name of e, or "<nil>".
func TypeOf(e Entity) string {
	if e == nil {
		return "<nil>"
	}
	d := e.Descriptor()
	if d == nil {
		return fmt.Sprintf("%T", e)
	}
	return d.Type
}

// SameType reports whether a and b share a descriptor type.
func SameType(a, b Entity) bool {
	if a == nil || b == nil {
		return false
	}
	return TypeOf(a) == TypeOf(b)
}
