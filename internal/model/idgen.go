package model

import "github.com/google/uuid"

// IDGenerator produces fresh GlobalIDs.
//
// The engine never generates identifiers on its own; the host supplies a
// generator so tests can substitute a deterministic sequence.
type IDGenerator interface {
	NewGlobalID() GlobalID
}

// UUIDGenerator generates random (v4) or time-ordered (v7) identifiers.
//
// Thread-safety: UUIDGenerator is stateless and safe for concurrent use.
type UUIDGenerator struct {
	// V7 selects time-sortable UUIDv7 identifiers.
	V7 bool
}

// NewGlobalID returns a fresh identifier.
// Panics if the system random source fails, which uuid treats as fatal.
func (g UUIDGenerator) NewGlobalID() GlobalID {
	if g.V7 {
		return GlobalID(uuid.Must(uuid.NewV7()))
	}
	return GlobalID(uuid.New())
}
