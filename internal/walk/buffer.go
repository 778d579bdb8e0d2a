package walk

import (
	"fmt"

	"github.com/roach88/docmig/internal/model"
)

// Guard reports whether a traversal is in progress. *Walker implements it.
type Guard interface {
	Active() bool
}

// Fix is one deferred write.
type Fix struct {
	Slot  model.Slot
	Value any
}

func (f Fix) String() string {
	return fmt.Sprintf("%s.%s = %v", model.TypeOf(f.Slot.Entity), f.Slot.Name(), f.Value)
}

// Buffer collects writes requested during a walk and applies them after
// the walk has returned.
//
// Fixes are applied once, in recorded order. Two fixes for the same slot
// are both applied, so the later one wins. A Buffer belongs to a single
// step; sharing one across steps is not supported.
type Buffer struct {
	guard Guard
	fixes []Fix
}

// NewBuffer creates a buffer that refuses to apply while guard is active.
// guard may be nil.
func NewBuffer(guard Guard) *Buffer {
	return &Buffer{guard: guard}
}

// Record defers a write of value to property p of e.
func (b *Buffer) Record(e model.Entity, p *model.PropertyDescriptor, value any) error {
	return b.RecordSlot(model.PropertySlot(e, p), value)
}

// RecordMember defers a write of value to the member of collection c of e
// addressed by m's index or key.
func (b *Buffer) RecordMember(e model.Entity, c *model.CollectionDescriptor, m model.Member, value any) error {
	return b.RecordSlot(model.MemberSlot(e, c, m), value)
}

// RecordSlot defers a write of value to s.
// Only the presence of a target and descriptor is validated.
func (b *Buffer) RecordSlot(s model.Slot, value any) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFix, err)
	}
	b.fixes = append(b.fixes, Fix{Slot: s, Value: value})
	return nil
}

// Len returns the number of pending fixes.
func (b *Buffer) Len() int {
	return len(b.fixes)
}

// Fixes returns a copy of the pending fixes in recorded order.
func (b *Buffer) Fixes() []Fix {
	out := make([]Fix, len(b.fixes))
	copy(out, b.fixes)
	return out
}

// Discard drops all pending fixes.
func (b *Buffer) Discard() {
	b.fixes = nil
}

// ApplyAll writes every pending fix in recorded order and clears the
// buffer. It returns the number of fixes applied.
//
// A failed write stops the loop; fixes already written stay written and
// the rest are dropped. Steps must finish validating their intended fixes
// before calling ApplyAll.
func (b *Buffer) ApplyAll() (int, error) {
	if b.guard != nil && b.guard.Active() {
		return 0, ErrWalkActive
	}
	fixes := b.fixes
	b.fixes = nil

	for i, f := range fixes {
		if err := f.Slot.Write(f.Value); err != nil {
			return i, fmt.Errorf("apply fix %d (%s.%s): %w", i, model.TypeOf(f.Slot.Entity), f.Slot.Name(), err)
		}
	}
	return len(fixes), nil
}
