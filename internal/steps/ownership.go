package steps

import (
	"github.com/roach88/docmig/internal/ledger"
	"github.com/roach88/docmig/internal/model"
	"github.com/roach88/docmig/internal/walk"
)

// Mismatch is an Owned slot whose Ownership wrapper records an owner
// other than the entity declaring the slot.
type Mismatch struct {
	Route    string
	Slot     model.Slot
	Wrapper  model.Ownership
	Recorded string // type of the recorded owner, "<nil>" when missing
	Parent   string // type of the structural parent
}

// Repairable reports whether the recorded owner has the parent's type.
// Mismatches across types are never guessed at.
func (m Mismatch) Repairable() bool {
	return m.Wrapper.Owner != nil && m.Recorded == m.Parent
}

// FindOwnershipMismatches walks root with w and returns every ownership
// mismatch in traversal order. It never writes.
func FindOwnershipMismatches(w *walk.Walker, root model.Entity) ([]Mismatch, error) {
	var out []Mismatch
	err := w.WalkWith([]model.Entity{root}, walk.Visitor{
		Slot: func(sn walk.SlotNode) error {
			if sn.Membership != model.Owned {
				return nil
			}
			own, ok := sn.Raw.(model.Ownership)
			if !ok || own.Owner == sn.Declaring() {
				return nil
			}
			out = append(out, Mismatch{
				Route:    sn.Route,
				Slot:     sn.Slot,
				Wrapper:  own,
				Recorded: model.TypeOf(own.Owner),
				Parent:   model.TypeOf(sn.Declaring()),
			})
			return nil
		},
	})
	return out, err
}

// RepairOwnership points every repairable mismatched Ownership wrapper
// at the entity that declares its slot.
//
// The fix is keyed by the declaring entity's slot, not by the child,
// because the wrapper lives on the parent. Mismatches whose recorded
// owner has a different type are flagged and left as they are.
//
// A verification walk follows the repair. It only logs.
func RepairOwnership(ctx *ledger.Context, root model.Root) (bool, error) {
	mismatches, err := FindOwnershipMismatches(ctx.Walker(), root)
	if err != nil {
		return false, err
	}

	buf := ctx.Buffer()
	for _, m := range mismatches {
		if !m.Repairable() {
			ctx.Flag(m.Route, "ownership type mismatch", "recorded", m.Recorded, "parent", m.Parent)
			continue
		}
		parent := m.Slot.Entity
		ctx.Logger().Debug("repairing ownership", "route", m.Route, "type", m.Parent)
		if err := buf.RecordSlot(m.Slot, model.Ownership{Owner: parent, Target: m.Wrapper.Target}); err != nil {
			return false, err
		}
	}

	n, err := ctx.Apply()
	if err != nil {
		return false, err
	}

	remaining, err := FindOwnershipMismatches(ctx.Walker(), root)
	if err != nil {
		return n > 0, err
	}
	for _, m := range remaining {
		ctx.Logger().Debug("ownership mismatch remains", "route", m.Route, "recorded", m.Recorded, "parent", m.Parent)
	}
	return n > 0, nil
}
