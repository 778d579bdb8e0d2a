package steps

import (
	"github.com/roach88/docmig/internal/ledger"
	"github.com/roach88/docmig/internal/model"
	"github.com/roach88/docmig/internal/walk"
)

// Containment returns the entities reachable from root through Owned
// slots only, i.e. the entities the document actually contains.
func Containment(w *walk.Walker, root model.Entity) (map[model.Entity]struct{}, error) {
	edges := make(map[model.Entity][]model.Entity)
	err := w.WalkWith([]model.Entity{root}, walk.Visitor{
		Slot: func(sn walk.SlotNode) error {
			if sn.Membership == model.Owned {
				edges[sn.Declaring()] = append(edges[sn.Declaring()], sn.Target)
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	contained := map[model.Entity]struct{}{root: {}}
	queue := []model.Entity{root}
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		for _, child := range edges[e] {
			if _, ok := contained[child]; ok {
				continue
			}
			contained[child] = struct{}{}
			queue = append(queue, child)
		}
	}
	return contained, nil
}

// RepairReferences rebinds stale cross-references.
//
// A reference is stale when it points at a Unique entity the document no
// longer contains (a leftover copy from an old clone or paste) while a
// contained entity of the same type carries the same GlobalID. Such a
// reference is rebound to the contained entity, keeping its wrapper.
// References with no match, or with several, are flagged and left.
func RepairReferences(ctx *ledger.Context, root model.Root) (bool, error) {
	contained, err := Containment(ctx.Walker(), root)
	if err != nil {
		return false, err
	}

	live := make(map[model.GlobalID][]model.Unique)
	for e := range contained {
		if u, ok := e.(model.Unique); ok {
			live[u.GlobalID()] = append(live[u.GlobalID()], u)
		}
	}

	var stale []walk.SlotNode
	err = ctx.Walk([]model.Entity{root}, walk.Visitor{
		Slot: func(sn walk.SlotNode) error {
			if sn.Membership != model.External {
				return nil
			}
			if _, ok := contained[sn.Target]; ok {
				return nil
			}
			if _, inDoc := contained[sn.Declaring()]; !inDoc {
				return nil
			}
			stale = append(stale, sn)
			return nil
		},
	})
	if err != nil {
		return false, err
	}

	buf := ctx.Buffer()
	for _, sn := range stale {
		u, ok := sn.Target.(model.Unique)
		if !ok {
			ctx.Flag(sn.Route, "reference to detached entity without global id", "type", model.TypeOf(sn.Target))
			continue
		}
		var candidates []model.Unique
		for _, c := range live[u.GlobalID()] {
			if model.SameType(c, u) {
				candidates = append(candidates, c)
			}
		}
		switch len(candidates) {
		case 0:
			ctx.Flag(sn.Route, "dangling reference", "type", model.TypeOf(u), "id", u.GlobalID().String())
		case 1:
			ctx.Logger().Debug("rebinding reference", "route", sn.Route, "id", u.GlobalID().String())
			if err := buf.RecordSlot(sn.Slot, model.Rebind(sn.Raw, candidates[0])); err != nil {
				return false, err
			}
		default:
			ctx.Flag(sn.Route, "ambiguous reference", "id", u.GlobalID().String(), "candidates", len(candidates))
		}
	}

	n, err := ctx.Apply()
	return n > 0, err
}
