package steps

import (
	"errors"
	"fmt"

	"github.com/roach88/docmig/internal/ledger"
	"github.com/roach88/docmig/internal/model"
	"github.com/roach88/docmig/internal/walk"
)

// maxIDAttempts bounds how often a colliding fresh id is re-drawn.
const maxIDAttempts = 16

// ErrIDExhausted is returned when the generator keeps producing ids that
// already exist in the document.
var ErrIDExhausted = errors.New("global id generator produced only colliding ids")

// Duplicate is a collection member sharing its GlobalID with an earlier
// sibling.
type Duplicate struct {
	Route  string
	Entity model.Unique
	ID     model.GlobalID
	First  string // route of the occurrence that keeps the id
}

// FindDuplicateIDs walks root with w and returns every later occurrence
// of a GlobalID within the same collection, plus the set of all ids seen
// in the document. It never writes.
func FindDuplicateIDs(w *walk.Walker, root model.Entity) ([]Duplicate, map[model.GlobalID]struct{}, error) {
	var dups []Duplicate
	seen := make(map[model.GlobalID]struct{})
	queued := make(map[model.Entity]struct{})

	err := w.WalkWith([]model.Entity{root}, walk.Visitor{
		Entity: func(n walk.Node) error {
			if u, ok := n.Entity.(model.Unique); ok {
				seen[u.GlobalID()] = struct{}{}
			}
			return nil
		},
		Collection: func(cn walk.CollectionNode) error {
			first := make(map[model.GlobalID]model.Member)
			for _, m := range cn.Members {
				e, _ := model.Unwrap(m.Value)
				u, ok := e.(model.Unique)
				if !ok {
					continue
				}
				id := u.GlobalID()
				keep, dup := first[id]
				if !dup {
					first[id] = m
					continue
				}
				if kept, _ := model.Unwrap(keep.Value); kept == e {
					continue
				}
				if _, done := queued[e]; done {
					continue
				}
				queued[e] = struct{}{}
				dups = append(dups, Duplicate{
					Route:  cn.MemberRoute(m),
					Entity: u,
					ID:     id,
					First:  cn.MemberRoute(keep),
				})
			}
			return nil
		},
	})
	return dups, seen, err
}

// ResolveDuplicateIDs keeps the first occurrence of each GlobalID within
// a collection and assigns a fresh id to every later one.
//
// Fresh ids are drawn from the context's generator and re-drawn if they
// collide with any id already present in the document.
func ResolveDuplicateIDs(ctx *ledger.Context, root model.Root) (bool, error) {
	dups, seen, err := FindDuplicateIDs(ctx.Walker(), root)
	if err != nil {
		return false, err
	}

	buf := ctx.Buffer()
	for _, d := range dups {
		fresh, err := freshID(ctx.IDs(), seen)
		if err != nil {
			return false, fmt.Errorf("%s: %w", d.Route, err)
		}
		ctx.Logger().Debug("reassigning duplicate global id", "route", d.Route, "kept", d.First, "old", d.ID.String(), "new", fresh.String())
		if err := buf.Record(d.Entity, model.GlobalIDProperty, fresh); err != nil {
			return false, err
		}
	}

	n, err := ctx.Apply()
	return n > 0, err
}

func freshID(ids model.IDGenerator, seen map[model.GlobalID]struct{}) (model.GlobalID, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := ids.NewGlobalID()
		if _, taken := seen[id]; taken || id.IsZero() {
			continue
		}
		seen[id] = struct{}{}
		return id, nil
	}
	return model.NilGlobalID, ErrIDExhausted
}
