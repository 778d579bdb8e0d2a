package testutil

import (
	"fmt"
	"sync"

	"github.com/roach88/docmig/internal/model"
)

// ID returns the GlobalID 00000000-0000-0000-0000-<n as 12 hex digits>.
// Fixtures use small n so routes and golden files stay readable.
func ID(n int) model.GlobalID {
	return model.MustParseGlobalID(fmt.Sprintf("00000000-0000-0000-0000-%012x", n))
}

// SequentialIDs generates ID(start), ID(start+1), ... for steps that
// mint identifiers, so migrated documents are byte-stable in tests.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu   sync.Mutex
	next int
}

// NewSequentialIDs creates a generator whose first ID is ID(start).
func NewSequentialIDs(start int) *SequentialIDs {
	return &SequentialIDs{next: start}
}

// NewGlobalID implements model.IDGenerator.
func (g *SequentialIDs) NewGlobalID() model.GlobalID {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := ID(g.next)
	g.next++
	return id
}

// FixedIDs returns predetermined identifiers in order.
//
// Panics once exhausted, which catches a step minting more identifiers
// than the test expects.
type FixedIDs struct {
	mu  sync.Mutex
	ids []model.GlobalID
	idx int
}

// NewFixedIDs creates a generator that returns ids in order.
func NewFixedIDs(ids ...model.GlobalID) *FixedIDs {
	return &FixedIDs{ids: ids}
}

// NewGlobalID implements model.IDGenerator.
func (g *FixedIDs) NewGlobalID() model.GlobalID {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic("FixedIDs: all identifiers exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// Remaining reports how many identifiers have not been handed out.
func (g *FixedIDs) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.ids) - g.idx
}
