package walk_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docmig/internal/doc"
	"github.com/roach88/docmig/internal/model"
	"github.com/roach88/docmig/internal/testutil"
	"github.com/roach88/docmig/internal/walk"
)

func TestWalk_RoutesGolden(t *testing.T) {
	s := testutil.NewSample()

	var buf bytes.Buffer
	err := walk.New().Walk([]model.Entity{s.Domain}, func(n walk.Node) error {
		fmt.Fprintf(&buf, "%s %s owner=%s\n", n.Route, model.TypeOf(n.Entity), model.TypeOf(n.Owner))
		return nil
	})
	require.NoError(t, err)

	testutil.AssertGolden(t, "sample_routes", buf.Bytes())
}

func TestWalk_VisitsEachEntityOnce(t *testing.T) {
	s := testutil.NewSample()
	// Close an extra cycle on top of the Part.Parent back-references.
	s.Motor.Base = s.Pump

	seen := make(map[model.Entity]int)
	w := walk.New()
	err := w.Walk([]model.Entity{s.Domain, s.Main}, func(n walk.Node) error {
		seen[n.Entity]++
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 13, w.Visits())
	assert.Len(t, seen, 13)
	for e, count := range seen {
		assert.Equal(t, 1, count, "%s visited more than once", model.TypeOf(e))
	}
}

func TestWalk_MultipleRootsIndexed(t *testing.T) {
	a, b := doc.NewDomain("a"), doc.NewDomain("b")

	var routes []string
	err := walk.New().Walk([]model.Entity{a, nil, b}, func(n walk.Node) error {
		routes = append(routes, n.Route)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Domain[0]", "Domain[2]"}, routes)
}

func TestWalk_ReferenceHasNoOwner(t *testing.T) {
	l := testutil.NewLegacy()

	var stale walk.Node
	err := walk.New().Walk([]model.Entity{l.Domain}, func(n walk.Node) error {
		if n.Entity == l.StalePort {
			stale = n
		}
		return nil
	})
	require.NoError(t, err)

	require.NotNil(t, stale.Entity, "stale port should be reachable through the connector")
	assert.Nil(t, stale.Owner)
	assert.Equal(t, `Domain.Compositions["main"].Connectors[0].Target`, stale.Route)
	require.NotNil(t, stale.Via)
	assert.Equal(t, "Target", stale.Via.Name())
}

func TestWalk_SlotCallbackSeesRevisits(t *testing.T) {
	s := testutil.NewSample()

	var routes []string
	memberships := make(map[string]model.Membership)
	err := walk.New().WalkWith([]model.Entity{s.Domain}, walk.Visitor{
		Slot: func(sn walk.SlotNode) error {
			if sn.Target == s.Motor {
				routes = append(routes, sn.Route)
				memberships[sn.Route] = sn.Membership
			}
			return nil
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Domain.Definitions[0]",
		"Domain.Definitions[1].Base",
		`Domain.Compositions["main"].Parts[0].Type`,
	}, routes)
	assert.Equal(t, model.Owned, memberships["Domain.Definitions[0]"])
	assert.Equal(t, model.External, memberships[`Domain.Compositions["main"].Parts[0].Type`])
}

func TestWalk_LocalTypeIsOwnedByPart(t *testing.T) {
	s := testutil.NewSample()

	var owner model.Entity
	err := walk.New().Walk([]model.Entity{s.Domain}, func(n walk.Node) error {
		if n.Entity == s.LocalPump {
			owner = n.Owner
		}
		return nil
	})
	require.NoError(t, err)
	assert.Same(t, s.Feeder, owner)
}

func TestWalk_CollectionCallback(t *testing.T) {
	s := testutil.NewSample()

	var got []walk.CollectionNode
	err := walk.New().WalkWith([]model.Entity{s.Domain}, walk.Visitor{
		Collection: func(c walk.CollectionNode) error {
			if c.Entity == s.Drive {
				got = append(got, c)
			}
			return nil
		},
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	c := got[0]
	assert.Equal(t, "Ports", c.Collection.Name)
	assert.Equal(t, `Domain.Compositions["main"].Parts[0].Ports`, c.Route)
	require.Len(t, c.Members, 1)
	assert.Equal(t, `Domain.Compositions["main"].Parts[0].Ports["a"]`, c.MemberRoute(c.Members[0]))
}

func TestWalk_CallbackErrorAborts(t *testing.T) {
	s := testutil.NewSample()
	boom := errors.New("boom")

	calls := 0
	w := walk.New()
	err := w.Walk([]model.Entity{s.Domain}, func(n walk.Node) error {
		calls++
		if n.Entity == s.Main {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, walk.IsTraversalError(err))
	assert.False(t, w.Active())

	// Domain, Motor and two ports, Pump and one port, then Main.
	assert.Equal(t, 7, calls)
}

func TestWalk_NestedWalkRejected(t *testing.T) {
	s := testutil.NewSample()
	w := walk.New()

	var nested error
	err := w.Walk([]model.Entity{s.Domain}, func(n walk.Node) error {
		if nested == nil {
			nested = w.Walk([]model.Entity{s.Main}, func(walk.Node) error { return nil })
		}
		return nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, nested, walk.ErrWalkActive)
}

// broken is an entity whose descriptor fails on read.
type broken struct {
	desc *model.Descriptor
}

func (b *broken) Descriptor() *model.Descriptor { return b.desc }

func TestWalk_TraversalErrors(t *testing.T) {
	readErr := errors.New("read failed")

	tests := []struct {
		name  string
		root  *broken
		route string
		is    error
	}{
		{
			name:  "no descriptor",
			root:  &broken{},
			route: "*walk_test.broken",
			is:    walk.ErrMalformedDescriptor,
		},
		{
			name: "property without reader",
			root: &broken{desc: &model.Descriptor{
				Type:       "Broken",
				Properties: []*model.PropertyDescriptor{{Name: "Value"}},
			}},
			route: "Broken",
			is:    walk.ErrMalformedDescriptor,
		},
		{
			name: "property read error",
			root: &broken{desc: &model.Descriptor{
				Type: "Broken",
				Properties: []*model.PropertyDescriptor{{
					Name: "Value",
					Read: func(model.Entity) (any, error) { return nil, readErr },
				}},
			}},
			route: "Broken.Value",
			is:    readErr,
		},
		{
			name: "collection read error",
			root: &broken{desc: &model.Descriptor{
				Type: "Broken",
				Collections: []*model.CollectionDescriptor{{
					Name: "Items",
					Read: func(model.Entity) ([]model.Member, error) { return nil, readErr },
				}},
			}},
			route: "Broken.Items",
			is:    readErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := walk.New().Walk([]model.Entity{tt.root}, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.is)

			var te *walk.TraversalError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.route, te.Route)
		})
	}
}
