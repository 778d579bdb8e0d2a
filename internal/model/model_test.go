package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// node is a minimal entity with one string property and one ordered
// collection of plain entities.
type node struct {
	id       GlobalID
	label    string
	children []Entity
}

var nodeDescriptor *Descriptor

func init() {
	nodeDescriptor = &Descriptor{
		Type: "Node",
		Properties: []*PropertyDescriptor{
			GlobalIDProperty,
			{
				Name:       "Label",
				Membership: External,
				Read:       func(e Entity) (any, error) { return e.(*node).label, nil },
			},
		},
		Collections: []*CollectionDescriptor{
			{
				Name:       "Children",
				Kind:       Ordered,
				Membership: Owned,
				Read: func(e Entity) ([]Member, error) {
					n := e.(*node)
					out := make([]Member, len(n.children))
					for i, c := range n.children {
						out[i] = Member{Index: i, Value: c}
					}
					return out, nil
				},
				WriteMember: func(e Entity, m Member) error {
					n := e.(*node)
					if m.Index >= len(n.children) {
						return ErrMissingMember
					}
					n.children[m.Index], _ = m.Value.(Entity)
					return nil
				},
			},
		},
	}
}

func (n *node) Descriptor() *Descriptor { return nodeDescriptor }
func (n *node) GlobalID() GlobalID      { return n.id }
func (n *node) SetGlobalID(id GlobalID) { n.id = id }

func TestGlobalIDText(t *testing.T) {
	id := MustParseGlobalID("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	assert.False(t, id.IsZero())
	assert.True(t, NilGlobalID.IsZero())

	text, err := id.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", string(text))

	var back GlobalID
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, id, back)

	err = back.UnmarshalText([]byte("not-a-uuid"))
	assert.Error(t, err)

	_, err = ParseGlobalID("")
	assert.Error(t, err)
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, "<nil>", TypeOf(nil))
	assert.Equal(t, "Node", TypeOf(&node{}))
	assert.True(t, SameType(&node{}, &node{}))
	assert.False(t, SameType(&node{}, nil))
}

func TestUnwrap(t *testing.T) {
	a, b := &node{label: "a"}, &node{label: "b"}

	tests := []struct {
		name    string
		raw     any
		entity  Entity
		wrapped bool
	}{
		{"nil", nil, nil, false},
		{"scalar", "text", nil, false},
		{"plain entity", a, a, false},
		{"ownership", Ownership{Owner: b, Target: a}, a, true},
		{"empty ownership", Ownership{Owner: b}, nil, true},
		{"assignment", Assignment{Value: a, Local: true}, a, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ref := Unwrap(tt.raw)
			assert.Equal(t, tt.entity, e)
			assert.Equal(t, tt.wrapped, ref != nil)
			if ref != nil {
				assert.Equal(t, tt.entity, ref.Deref())
			}
		})
	}
}

func TestEffective(t *testing.T) {
	a := &node{}

	assert.Equal(t, Owned, Effective(Owned, a))
	assert.Equal(t, Owned, Effective(Owned, Ownership{Target: a}))
	assert.Equal(t, Owned, Effective(Owned, Assignment{Value: a, Local: true}))
	assert.Equal(t, External, Effective(Owned, Assignment{Value: a, Local: false}))
	assert.Equal(t, External, Effective(External, Assignment{Value: a, Local: true}))
}

func TestRebind(t *testing.T) {
	owner, old, fresh := &node{}, &node{}, &node{}

	got := Rebind(Ownership{Owner: owner, Target: old}, fresh)
	assert.Equal(t, Ownership{Owner: owner, Target: fresh}, got)

	got = Rebind(Assignment{Value: old, Local: true}, fresh)
	assert.Equal(t, Assignment{Value: fresh, Local: true}, got)

	got = Rebind(old, fresh)
	assert.Same(t, fresh, got)
}

func TestSlot(t *testing.T) {
	child := &node{label: "child"}
	n := &node{label: "parent", children: []Entity{child}}
	children := nodeDescriptor.Collection("Children")
	label := nodeDescriptor.Property("Label")

	t.Run("member read and write", func(t *testing.T) {
		s := MemberSlot(n, children, Member{Index: 0, Value: "ignored"})
		assert.Equal(t, "Children[0]", s.Name())
		assert.Equal(t, Owned, s.Membership())

		v, err := s.Read()
		require.NoError(t, err)
		assert.Same(t, child, v)

		other := &node{}
		require.NoError(t, s.Write(other))
		assert.Same(t, other, n.children[0])
	})

	t.Run("missing member", func(t *testing.T) {
		_, err := MemberSlot(n, children, Member{Index: 3}).Read()
		assert.True(t, errors.Is(err, ErrMissingMember))
	})

	t.Run("read-only property", func(t *testing.T) {
		err := PropertySlot(n, label).Write("x")
		assert.True(t, errors.Is(err, ErrReadOnly))
	})

	t.Run("invalid", func(t *testing.T) {
		assert.ErrorIs(t, Slot{}.Validate(), ErrInvalidSlot)
		assert.ErrorIs(t, Slot{Entity: n}.Validate(), ErrInvalidSlot)
		assert.ErrorIs(t, Slot{Entity: n, Property: label, Collection: children}.Validate(), ErrInvalidSlot)
	})

	t.Run("same", func(t *testing.T) {
		a := MemberSlot(n, children, Member{Index: 0})
		assert.True(t, a.Same(MemberSlot(n, children, Member{Index: 0, Value: child})))
		assert.False(t, a.Same(MemberSlot(n, children, Member{Index: 1})))
		assert.False(t, a.Same(PropertySlot(n, label)))
		assert.True(t, PropertySlot(n, label).Same(PropertySlot(n, label)))
	})
}

func TestGlobalIDProperty(t *testing.T) {
	n := &node{}
	id := MustParseGlobalID("00000000-0000-0000-0000-000000000042")

	require.NoError(t, PropertySlot(n, GlobalIDProperty).Write(id))
	assert.Equal(t, id, n.id)

	err := GlobalIDProperty.Write(n, "00000000-0000-0000-0000-000000000042")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = GlobalIDProperty.Read(plain{})
	assert.ErrorIs(t, err, ErrNotUnique)
}

func TestSegment(t *testing.T) {
	ordered := &CollectionDescriptor{Name: "Parts", Kind: Ordered}
	keyed := &CollectionDescriptor{Name: "Ports", Kind: Keyed}

	assert.Equal(t, "Parts[2]", ordered.Segment(Member{Index: 2, Key: "x"}))
	assert.Equal(t, `Ports["in"]`, keyed.Segment(Member{Index: 0, Key: "in"}))
	assert.Equal(t, `Ports["a\"b"]`, keyed.Segment(Member{Key: `a"b`}))
}

type plain struct{}

func (plain) Descriptor() *Descriptor { return &Descriptor{Type: "Plain"} }
