package model

// Ref is a sealed interface over the two reference wrappers.
// Only Ownership and Assignment implement it.
type Ref interface {
	ref()
	// Deref returns the wrapped entity, which may be nil.
	Deref() Entity
}

// Ownership records the authoritative parent of a wrapped child.
//
// In an Owned slot, Owner should be the entity that declares the slot.
// Cloning bugs in older documents left some wrappers pointing at the
// wrong owner; the ownership repair step corrects them.
type Ownership struct {
	Owner  Entity
	Target Entity
}

func (Ownership) ref() {}

func (o Ownership) Deref() Entity { return o.Target }

// Assignment wraps a value that is either privately owned by the
// declaring entity (Local) or a reference to a shared definition.
type Assignment struct {
	Value Entity
	Local bool
}

func (Assignment) ref() {}

func (a Assignment) Deref() Entity { return a.Value }

// Unwrap returns the entity held by a raw slot value and the wrapper it
// was found in. Scalars and nil yield (nil, nil).
func Unwrap(v any) (Entity, Ref) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case Ownership:
		return val.Target, val
	case Assignment:
		return val.Value, val
	case Entity:
		return val, nil
	default:
		return nil, nil
	}
}

// Effective returns the membership the walker applies to a slot holding
// raw. A shared (non-local) assignment is a reference boundary even in a
// slot declared Owned.
func Effective(m Membership, raw any) Membership {
	if a, ok := raw.(Assignment); ok && !a.Local {
		return External
	}
	return m
}

// Rebind returns raw with its entity replaced by e, preserving the
// wrapper kind and its flags.
func Rebind(raw any, e Entity) any {
	switch val := raw.(type) {
	case Ownership:
		val.Target = e
		return val
	case Assignment:
		val.Value = e
		return val
	default:
		return e
	}
}
