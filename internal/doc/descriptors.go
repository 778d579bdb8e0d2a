package doc

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/docmig/internal/model"
)

// ErrWrongEntity is returned when a descriptor accessor receives an
// entity of another type.
var ErrWrongEntity = errors.New("descriptor applied to wrong entity type")

// Descriptor type names.
const (
	TypeDomain      = "Domain"
	TypeDefinition  = "Definition"
	TypeComposition = "Composition"
	TypePart        = "Part"
	TypePort        = "Port"
	TypeConnector   = "Connector"
)

var (
	domainDescriptor = &model.Descriptor{
		Type: TypeDomain,
		Properties: []*model.PropertyDescriptor{
			stringProperty("Name", func(d *Domain) *string { return &d.Name }),
		},
		Collections: []*model.CollectionDescriptor{
			{
				Name:       "Definitions",
				Kind:       model.Ordered,
				Membership: model.Owned,
				Read: func(e model.Entity) ([]model.Member, error) {
					d, err := as[*Domain](e)
					if err != nil {
						return nil, err
					}
					members := make([]model.Member, 0, len(d.Definitions))
					for i, def := range d.Definitions {
						members = append(members, model.Member{Index: i, Value: entityOrNil(def)})
					}
					return members, nil
				},
				WriteMember: func(e model.Entity, m model.Member) error {
					d, err := as[*Domain](e)
					if err != nil {
						return err
					}
					if m.Index < 0 || m.Index >= len(d.Definitions) {
						return fmt.Errorf("%w: Definitions[%d]", model.ErrMissingMember, m.Index)
					}
					def, ok := m.Value.(*Definition)
					if !ok || def == nil {
						return fmt.Errorf("%w: Definitions expects *Definition, got %T", model.ErrInvalidValue, m.Value)
					}
					d.Definitions[m.Index] = def
					return nil
				},
			},
			ownedMap("Compositions", is[*Composition], func(d *Domain) map[string]model.Ownership { return d.Compositions }),
		},
	}

	definitionDescriptor = &model.Descriptor{
		Type: TypeDefinition,
		Properties: []*model.PropertyDescriptor{
			model.GlobalIDProperty,
			stringProperty("Name", func(d *Definition) *string { return &d.Name }),
			refProperty("Base", func(d *Definition) **Definition { return &d.Base }),
		},
		Collections: []*model.CollectionDescriptor{
			ownedList("Ports", is[*Port], func(d *Definition) *[]model.Ownership { return &d.Ports }),
		},
	}

	compositionDescriptor = &model.Descriptor{
		Type: TypeComposition,
		Properties: []*model.PropertyDescriptor{
			model.GlobalIDProperty,
			stringProperty("Name", func(c *Composition) *string { return &c.Name }),
		},
		Collections: []*model.CollectionDescriptor{
			ownedList("Parts", is[*Part], func(c *Composition) *[]model.Ownership { return &c.Parts }),
			ownedList("Connectors", is[*Connector], func(c *Composition) *[]model.Ownership { return &c.Connectors }),
		},
	}

	partDescriptor = &model.Descriptor{
		Type: TypePart,
		Properties: []*model.PropertyDescriptor{
			model.GlobalIDProperty,
			stringProperty("Name", func(p *Part) *string { return &p.Name }),
			stringProperty("Multiplicity", func(p *Part) *string { return &p.Multiplicity }),
			{
				Name:       "Type",
				Membership: model.Owned,
				Read: func(e model.Entity) (any, error) {
					p, err := as[*Part](e)
					if err != nil {
						return nil, err
					}
					if p.Type.Value == nil {
						return nil, nil
					}
					return p.Type, nil
				},
				Write: func(e model.Entity, v any) error {
					p, err := as[*Part](e)
					if err != nil {
						return err
					}
					switch val := v.(type) {
					case nil:
						p.Type = model.Assignment{}
					case model.Assignment:
						if _, ok := val.Value.(*Definition); !ok && val.Value != nil {
							return fmt.Errorf("%w: Type expects a *Definition assignment, got %T", model.ErrInvalidValue, val.Value)
						}
						p.Type = val
					default:
						return fmt.Errorf("%w: Type expects model.Assignment, got %T", model.ErrInvalidValue, v)
					}
					return nil
				},
			},
			refProperty("Parent", func(p *Part) **Composition { return &p.Parent }),
		},
		Collections: []*model.CollectionDescriptor{
			ownedMap("Ports", is[*Port], func(p *Part) map[string]model.Ownership { return p.Ports }),
		},
	}

	portDescriptor = &model.Descriptor{
		Type: TypePort,
		Properties: []*model.PropertyDescriptor{
			model.GlobalIDProperty,
			stringProperty("Name", func(p *Port) *string { return &p.Name }),
			stringProperty("Direction", func(p *Port) *string { return &p.Direction }),
		},
	}

	connectorDescriptor = &model.Descriptor{
		Type: TypeConnector,
		Properties: []*model.PropertyDescriptor{
			model.GlobalIDProperty,
			stringProperty("Name", func(c *Connector) *string { return &c.Name }),
			refProperty("Source", func(c *Connector) **Port { return &c.Source }),
			refProperty("Target", func(c *Connector) **Port { return &c.Target }),
		},
	}
)

// Descriptors returns the descriptor table of every document type.
func Descriptors() []*model.Descriptor {
	return []*model.Descriptor{
		domainDescriptor,
		definitionDescriptor,
		compositionDescriptor,
		partDescriptor,
		portDescriptor,
		connectorDescriptor,
	}
}

func as[T model.Entity](e model.Entity) (T, error) {
	t, ok := e.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: want %T, got %T", ErrWrongEntity, zero, e)
	}
	return t, nil
}

func is[T model.Entity](e model.Entity) bool {
	_, ok := e.(T)
	return ok
}

// entityOrNil keeps typed nil pointers out of slot values.
func entityOrNil[P interface {
	*E
	model.Entity
}, E any](p P) any {
	if p == nil {
		return nil
	}
	return p
}

func stringProperty[T model.Entity](name string, field func(T) *string) *model.PropertyDescriptor {
	return &model.PropertyDescriptor{
		Name:       name,
		Membership: model.External,
		Read: func(e model.Entity) (any, error) {
			t, err := as[T](e)
			if err != nil {
				return nil, err
			}
			return *field(t), nil
		},
		Write: func(e model.Entity, v any) error {
			t, err := as[T](e)
			if err != nil {
				return err
			}
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("%w: %s expects string, got %T", model.ErrInvalidValue, name, v)
			}
			*field(t) = s
			return nil
		},
	}
}

// refProperty describes a plain reference slot holding a *E.
func refProperty[T model.Entity, P interface {
	*E
	model.Entity
}, E any](name string, field func(T) *P) *model.PropertyDescriptor {
	return &model.PropertyDescriptor{
		Name:       name,
		Membership: model.External,
		Read: func(e model.Entity) (any, error) {
			t, err := as[T](e)
			if err != nil {
				return nil, err
			}
			p := *field(t)
			if p == nil {
				return nil, nil
			}
			return p, nil
		},
		Write: func(e model.Entity, v any) error {
			t, err := as[T](e)
			if err != nil {
				return err
			}
			if v == nil {
				*field(t) = nil
				return nil
			}
			p, ok := v.(P)
			if !ok {
				return fmt.Errorf("%w: %s expects %T, got %T", model.ErrInvalidValue, name, *new(P), v)
			}
			*field(t) = p
			return nil
		},
	}
}

func ownedList[T model.Entity](name string, accepts func(model.Entity) bool, field func(T) *[]model.Ownership) *model.CollectionDescriptor {
	return &model.CollectionDescriptor{
		Name:       name,
		Kind:       model.Ordered,
		Membership: model.Owned,
		Read: func(e model.Entity) ([]model.Member, error) {
			t, err := as[T](e)
			if err != nil {
				return nil, err
			}
			list := *field(t)
			members := make([]model.Member, 0, len(list))
			for i, own := range list {
				members = append(members, model.Member{Index: i, Value: own})
			}
			return members, nil
		},
		WriteMember: func(e model.Entity, m model.Member) error {
			t, err := as[T](e)
			if err != nil {
				return err
			}
			list := field(t)
			if m.Index < 0 || m.Index >= len(*list) {
				return fmt.Errorf("%w: %s[%d]", model.ErrMissingMember, name, m.Index)
			}
			own, ok := m.Value.(model.Ownership)
			if !ok || !accepts(own.Target) {
				return fmt.Errorf("%w: %s[%d] rejects %T", model.ErrInvalidValue, name, m.Index, m.Value)
			}
			(*list)[m.Index] = own
			return nil
		},
	}
}

func ownedMap[T model.Entity](name string, accepts func(model.Entity) bool, field func(T) map[string]model.Ownership) *model.CollectionDescriptor {
	return &model.CollectionDescriptor{
		Name:       name,
		Kind:       model.Keyed,
		Membership: model.Owned,
		Read: func(e model.Entity) ([]model.Member, error) {
			t, err := as[T](e)
			if err != nil {
				return nil, err
			}
			m := field(t)
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			members := make([]model.Member, 0, len(keys))
			for i, k := range keys {
				members = append(members, model.Member{Index: i, Key: k, Value: m[k]})
			}
			return members, nil
		},
		WriteMember: func(e model.Entity, mem model.Member) error {
			t, err := as[T](e)
			if err != nil {
				return err
			}
			m := field(t)
			if _, ok := m[mem.Key]; !ok {
				return fmt.Errorf("%w: %s[%q]", model.ErrMissingMember, name, mem.Key)
			}
			own, ok := mem.Value.(model.Ownership)
			if !ok || !accepts(own.Target) {
				return fmt.Errorf("%w: %s[%q] rejects %T", model.ErrInvalidValue, name, mem.Key, mem.Value)
			}
			m[mem.Key] = own
			return nil
		},
	}
}
