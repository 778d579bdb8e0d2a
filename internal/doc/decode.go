package doc

import (
	"fmt"
	"slices"

	"github.com/roach88/docmig/internal/model"
)

// decoder materialises records in two passes: entities first, then every
// key-based reference once all keys are registered.
type decoder struct {
	byKey   map[string]model.Entity
	pending []func() error
}

// FromFile builds the in-memory graph described by f.
func FromFile(f *File) (*Domain, error) {
	if f.Format != FileFormat {
		return nil, fmt.Errorf("%w: file format %d", ErrUnsupportedFormat, f.Format)
	}
	d := NewDomain(f.Name)
	d.revision = f.Revision
	dec := &decoder{byKey: map[string]model.Entity{DomainKey: d}}

	d.Definitions = make([]*Definition, len(f.Definitions))
	for i, rec := range f.Definitions {
		i, rec := i, rec
		err := place(dec, rec.Ref, func() (*Definition, error) { return dec.definition(rec) },
			func(def *Definition) { d.Definitions[i] = def })
		if err != nil {
			return nil, err
		}
	}
	for _, key := range sortedKeys(f.Compositions) {
		key := key
		rec := f.Compositions[key]
		d.Compositions[key] = model.Ownership{Owner: d}
		update := func(fn func(*model.Ownership)) {
			own := d.Compositions[key]
			fn(&own)
			d.Compositions[key] = own
		}
		err := place(dec, rec.Ref, func() (*Composition, error) { return dec.composition(rec) },
			func(c *Composition) { update(func(o *model.Ownership) { o.Target = c }) })
		if err != nil {
			return nil, err
		}
		dec.owner(rec.Header, func(e model.Entity) { update(func(o *model.Ownership) { o.Owner = e }) })
	}
	if err := dec.orphans(f.Orphans); err != nil {
		return nil, err
	}

	for _, fn := range dec.pending {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (dec *decoder) orphans(o *Orphans) error {
	if o == nil {
		return nil
	}
	for _, rec := range o.Definitions {
		if rec.Ref == "" {
			if _, err := dec.definition(rec); err != nil {
				return err
			}
		}
	}
	for _, rec := range o.Compositions {
		if rec.Ref == "" {
			if _, err := dec.composition(rec); err != nil {
				return err
			}
		}
	}
	for _, rec := range o.Parts {
		if rec.Ref == "" {
			if _, err := dec.part(rec, nil); err != nil {
				return err
			}
		}
	}
	for _, rec := range o.Ports {
		if rec.Ref == "" {
			if _, err := dec.port(rec); err != nil {
				return err
			}
		}
	}
	for _, rec := range o.Connectors {
		if rec.Ref == "" {
			if _, err := dec.connector(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

func (dec *decoder) register(key string, e model.Entity) error {
	if key == "" {
		return fmt.Errorf("%w: %s record without key", ErrUnknownKey, model.TypeOf(e))
	}
	if _, dup := dec.byKey[key]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}
	dec.byKey[key] = e
	return nil
}

// later queues a reference resolution for the second pass.
func (dec *decoder) later(fn func() error) {
	dec.pending = append(dec.pending, fn)
}

// owner applies a recorded owner that differs from the structural parent.
func (dec *decoder) owner(h Header, set func(model.Entity)) {
	switch h.Owner {
	case "":
	case NoOwner:
		set(nil)
	default:
		dec.later(func() error {
			o, ok := dec.byKey[h.Owner]
			if !ok {
				return fmt.Errorf("%w: owner %q", ErrUnknownKey, h.Owner)
			}
			set(o)
			return nil
		})
	}
}

func resolve[T model.Entity](dec *decoder, key, field string) (T, error) {
	var zero T
	e, ok := dec.byKey[key]
	if !ok {
		return zero, fmt.Errorf("%w: %s %q", ErrUnknownKey, field, key)
	}
	t, ok := e.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s %q is a %s", ErrWrongKeyType, field, key, model.TypeOf(e))
	}
	return t, nil
}

// place fills a slot with a freshly built entity, or for a ref record
// with the entity registered under ref once every key is known.
func place[T model.Entity](dec *decoder, ref string, build func() (T, error), set func(T)) error {
	if ref != "" {
		dec.later(func() error {
			t, err := resolve[T](dec, ref, "ref")
			if err != nil {
				return err
			}
			set(t)
			return nil
		})
		return nil
	}
	t, err := build()
	if err != nil {
		return err
	}
	set(t)
	return nil
}

func (dec *decoder) definition(rec DefinitionRecord) (*Definition, error) {
	def := &Definition{ID: rec.ID, Name: rec.Name, key: rec.Key}
	if err := dec.register(rec.Key, def); err != nil {
		return nil, err
	}
	if rec.Base != "" {
		dec.later(func() error {
			base, err := resolve[*Definition](dec, rec.Base, "base")
			def.Base = base
			return err
		})
	}
	def.Ports = make([]model.Ownership, len(rec.Ports))
	for i, pr := range rec.Ports {
		i, pr := i, pr
		def.Ports[i].Owner = def
		err := place(dec, pr.Ref, func() (*Port, error) { return dec.port(pr) },
			func(p *Port) { def.Ports[i].Target = p })
		if err != nil {
			return nil, err
		}
		dec.owner(pr.Header, func(o model.Entity) { def.Ports[i].Owner = o })
	}
	return def, nil
}

// composition decodes a composition record. Parts that do not name a
// parent point back at the composition.
func (dec *decoder) composition(rec CompositionRecord) (*Composition, error) {
	c := &Composition{ID: rec.ID, Name: rec.Name, key: rec.Key}
	if err := dec.register(rec.Key, c); err != nil {
		return nil, err
	}
	c.Parts = make([]model.Ownership, len(rec.Parts))
	for i, pr := range rec.Parts {
		i, pr := i, pr
		c.Parts[i].Owner = c
		err := place(dec, pr.Ref, func() (*Part, error) { return dec.part(pr, c) },
			func(p *Part) { c.Parts[i].Target = p })
		if err != nil {
			return nil, err
		}
		dec.owner(pr.Header, func(o model.Entity) { c.Parts[i].Owner = o })
	}
	c.Connectors = make([]model.Ownership, len(rec.Connectors))
	for i, cr := range rec.Connectors {
		i, cr := i, cr
		c.Connectors[i].Owner = c
		err := place(dec, cr.Ref, func() (*Connector, error) { return dec.connector(cr) },
			func(conn *Connector) { c.Connectors[i].Target = conn })
		if err != nil {
			return nil, err
		}
		dec.owner(cr.Header, func(o model.Entity) { c.Connectors[i].Owner = o })
	}
	return c, nil
}

func (dec *decoder) part(rec PartRecord, parent *Composition) (*Part, error) {
	p := &Part{ID: rec.ID, Name: rec.Name, Multiplicity: rec.Multiplicity, Parent: parent, key: rec.Key}
	if err := dec.register(rec.Key, p); err != nil {
		return nil, err
	}
	switch rec.Parent {
	case "":
	case NoOwner:
		p.Parent = nil
	default:
		dec.later(func() error {
			c, err := resolve[*Composition](dec, rec.Parent, "parent")
			p.Parent = c
			return err
		})
	}
	if t := rec.Type; t != nil {
		switch {
		case t.Local != nil:
			err := place(dec, t.Local.Ref, func() (*Definition, error) { return dec.definition(*t.Local) },
				func(def *Definition) { p.Type = model.Assignment{Value: def, Local: true} })
			if err != nil {
				return nil, err
			}
		case t.Shared != "":
			dec.later(func() error {
				def, err := resolve[*Definition](dec, t.Shared, "type")
				if err != nil {
					return err
				}
				p.Type = model.Assignment{Value: def}
				return nil
			})
		}
	}
	if len(rec.Ports) > 0 {
		p.Ports = make(map[string]model.Ownership, len(rec.Ports))
	}
	for _, key := range sortedKeys(rec.Ports) {
		key := key
		pr := rec.Ports[key]
		p.Ports[key] = model.Ownership{Owner: p}
		update := func(fn func(*model.Ownership)) {
			own := p.Ports[key]
			fn(&own)
			p.Ports[key] = own
		}
		err := place(dec, pr.Ref, func() (*Port, error) { return dec.port(pr) },
			func(port *Port) { update(func(o *model.Ownership) { o.Target = port }) })
		if err != nil {
			return nil, err
		}
		dec.owner(pr.Header, func(e model.Entity) { update(func(o *model.Ownership) { o.Owner = e }) })
	}
	return p, nil
}

func (dec *decoder) port(rec PortRecord) (*Port, error) {
	p := &Port{ID: rec.ID, Name: rec.Name, Direction: rec.Direction, key: rec.Key}
	if err := dec.register(rec.Key, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (dec *decoder) connector(rec ConnectorRecord) (*Connector, error) {
	c := &Connector{ID: rec.ID, Name: rec.Name, key: rec.Key}
	if err := dec.register(rec.Key, c); err != nil {
		return nil, err
	}
	if rec.Source != "" {
		dec.later(func() error {
			p, err := resolve[*Port](dec, rec.Source, "source")
			c.Source = p
			return err
		})
	}
	if rec.Target != "" {
		dec.later(func() error {
			p, err := resolve[*Port](dec, rec.Target, "target")
			c.Target = p
			return err
		})
	}
	return c, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
