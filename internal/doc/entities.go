package doc

import (
	"github.com/roach88/docmig/internal/model"
)

// Domain is the document root. It owns the shared definitions and the
// named compositions, and carries the persisted migration revision.
type Domain struct {
	Name         string
	Definitions  []*Definition
	Compositions map[string]model.Ownership // Target is *Composition

	revision int
	dirty    bool
}

// NewDomain creates an empty domain at revision 0.
func NewDomain(name string) *Domain {
	return &Domain{Name: name, Compositions: make(map[string]model.Ownership)}
}

func (d *Domain) Descriptor() *model.Descriptor { return domainDescriptor }
func (d *Domain) Revision() int                 { return d.revision }
func (d *Domain) SetRevision(rev int)           { d.revision = rev }
func (d *Domain) MarkDirty()                    { d.dirty = true }
func (d *Domain) Dirty() bool                   { return d.dirty }

// ClearDirty resets the dirty flag after the document was saved.
func (d *Domain) ClearDirty() { d.dirty = false }

// AddDefinition appends a shared definition.
func (d *Domain) AddDefinition(def *Definition) *Definition {
	d.Definitions = append(d.Definitions, def)
	return def
}

// AddComposition stores c under key, owned by d.
func (d *Domain) AddComposition(key string, c *Composition) *Composition {
	if d.Compositions == nil {
		d.Compositions = make(map[string]model.Ownership)
	}
	d.Compositions[key] = model.Ownership{Owner: d, Target: c}
	return c
}

// Composition returns the composition stored under key, or nil.
func (d *Domain) Composition(key string) *Composition {
	c, _ := d.Compositions[key].Target.(*Composition)
	return c
}

// Definition is a reusable type with ports, optionally derived from a base.
type Definition struct {
	ID    model.GlobalID
	Name  string
	Base  *Definition
	Ports []model.Ownership // Target is *Port

	key string
}

func (d *Definition) Descriptor() *model.Descriptor { return definitionDescriptor }
func (d *Definition) GlobalID() model.GlobalID      { return d.ID }
func (d *Definition) SetGlobalID(id model.GlobalID) { d.ID = id }

// AddPort appends p, owned by d.
func (d *Definition) AddPort(p *Port) *Port {
	d.Ports = append(d.Ports, model.Ownership{Owner: d, Target: p})
	return p
}

// Port returns the i-th port.
func (d *Definition) Port(i int) *Port {
	p, _ := d.Ports[i].Target.(*Port)
	return p
}

// Composition arranges parts and the connectors between their ports.
type Composition struct {
	ID         model.GlobalID
	Name       string
	Parts      []model.Ownership // Target is *Part
	Connectors []model.Ownership // Target is *Connector

	key string
}

func (c *Composition) Descriptor() *model.Descriptor { return compositionDescriptor }
func (c *Composition) GlobalID() model.GlobalID      { return c.ID }
func (c *Composition) SetGlobalID(id model.GlobalID) { c.ID = id }

// AddPart appends p, owned by c, and points p's back-reference at c.
func (c *Composition) AddPart(p *Part) *Part {
	c.Parts = append(c.Parts, model.Ownership{Owner: c, Target: p})
	p.Parent = c
	return p
}

// AddConnector appends conn, owned by c.
func (c *Composition) AddConnector(conn *Connector) *Connector {
	c.Connectors = append(c.Connectors, model.Ownership{Owner: c, Target: conn})
	return conn
}

// Part returns the i-th part.
func (c *Composition) Part(i int) *Part {
	p, _ := c.Parts[i].Target.(*Part)
	return p
}

// Connector returns the i-th connector.
func (c *Composition) Connector(i int) *Connector {
	conn, _ := c.Connectors[i].Target.(*Connector)
	return conn
}

// Part is a usage of a definition inside a composition.
//
// Type is either a local definition owned by the part or a reference to a
// shared definition of the domain. Parent points back at the composition
// and is a plain reference, which makes the graph cyclic.
type Part struct {
	ID           model.GlobalID
	Name         string
	Multiplicity string
	Type         model.Assignment // Value is *Definition
	Parent       *Composition
	Ports        map[string]model.Ownership // Target is *Port

	key string
}

func (p *Part) Descriptor() *model.Descriptor { return partDescriptor }
func (p *Part) GlobalID() model.GlobalID      { return p.ID }
func (p *Part) SetGlobalID(id model.GlobalID) { p.ID = id }

// SetSharedType types p with a shared definition. A nil def clears the type.
func (p *Part) SetSharedType(def *Definition) {
	p.setType(def, false)
}

// SetLocalType types p with a definition private to p.
func (p *Part) SetLocalType(def *Definition) {
	p.setType(def, true)
}

func (p *Part) setType(def *Definition, local bool) {
	if def == nil {
		p.Type = model.Assignment{}
		return
	}
	p.Type = model.Assignment{Value: def, Local: local}
}

// Definition returns the definition typing p, or nil.
func (p *Part) Definition() *Definition {
	def, _ := p.Type.Value.(*Definition)
	return def
}

// AddPort stores port under key, owned by p.
func (p *Part) AddPort(key string, port *Port) *Port {
	if p.Ports == nil {
		p.Ports = make(map[string]model.Ownership)
	}
	p.Ports[key] = model.Ownership{Owner: p, Target: port}
	return port
}

// Port returns the port stored under key, or nil.
func (p *Part) Port(key string) *Port {
	port, _ := p.Ports[key].Target.(*Port)
	return port
}

// Port is a connection point.
type Port struct {
	ID        model.GlobalID
	Name      string
	Direction string

	key string
}

func (p *Port) Descriptor() *model.Descriptor { return portDescriptor }
func (p *Port) GlobalID() model.GlobalID      { return p.ID }
func (p *Port) SetGlobalID(id model.GlobalID) { p.ID = id }

// Connector links two ports. Both ends are references.
type Connector struct {
	ID     model.GlobalID
	Name   string
	Source *Port
	Target *Port

	key string
}

func (c *Connector) Descriptor() *model.Descriptor { return connectorDescriptor }
func (c *Connector) GlobalID() model.GlobalID      { return c.ID }
func (c *Connector) SetGlobalID(id model.GlobalID) { c.ID = id }
