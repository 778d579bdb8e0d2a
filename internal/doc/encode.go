package doc

import (
	"strconv"
	"strings"

	"github.com/roach88/docmig/internal/model"
)

// encoder assigns keys and collects entities that are referenced but
// never written under a structural parent.
type encoder struct {
	keys    map[model.Entity]string
	used    map[string]struct{}
	written map[model.Entity]struct{}
	needed  []model.Entity
	counter map[string]int
}

// ToFile converts d to its serialized form.
//
// Keys loaded from a file are kept; entities created in memory get
// generated keys. An entity held by more than one owned slot is written
// once and referenced by key elsewhere. Output is deterministic for a
// given graph.
func ToFile(d *Domain) *File {
	enc := &encoder{
		keys:    map[model.Entity]string{d: DomainKey},
		used:    map[string]struct{}{DomainKey: {}},
		written: map[model.Entity]struct{}{d: {}},
		counter: make(map[string]int),
	}
	enc.reserve(d)

	f := &File{Format: FileFormat, Name: d.Name, Revision: d.revision}
	for _, def := range d.Definitions {
		if def != nil {
			f.Definitions = append(f.Definitions, enc.definition(def))
		}
	}
	for _, key := range sortedKeys(d.Compositions) {
		own := d.Compositions[key]
		c, ok := own.Target.(*Composition)
		if !ok {
			continue
		}
		if f.Compositions == nil {
			f.Compositions = make(map[string]CompositionRecord)
		}
		rec := enc.composition(c)
		rec.Owner = enc.ownerKey(own.Owner, d)
		f.Compositions[key] = rec
	}

	orphans := &Orphans{}
	for len(enc.needed) > 0 {
		e := enc.needed[0]
		enc.needed = enc.needed[1:]
		if enc.isWritten(e) {
			continue
		}
		switch v := e.(type) {
		case *Definition:
			orphans.Definitions = append(orphans.Definitions, enc.definition(v))
		case *Composition:
			orphans.Compositions = append(orphans.Compositions, enc.composition(v))
		case *Part:
			orphans.Parts = append(orphans.Parts, enc.part(v, nil))
		case *Port:
			orphans.Ports = append(orphans.Ports, enc.port(v))
		case *Connector:
			orphans.Connectors = append(orphans.Connectors, enc.connector(v))
		}
	}
	if !orphans.empty() {
		f.Orphans = orphans
	}
	return f
}

// reserve claims every loaded key reachable from d before any key is
// generated, so generated keys never collide with loaded ones.
func (enc *encoder) reserve(d *Domain) {
	seen := make(map[model.Entity]struct{})
	var visit func(e model.Entity)
	visit = func(e model.Entity) {
		if e == nil {
			return
		}
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		if k := loadedKey(e); k != "" {
			if _, taken := enc.used[k]; !taken {
				enc.used[k] = struct{}{}
				enc.keys[e] = k
			}
		}
		for _, next := range neighbours(e) {
			visit(next)
		}
	}
	visit(d)
}

func loadedKey(e model.Entity) string {
	switch v := e.(type) {
	case *Definition:
		return v.key
	case *Composition:
		return v.key
	case *Part:
		return v.key
	case *Port:
		return v.key
	case *Connector:
		return v.key
	}
	return ""
}

// neighbours lists every entity e points at, recorded owners included.
func neighbours(e model.Entity) []model.Entity {
	var out []model.Entity
	add := func(es ...model.Entity) {
		for _, x := range es {
			if x != nil {
				out = append(out, x)
			}
		}
	}
	switch v := e.(type) {
	case *Domain:
		for _, def := range v.Definitions {
			if def != nil {
				add(def)
			}
		}
		for _, k := range sortedKeys(v.Compositions) {
			add(v.Compositions[k].Owner, v.Compositions[k].Target)
		}
	case *Definition:
		if v.Base != nil {
			add(v.Base)
		}
		for _, o := range v.Ports {
			add(o.Owner, o.Target)
		}
	case *Composition:
		for _, o := range v.Parts {
			add(o.Owner, o.Target)
		}
		for _, o := range v.Connectors {
			add(o.Owner, o.Target)
		}
	case *Part:
		add(v.Type.Value)
		if v.Parent != nil {
			add(v.Parent)
		}
		for _, k := range sortedKeys(v.Ports) {
			add(v.Ports[k].Owner, v.Ports[k].Target)
		}
	case *Connector:
		if v.Source != nil {
			add(v.Source)
		}
		if v.Target != nil {
			add(v.Target)
		}
	}
	return out
}

// key returns the key of e, generating one if needed, and queues e for
// the orphan section in case it is never written under a parent.
func (enc *encoder) key(e model.Entity) string {
	enc.needed = append(enc.needed, e)
	if k, ok := enc.keys[e]; ok {
		return k
	}
	prefix := strings.ToLower(model.TypeOf(e))
	for {
		enc.counter[prefix]++
		k := prefix + strconv.Itoa(enc.counter[prefix])
		if _, taken := enc.used[k]; !taken {
			enc.used[k] = struct{}{}
			enc.keys[e] = k
			return k
		}
	}
}

func (enc *encoder) isWritten(e model.Entity) bool {
	_, ok := enc.written[e]
	return ok
}

func (enc *encoder) ownerKey(owner, parent model.Entity) string {
	switch {
	case owner == parent:
		return ""
	case owner == nil:
		return NoOwner
	default:
		return enc.key(owner)
	}
}

// header starts the record of e. The second result is false when e was
// already written and the record only refers to it.
func (enc *encoder) header(e model.Unique, name string) (Header, bool) {
	if enc.isWritten(e) {
		return Header{Ref: enc.key(e)}, false
	}
	enc.written[e] = struct{}{}
	return Header{Key: enc.key(e), ID: e.GlobalID(), Name: name}, true
}

func (enc *encoder) definition(def *Definition) DefinitionRecord {
	h, full := enc.header(def, def.Name)
	rec := DefinitionRecord{Header: h}
	if !full {
		return rec
	}
	if def.Base != nil {
		rec.Base = enc.key(def.Base)
	}
	for _, own := range def.Ports {
		port, ok := own.Target.(*Port)
		if !ok {
			continue
		}
		pr := enc.port(port)
		pr.Owner = enc.ownerKey(own.Owner, def)
		rec.Ports = append(rec.Ports, pr)
	}
	return rec
}

func (enc *encoder) composition(c *Composition) CompositionRecord {
	h, full := enc.header(c, c.Name)
	rec := CompositionRecord{Header: h}
	if !full {
		return rec
	}
	for _, own := range c.Parts {
		p, ok := own.Target.(*Part)
		if !ok {
			continue
		}
		pr := enc.part(p, c)
		pr.Owner = enc.ownerKey(own.Owner, c)
		rec.Parts = append(rec.Parts, pr)
	}
	for _, own := range c.Connectors {
		conn, ok := own.Target.(*Connector)
		if !ok {
			continue
		}
		cr := enc.connector(conn)
		cr.Owner = enc.ownerKey(own.Owner, c)
		rec.Connectors = append(rec.Connectors, cr)
	}
	return rec
}

// part writes p; parent is the composition the record is nested in.
func (enc *encoder) part(p *Part, parent *Composition) PartRecord {
	h, full := enc.header(p, p.Name)
	rec := PartRecord{Header: h}
	if !full {
		return rec
	}
	rec.Multiplicity = p.Multiplicity
	switch {
	case p.Parent == parent:
	case p.Parent == nil:
		rec.Parent = NoOwner
	default:
		rec.Parent = enc.key(p.Parent)
	}
	if def, ok := p.Type.Value.(*Definition); ok {
		if p.Type.Local {
			local := enc.definition(def)
			rec.Type = &TypeRecord{Local: &local}
		} else {
			rec.Type = &TypeRecord{Shared: enc.key(def)}
		}
	}
	for _, key := range sortedKeys(p.Ports) {
		own := p.Ports[key]
		port, ok := own.Target.(*Port)
		if !ok {
			continue
		}
		pr := enc.port(port)
		pr.Owner = enc.ownerKey(own.Owner, p)
		if rec.Ports == nil {
			rec.Ports = make(map[string]PortRecord)
		}
		rec.Ports[key] = pr
	}
	return rec
}

func (enc *encoder) port(p *Port) PortRecord {
	h, full := enc.header(p, p.Name)
	rec := PortRecord{Header: h}
	if full {
		rec.Direction = p.Direction
	}
	return rec
}

func (enc *encoder) connector(c *Connector) ConnectorRecord {
	h, full := enc.header(c, c.Name)
	rec := ConnectorRecord{Header: h}
	if !full {
		return rec
	}
	if c.Source != nil {
		rec.Source = enc.key(c.Source)
	}
	if c.Target != nil {
		rec.Target = enc.key(c.Target)
	}
	return rec
}
