package doc

import "github.com/roach88/docmig/internal/model"

// FileFormat is the version of the on-disk record layout.
const FileFormat = 1

// DomainKey is the reserved key of the domain root in owner fields.
const DomainKey = "domain"

// NoOwner marks a missing owner or parent.
const NoOwner = "-"

// File is the serialized form of a document.
//
// Entities are written inline under their structural parent. References
// use per-file keys rather than GlobalIDs, so documents with duplicate
// GlobalIDs still load unambiguously. An Owner field is written only when
// the recorded owner differs from the structural parent. Entities that
// are referenced but no longer contained are kept under Orphans.
type File struct {
	Format       int                          `json:"format" yaml:"format"`
	Name         string                       `json:"name" yaml:"name"`
	Revision     int                          `json:"revision" yaml:"revision"`
	Definitions  []DefinitionRecord           `json:"definitions,omitempty" yaml:"definitions,omitempty"`
	Compositions map[string]CompositionRecord `json:"compositions,omitempty" yaml:"compositions,omitempty"`
	Orphans      *Orphans                     `json:"orphans,omitempty" yaml:"orphans,omitempty"`
}

// Orphans holds detached entities, grouped by type.
type Orphans struct {
	Definitions  []DefinitionRecord  `json:"definitions,omitempty" yaml:"definitions,omitempty"`
	Compositions []CompositionRecord `json:"compositions,omitempty" yaml:"compositions,omitempty"`
	Parts        []PartRecord        `json:"parts,omitempty" yaml:"parts,omitempty"`
	Ports        []PortRecord        `json:"ports,omitempty" yaml:"ports,omitempty"`
	Connectors   []ConnectorRecord   `json:"connectors,omitempty" yaml:"connectors,omitempty"`
}

func (o *Orphans) empty() bool {
	return o == nil || len(o.Definitions)+len(o.Compositions)+len(o.Parts)+len(o.Ports)+len(o.Connectors) == 0
}

// Header carries the fields common to every unique entity record.
//
// A record with Ref set holds no entity of its own: the slot contains the
// entity written elsewhere under that key.
type Header struct {
	Key   string         `json:"key,omitempty" yaml:"key,omitempty"`
	Ref   string         `json:"ref,omitempty" yaml:"ref,omitempty"`
	ID    model.GlobalID `json:"id,omitzero" yaml:"id,omitempty"`
	Name  string         `json:"name,omitempty" yaml:"name,omitempty"`
	Owner string         `json:"owner,omitempty" yaml:"owner,omitempty"`
}

type DefinitionRecord struct {
	Header `json:",inline" yaml:",inline"`
	Base   string       `json:"base,omitempty" yaml:"base,omitempty"`
	Ports  []PortRecord `json:"ports,omitempty" yaml:"ports,omitempty"`
}

type CompositionRecord struct {
	Header     `json:",inline" yaml:",inline"`
	Parts      []PartRecord      `json:"parts,omitempty" yaml:"parts,omitempty"`
	Connectors []ConnectorRecord `json:"connectors,omitempty" yaml:"connectors,omitempty"`
}

type PartRecord struct {
	Header       `json:",inline" yaml:",inline"`
	Multiplicity string                `json:"multiplicity,omitempty" yaml:"multiplicity,omitempty"`
	Type         *TypeRecord           `json:"type,omitempty" yaml:"type,omitempty"`
	Parent       string                `json:"parent,omitempty" yaml:"parent,omitempty"`
	Ports        map[string]PortRecord `json:"ports,omitempty" yaml:"ports,omitempty"`
}

// TypeRecord holds either an inline local definition or the key of a
// shared one.
type TypeRecord struct {
	Local  *DefinitionRecord `json:"local,omitempty" yaml:"local,omitempty"`
	Shared string            `json:"shared,omitempty" yaml:"shared,omitempty"`
}

type PortRecord struct {
	Header    `json:",inline" yaml:",inline"`
	Direction string `json:"direction,omitempty" yaml:"direction,omitempty"`
}

type ConnectorRecord struct {
	Header `json:",inline" yaml:",inline"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
}
