package steps

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/docmig/internal/ledger"
	"github.com/roach88/docmig/internal/model"
	"github.com/roach88/docmig/internal/walk"
)

// AnyType matches every entity type in PatchProperty.
const AnyType = "*"

// PatchFunc maps a stored value to its corrected form and reports whether
// it changed.
type PatchFunc func(v any) (any, bool)

// PatchProperty returns a step procedure that rewrites property of every
// entity of typeName (or of every type carrying it, for AnyType).
func PatchProperty(typeName, property string, patch PatchFunc) func(*ledger.Context, model.Root) (bool, error) {
	return func(ctx *ledger.Context, root model.Root) (bool, error) {
		buf := ctx.Buffer()
		err := ctx.Walk([]model.Entity{root}, walk.Visitor{
			Entity: func(n walk.Node) error {
				if typeName != AnyType && model.TypeOf(n.Entity) != typeName {
					return nil
				}
				p := n.Entity.Descriptor().Property(property)
				if p == nil {
					return nil
				}
				cur, err := p.Read(n.Entity)
				if err != nil {
					return &walk.TraversalError{Route: n.Route + "." + property, Err: err}
				}
				next, changed := patch(cur)
				if !changed {
					return nil
				}
				ctx.Logger().Debug("patching value", "route", n.Route+"."+property, "from", cur, "to", next)
				return buf.Record(n.Entity, p, next)
			},
		})
		if err != nil {
			return false, err
		}
		n, err := ctx.Apply()
		return n > 0, err
	}
}

// NormalizeName trims surrounding whitespace and converts a name to NFC.
// Older editors stored names in whatever form the platform produced,
// which made visually identical names compare unequal.
func NormalizeName(v any) (any, bool) {
	s, ok := v.(string)
	if !ok {
		return v, false
	}
	out := strings.TrimSpace(norm.NFC.String(s))
	return out, out != s
}

// legacyMultiplicity maps tokens written before multiplicities were
// normalised to their current spelling.
var legacyMultiplicity = map[string]string{
	"n":    "*",
	"N":    "*",
	"many": "*",
	"0..n": "0..*",
	"0..N": "0..*",
	"1..n": "1..*",
	"1..N": "1..*",
	"":     "1",
}

// NormalizeMultiplicity rewrites legacy multiplicity tokens.
func NormalizeMultiplicity(v any) (any, bool) {
	s, ok := v.(string)
	if !ok {
		return v, false
	}
	if out, legacy := legacyMultiplicity[strings.TrimSpace(s)]; legacy {
		return out, out != s
	}
	return v, false
}
