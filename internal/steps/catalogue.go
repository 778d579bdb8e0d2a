package steps

import "github.com/roach88/docmig/internal/ledger"

// Revisions of the default catalogue. Never renumber; append only.
const (
	RevNormalizeNames     = 1
	RevLegacyMultiplicity = 2
	RevRepairReferences   = 3
	RevRepairOwnership    = 4
	RevDedupeGlobalIDs    = 5
)

// Default returns the document migration catalogue in revision order.
func Default() []ledger.Step {
	return []ledger.Step{
		{
			Revision: RevNormalizeNames,
			Name:     "normalize-names",
			Apply:    PatchProperty(AnyType, "Name", NormalizeName),
		},
		{
			Revision: RevLegacyMultiplicity,
			Name:     "legacy-multiplicity",
			Apply:    PatchProperty("Part", "Multiplicity", NormalizeMultiplicity),
		},
		{
			Revision: RevRepairReferences,
			Name:     "repair-references",
			Apply:    RepairReferences,
		},
		{
			Revision: RevRepairOwnership,
			Name:     "repair-ownership",
			Apply:    RepairOwnership,
		},
		{
			Revision: RevDedupeGlobalIDs,
			Name:     "dedupe-global-ids",
			Apply:    ResolveDuplicateIDs,
		},
	}
}

// NewLedger builds a ledger over the default catalogue.
func NewLedger(opts ...ledger.Option) *ledger.Ledger {
	return ledger.MustNew(Default(), opts...)
}
