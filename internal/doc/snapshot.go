package doc

import (
	"fmt"

	"github.com/roach88/docmig/internal/canon"
)

// Snapshot returns the canonical JSON of d. Strings and keys are NFC
// normalized, so documents whose text differs only in normalization
// share a snapshot. Use Encode where text must round-trip unchanged.
func Snapshot(d *Domain) ([]byte, error) {
	data, err := canon.MarshalValue(ToFile(d))
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", d.Name, err)
	}
	return data, nil
}

// Hash returns the content hash of d's snapshot.
func Hash(d *Domain) (string, error) {
	data, err := Snapshot(d)
	if err != nil {
		return "", err
	}
	return canon.Hash(canon.DomainDocument, data), nil
}
