package canon

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainDocument prefixes document content hashes. The version suffix
// allows the algorithm to change without colliding with stored hashes.
const DomainDocument = "docmig/document/v1"

// Hash computes SHA256(domain + 0x00 + data) as lowercase hex.
// The separator keeps the domain/data boundary unambiguous.
func Hash(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
