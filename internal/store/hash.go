package store

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainSource separates source-file hashes from any other SHA-256 use.
const DomainSource = "arxos/ifc-source/v1"

// SourceHash returns the hex SHA-256 of data under DomainSource.
// Format: SHA256(domain + 0x00 + data).
func SourceHash(data []byte) string {
	h := sha256.New()
	h.Write([]byte(DomainSource))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
