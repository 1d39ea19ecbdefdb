// Package identity computes the stable key shared by every license row of one person.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// KeyLength is the number of hex characters kept from the digest.
const KeyLength = 16

// Fingerprint hashes the uppercased, trimmed, pipe-joined name tuple and keeps
// the first KeyLength hex characters of the SHA-256 digest.
func Fingerprint(firstName, lastName, suffix, originState string) string {
	parts := []string{
		normalize(firstName),
		normalize(lastName),
		normalize(suffix),
		normalize(originState),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:KeyLength]
}

// Key is the fingerprint used by the assembler: the suffix slot is always empty
// because the suffix already travels inside the grouped last name.
func Key(firstName, lastNameWithSuffix, originState string) string {
	return Fingerprint(firstName, lastNameWithSuffix, "", originState)
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
