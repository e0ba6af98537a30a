// Package phihash hashes PHI-like identifiers (patient control numbers,
// subscriber ids) with a salted one-way hash before they leave the parser
// boundary, per spec.md §4.6. Unlike password hashing (bcrypt, random
// salt per value), this hash must be deterministic: the episode linker's
// fallback match (spec.md §4.7 rule 2) needs the same patient id to hash
// identically across files so it can join on it.
package phihash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Hasher produces deterministic, salted hashes of PHI-like identifiers.
type Hasher struct {
	key []byte
}

// NewHasher builds a Hasher from the application's ENCRYPTION_KEY
// (spec.md §6 env vars; 32 chars, no default in production).
func NewHasher(key string) *Hasher {
	return &Hasher{key: []byte(key)}
}

// Hash returns the hex-encoded HMAC-SHA256 of value under the configured
// key. Empty input hashes to an empty string so "no identifier" doesn't
// get a deterministic fingerprint of its own.
func (h *Hasher) Hash(value string) string {
	if value == "" {
		return ""
	}
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}

// Equal reports whether two plaintext values hash to the same digest,
// without exposing either hash to a timing side channel that would matter
// for this use case (matching, not authentication).
func (h *Hasher) Equal(a, b string) bool {
	return h.Hash(a) == h.Hash(b)
}
