package crypto

import (
	"crypto/sha256"

	"github.com/levensti/diem/internal/address"
)

// HashWithPrefix computes SHA-256(prefix || data) and returns it as a
// HashValue, the same prepend-then-hash shape the teacher's
// PrependHashPrefix/BuildMultiSigningData pair uses, generalized to the
// core's [4]byte domain-separation prefixes (see internal/protocol).
func HashWithPrefix(prefix [4]byte, data []byte) address.HashValue {
	buf := make([]byte, 0, len(prefix)+len(data))
	buf = append(buf, prefix[:]...)
	buf = append(buf, data...)
	return address.HashValue(sha256.Sum256(buf))
}

// Hash computes a plain SHA-256 digest with no domain-separation prefix,
// used for content addresses that are not a signing or node-hashing target
// (a Jellyfish leaf's value hash, and the node-store key derived from an
// encoded NodeKey).
func Hash(data []byte) address.HashValue {
	return address.HashValue(sha256.Sum256(data))
}
