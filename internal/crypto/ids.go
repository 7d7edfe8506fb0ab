package crypto

import (
	"crypto/sha256"

	"github.com/decred/dcrd/crypto/ripemd160"
)

// DigestSize is the width of the secondary digest computed by Digest160.
const DigestSize = 20

// Digest160 computes RIPEMD160(SHA256(data)), the same two-hash
// construction the teacher used for account-id derivation. Here it backs
// the mempool's deterministic same-ranking-score tiebreak: a pending
// transaction's hash is mixed with the current proposer round's parent
// block hash via XorDigest160 before ordering priority-index entries that
// are otherwise equal, giving a pseudo-random but reproducible order.
func Digest160(data []byte) [DigestSize]byte {
	sha := sha256.Sum256(data)
	h := ripemd160.New()
	h.Write(sha[:])
	sum := h.Sum(nil)

	var result [DigestSize]byte
	copy(result[:], sum)
	return result
}

// XorDigest160 XORs two digests, used to combine a transaction's digest with
// a round-local salt for the tiebreak ordering.
func XorDigest160(a, b [DigestSize]byte) [DigestSize]byte {
	var out [DigestSize]byte
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}
