// Package accumulator implements the in-memory Merkle accumulator used to
// root a transaction's event list, the TransactionInfo leaf it feeds into
// the ledger's own transaction accumulator, and the proof-verification
// contracts layered on top (transaction, transaction-list,
// transaction-output-list, and account-transactions proofs).
package accumulator

import (
	"github.com/levensti/diem/internal/address"
	"github.com/levensti/diem/internal/crypto"
	"github.com/levensti/diem/internal/protocol"
)

// EmptyAccumulatorRoot is the placeholder root for a zero-length event
// list, distinct from any hash a non-empty accumulator could produce since
// it is derived from the accumulator's own inner-node domain prefix rather
// than from any leaf content.
var EmptyAccumulatorRoot = crypto.HashWithPrefix(protocol.HashPrefixEventAccInner, []byte("EMPTY"))

// LeafHash computes the domain-separated hash for one event accumulator
// leaf, given the event's already-serialized bytes.
func LeafHash(eventBytes []byte) address.HashValue {
	return crypto.HashWithPrefix(protocol.HashPrefixEventAccLeaf, eventBytes)
}

func innerHash(left, right address.HashValue) address.HashValue {
	buf := make([]byte, 0, 2*address.HashSize)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return crypto.HashWithPrefix(protocol.HashPrefixEventAccInner, buf)
}

// Root computes the root of a binary, left-heavy Merkle accumulator over an
// ordered list of leaf hashes. "Left-heavy" means that when folding an odd
// number of nodes at a level, the last node is carried up unchanged rather
// than paired with a synthetic placeholder — the same posture the teacher's
// JMT folding takes toward an empty sibling half, generalized here to a
// flat list instead of a 16-way bitmap.
func Root(leaves []address.HashValue) address.HashValue {
	if len(leaves) == 0 {
		return EmptyAccumulatorRoot
	}
	level := append([]address.HashValue(nil), leaves...)
	for len(level) > 1 {
		next := make([]address.HashValue, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, innerHash(level[i], level[i+1]))
			} else {
				next = append(next, level[i])
			}
		}
		level = next
	}
	return level[0]
}

// EventRoot hashes an ordered list of already-serialized events into the
// event accumulator root for a single transaction.
func EventRoot(eventBytes [][]byte) address.HashValue {
	if len(eventBytes) == 0 {
		return EmptyAccumulatorRoot
	}
	leaves := make([]address.HashValue, len(eventBytes))
	for i, e := range eventBytes {
		leaves[i] = LeafHash(e)
	}
	return Root(leaves)
}
