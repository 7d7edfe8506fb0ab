package jmt

import (
	"github.com/levensti/diem/internal/address"
	"github.com/levensti/diem/internal/crypto"
	"github.com/levensti/diem/internal/protocol"
)

// LeafNode is a tree leaf: the full account key it terminates at (not just
// the nibble prefix the tree walked to reach it), the hash of the stored
// value, and the value itself.
type LeafNode struct {
	AccountKey address.HashValue
	ValueHash  address.HashValue
	Value      []byte
}

// NewLeafNode builds a leaf, deriving ValueHash from value so callers never
// have the two fall out of sync.
func NewLeafNode(accountKey address.HashValue, value []byte) LeafNode {
	return LeafNode{
		AccountKey: accountKey,
		ValueHash:  crypto.Hash(value),
		Value:      append([]byte(nil), value...),
	}
}

// Hash computes H(leaf_tag, account_key, value_hash) — the leaf's
// contribution to the tree's merkle structure.
func (l LeafNode) Hash() address.HashValue {
	buf := make([]byte, 0, 2*address.HashSize)
	buf = append(buf, l.AccountKey[:]...)
	buf = append(buf, l.ValueHash[:]...)
	return crypto.HashWithPrefix(protocol.HashPrefixJMTLeafNode, buf)
}

// Encode serializes the leaf via the canonical binary codec: account key,
// value hash, then the length-prefixed value bytes.
func (l LeafNode) Encode() []byte {
	buf := make([]byte, 0, 2*address.HashSize+len(l.Value)+9)
	buf = append(buf, l.AccountKey[:]...)
	buf = append(buf, l.ValueHash[:]...)
	buf = append(buf, address.PutUvarint(uint64(len(l.Value)))...)
	buf = append(buf, l.Value...)
	return buf
}

// DecodeLeafNode parses the Encode wire form.
func DecodeLeafNode(data []byte) (LeafNode, error) {
	if len(data) < 2*address.HashSize {
		return LeafNode{}, ErrEmptyInput
	}
	var l LeafNode
	copy(l.AccountKey[:], data[:address.HashSize])
	copy(l.ValueHash[:], data[address.HashSize:2*address.HashSize])
	rest := data[2*address.HashSize:]
	n, consumed, err := address.Uvarint(rest)
	if err != nil {
		return LeafNode{}, err
	}
	rest = rest[consumed:]
	if uint64(len(rest)) < n {
		return LeafNode{}, ErrEmptyInput
	}
	l.Value = append([]byte(nil), rest[:n]...)
	return l, nil
}
