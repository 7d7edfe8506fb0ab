package jmt

import (
	"encoding/binary"

	"github.com/levensti/diem/internal/address"
)

// Tag is the disk-level node-type discriminator (§4.4.3): a Null node, an
// internal node in either serialization mode, or a leaf.
type Tag byte

const (
	TagNull           Tag = 0
	TagInternalLegacy Tag = 1
	TagLeaf           Tag = 2
	TagInternal       Tag = 3
)

// Node is the tagged union of the tree's three node variants plus Null,
// dispatching hashing and (de)serialization to whichever variant is
// present.
type Node struct {
	Tag      Tag
	Leaf     LeafNode
	Internal InternalNode
}

// NullNode is the Node value representing the empty tree.
var NullNode = Node{Tag: TagNull}

// NewLeafVariant wraps a LeafNode as a Node.
func NewLeafVariant(l LeafNode) Node { return Node{Tag: TagLeaf, Leaf: l} }

// NewInternalVariant wraps an InternalNode as a Node, choosing the
// on-disk tag from its own LeafCountMigration flag.
func NewInternalVariant(n InternalNode) Node {
	tag := TagInternalLegacy
	if n.LeafCountMigration {
		tag = TagInternal
	}
	return Node{Tag: tag, Internal: n}
}

// Hash dispatches to the Null placeholder, the leaf hash, or the internal
// node's merkle(0,16).
func (nd Node) Hash() address.HashValue {
	switch nd.Tag {
	case TagNull:
		return address.PlaceholderHash
	case TagLeaf:
		return nd.Leaf.Hash()
	default:
		return nd.Internal.Hash()
	}
}

// Encode serializes the node with its leading tag byte.
func (nd Node) Encode() []byte {
	switch nd.Tag {
	case TagNull:
		return []byte{byte(TagNull)}
	case TagLeaf:
		return append([]byte{byte(TagLeaf)}, nd.Leaf.Encode()...)
	case TagInternalLegacy:
		return append([]byte{byte(TagInternalLegacy)}, encodeInternalBody(nd.Internal, false)...)
	case TagInternal:
		return append([]byte{byte(TagInternal)}, encodeInternalBody(nd.Internal, true)...)
	default:
		return nil
	}
}

// Decode parses the Encode wire form, enforcing the bitmap and child-count
// invariants from §4.4.3/§4.4.5.
func Decode(data []byte) (Node, error) {
	if len(data) < 1 {
		return Node{}, ErrEmptyInput
	}
	switch Tag(data[0]) {
	case TagNull:
		if len(data) != 1 {
			return Node{}, ErrTrailingBytes
		}
		return NullNode, nil
	case TagLeaf:
		l, err := DecodeLeafNode(data[1:])
		if err != nil {
			return Node{}, err
		}
		return NewLeafVariant(l), nil
	case TagInternalLegacy:
		n, err := decodeInternalBody(data[1:], false)
		if err != nil {
			return Node{}, err
		}
		return Node{Tag: TagInternalLegacy, Internal: n}, nil
	case TagInternal:
		n, err := decodeInternalBody(data[1:], true)
		if err != nil {
			return Node{}, err
		}
		return Node{Tag: TagInternal, Internal: n}, nil
	default:
		return Node{}, ErrUnknownTag
	}
}

// encodeInternalBody writes existence_bitmap || leaf_bitmap followed by,
// for each set bit low-to-high, its version/hash, and — only for
// non-leaf children when persistLeafCount is set — its leaf_count.
func encodeInternalBody(n InternalNode, persistLeafCount bool) []byte {
	existence := n.existenceBitmap()
	leaves := n.leafBitmap()

	var buf []byte
	var bm [2]byte
	binary.LittleEndian.PutUint16(bm[:], existence)
	buf = append(buf, bm[:]...)
	binary.LittleEndian.PutUint16(bm[:], leaves)
	buf = append(buf, bm[:]...)

	for i := 0; i < BranchFactor; i++ {
		if existence&(1<<uint(i)) == 0 {
			continue
		}
		c := n.Children[i]
		buf = append(buf, address.PutUvarint(c.Version)...)
		buf = append(buf, c.Hash[:]...)
		if !c.IsLeaf && persistLeafCount {
			var count uint64
			if c.LeafCount != nil {
				count = *c.LeafCount
			}
			buf = append(buf, address.PutUvarint(count)...)
		}
	}
	return buf
}

// decodeInternalBody is encodeInternalBody's inverse, rejecting empty
// input, inconsistent bitmaps, and trailing or missing bytes.
func decodeInternalBody(data []byte, persistLeafCount bool) (InternalNode, error) {
	if len(data) < 4 {
		return InternalNode{}, ErrEmptyInput
	}
	existence := binary.LittleEndian.Uint16(data[:2])
	leaves := binary.LittleEndian.Uint16(data[2:4])
	if existence == 0 {
		return InternalNode{}, ErrNoChildren
	}
	if existence&leaves != leaves {
		return InternalNode{}, ErrExtraLeaves
	}

	rest := data[4:]
	var children [BranchFactor]*Child
	childCount := 0
	for i := 0; i < BranchFactor; i++ {
		if existence&(1<<uint(i)) == 0 {
			continue
		}
		version, n, err := address.Uvarint(rest)
		if err != nil {
			return InternalNode{}, err
		}
		rest = rest[n:]
		if len(rest) < address.HashSize {
			return InternalNode{}, ErrEmptyInput
		}
		var h address.HashValue
		copy(h[:], rest[:address.HashSize])
		rest = rest[address.HashSize:]

		isLeaf := leaves&(1<<uint(i)) != 0
		child := &Child{Hash: h, Version: version, IsLeaf: isLeaf}
		if !isLeaf && persistLeafCount {
			count, n, err := address.Uvarint(rest)
			if err != nil {
				return InternalNode{}, err
			}
			rest = rest[n:]
			if count != 0 {
				child.LeafCount = &count
			}
		}
		children[i] = child
		childCount++
	}
	if len(rest) != 0 {
		return InternalNode{}, ErrTrailingBytes
	}
	if childCount == 1 && children[firstSetBit(existence)].IsLeaf {
		return InternalNode{}, ErrSoleLeafChild
	}
	return InternalNode{Children: children, LeafCountMigration: persistLeafCount}, nil
}

func firstSetBit(bm uint16) int {
	for i := 0; i < BranchFactor; i++ {
		if bm&(1<<uint(i)) != 0 {
			return i
		}
	}
	return -1
}
