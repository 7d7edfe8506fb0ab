package jmt

import (
	"math/bits"

	"github.com/levensti/diem/internal/address"
	"github.com/levensti/diem/internal/crypto"
	"github.com/levensti/diem/internal/protocol"
)

// BranchFactor is the internal node's fan-out: one slot per nibble value,
// the same 16-way shape the teacher's SHAMap InnerNode uses
// (internal/core/shamap/inner_node.go's branchFactor).
const BranchFactor = 16

// Child is one slot of an InternalNode: the hash and creation version of
// whatever subtree lives there, whether it's a leaf, and — only meaningful
// for non-leaf children — how many leaves that subtree contains (nil if
// unknown, i.e. the child itself was last persisted in legacy form).
type Child struct {
	Hash      address.HashValue
	Version   address.Version
	IsLeaf    bool
	LeafCount *uint64
}

// InternalNode holds up to 16 children plus the migration flag controlling
// whether leaf counts are persisted on encode (§4.4.4).
type InternalNode struct {
	Children           [BranchFactor]*Child
	LeafCountMigration bool
}

// NewInternalNode validates and builds an InternalNode: at least one child
// must be present, and if exactly one is present it must not be a leaf — a
// sole leaf child belongs promoted into the parent's own slot instead.
func NewInternalNode(children [BranchFactor]*Child, leafCountMigration bool) (InternalNode, error) {
	n := InternalNode{Children: children, LeafCountMigration: leafCountMigration}
	count := 0
	var sole *Child
	for _, c := range children {
		if c != nil {
			count++
			sole = c
		}
	}
	if count == 0 {
		return InternalNode{}, ErrNoChildren
	}
	if count == 1 && sole.IsLeaf {
		return InternalNode{}, ErrSoleLeafChild
	}
	return n, nil
}

func (n InternalNode) existenceBitmap() uint16 {
	var e uint16
	for i, c := range n.Children {
		if c != nil {
			e |= 1 << uint(i)
		}
	}
	return e
}

func (n InternalNode) leafBitmap() uint16 {
	var l uint16
	for i, c := range n.Children {
		if c != nil && c.IsLeaf {
			l |= 1 << uint(i)
		}
	}
	return l
}

// TotalLeafCount sums the leaf counts of every child, returning (0, false)
// if any non-leaf child's count is unknown (legacy).
func (n InternalNode) TotalLeafCount() (uint64, bool) {
	var total uint64
	for _, c := range n.Children {
		if c == nil {
			continue
		}
		if c.IsLeaf {
			total++
			continue
		}
		if c.LeafCount == nil {
			return 0, false
		}
		total += *c.LeafCount
	}
	return total, true
}

func maskRange(s, w int) uint16 {
	if w >= BranchFactor {
		return 0xFFFF
	}
	return uint16(((1 << uint(w)) - 1) << uint(s))
}

func sparseMerkleInternalHash(left, right address.HashValue) address.HashValue {
	buf := make([]byte, 0, 2*address.HashSize)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return crypto.HashWithPrefix(protocol.HashPrefixJMTInternalNode, buf)
}

// merkle computes the hash of the 16-slot subtree restricted to [s, s+w),
// per §4.4.1: an empty restriction hashes to the placeholder; a restriction
// containing exactly one leaf (or already width 1) resolves directly to
// that child's hash, skipping the otherwise-empty binary spine around it;
// anything wider recurses into two halves.
func (n InternalNode) merkle(s, w int) address.HashValue {
	mask := maskRange(s, w)
	ep := n.existenceBitmap() & mask
	lp := n.leafBitmap() & mask
	if ep == 0 {
		return address.PlaceholderHash
	}
	if w == 1 || (bits.OnesCount16(ep) == 1 && lp != 0) {
		i := bits.TrailingZeros16(ep)
		return n.Children[i].Hash
	}
	left := n.merkle(s, w/2)
	right := n.merkle(s+w/2, w/2)
	return sparseMerkleInternalHash(left, right)
}

// Hash is merkle(0, 16), the node's own contribution to its parent.
func (n InternalNode) Hash() address.HashValue {
	return n.merkle(0, BranchFactor)
}

// ChildRef identifies a resolved child slot: its NodeKey and whether it is
// a leaf, as returned by GetChildWithSiblings.
type ChildRef struct {
	Key    NodeKey
	IsLeaf bool
}

// GetChildWithSiblings implements §4.4.2: it returns the child (if any)
// that the search for nibble target resolves to — which, under leaf
// compression, may be a different nibble's leaf whose mere existence
// proves target's absence — plus the 4 sibling hashes collected while
// descending from width 8 down to width 1, always in that (widest-first)
// order regardless of where resolution actually happened.
func (n InternalNode) GetChildWithSiblings(nodeKey NodeKey, target address.Nibble) (*ChildRef, [4]address.HashValue, error) {
	existence := n.existenceBitmap()
	leaves := n.leafBitmap()

	var siblings [4]address.HashValue
	var resolved *ChildRef
	var resolvedAbsent bool

	currentStart, currentWidth := 0, BranchFactor
	idx := int(target)
	for level := 0; level < 4; level++ {
		w := currentWidth / 2
		nearStart, farStart := currentStart, currentStart+w
		if idx >= currentStart+w {
			nearStart, farStart = currentStart+w, currentStart
		}
		siblings[level] = n.merkle(farStart, w)

		if resolved == nil && !resolvedAbsent {
			near := maskRange(nearStart, w)
			ep := existence & near
			lp := leaves & near
			switch {
			case ep == 0:
				resolvedAbsent = true
			case w == 1, bits.OnesCount16(ep) == 1 && lp != 0:
				i := bits.TrailingZeros16(ep)
				child := n.Children[i]
				key, err := nodeKey.Child(address.Nibble(i), child.Version)
				if err != nil {
					return nil, siblings, err
				}
				resolved = &ChildRef{Key: key, IsLeaf: child.IsLeaf}
			}
		}

		currentStart, currentWidth = nearStart, w
	}

	if resolvedAbsent {
		return nil, siblings, nil
	}
	return resolved, siblings, nil
}
