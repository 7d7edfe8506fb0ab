package accumulator

import "github.com/levensti/diem/internal/address"

// Proof is the ordered list of sibling hashes needed to recompute an
// accumulator root from one leaf, generalizing the teacher's JMT
// get_child_with_siblings (§4.4.2) from a 16-way bitmap-folded tree to this
// package's binary left-heavy one: a sibling is recorded only at the levels
// where this leaf's position was actually paired with another node: an odd
// leftover carried straight up (see Root) consumes no sibling slot.
type Proof struct {
	Siblings []address.HashValue
}

// GenerateProof replays the same folding Root performs, recording the
// sibling consumed at each level where leafIndex's node is paired.
func GenerateProof(leaves []address.HashValue, leafIndex int) (Proof, address.HashValue) {
	level := append([]address.HashValue(nil), leaves...)
	idx := leafIndex
	var proof Proof
	for len(level) > 1 {
		next := make([]address.HashValue, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, innerHash(level[i], level[i+1]))
			} else {
				next = append(next, level[i])
			}
		}
		if idx%2 == 0 {
			if idx+1 < len(level) {
				proof.Siblings = append(proof.Siblings, level[idx+1])
			}
			idx /= 2
		} else {
			proof.Siblings = append(proof.Siblings, level[idx-1])
			idx /= 2
		}
		level = next
	}
	root := leaves[leafIndex]
	if len(level) == 1 {
		root = level[0]
	}
	return proof, root
}

// Verify recomputes the root from leafHash at leafIndex out of totalLeaves
// using proof's sibling hashes, and reports whether it matches
// expectedRoot. It never needs the full leaf list.
func Verify(leafHash address.HashValue, leafIndex, totalLeaves int, proof Proof, expectedRoot address.HashValue) bool {
	if totalLeaves == 0 {
		return expectedRoot == EmptyAccumulatorRoot
	}
	if leafIndex < 0 || leafIndex >= totalLeaves {
		return false
	}
	current := leafHash
	idx := leafIndex
	levelLen := totalLeaves
	si := 0
	for levelLen > 1 {
		if idx%2 == 0 {
			if idx+1 < levelLen {
				if si >= len(proof.Siblings) {
					return false
				}
				current = innerHash(current, proof.Siblings[si])
				si++
			}
			// else: carried up alone, current unchanged.
		} else {
			if si >= len(proof.Siblings) {
				return false
			}
			current = innerHash(proof.Siblings[si], current)
			si++
		}
		idx /= 2
		levelLen = (levelLen + 1) / 2
	}
	return si == len(proof.Siblings) && current == expectedRoot
}
