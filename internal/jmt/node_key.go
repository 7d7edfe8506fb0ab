// Package jmt implements the Jellyfish Merkle Tree node types: NodeKey,
// InternalNode (16-way, bitmap-compressed), LeafNode, and Null, along with
// their hashing, sibling-extraction, and bit-exact serialization.
//
// The 16-way branching and bitmap-compressed internal node are the same
// shape the teacher's SHAMap InnerNode uses for its 16 branches
// (internal/core/shamap/inner_node.go's isBranch uint16 + [16]HashValue
// array); NodeKey plays the addressing role the teacher's NodeID does
// (internal/core/shamap/node_id.go), generalized with an explicit version
// component for the tree's MVCC versioning.
package jmt

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/levensti/diem/internal/address"
)

// ErrMaxDepthExceeded mirrors the teacher's NodeID depth guard, generalized
// to the tree's 64-nibble root height.
var ErrMaxDepthExceeded = errors.New("jmt: nibble path exceeds tree height")

// NodeKey addresses one node in the tree: the version at which it was
// created, and its position (as a nibble path from the root).
type NodeKey struct {
	Version address.Version
	Path    address.NibblePath
}

// NewNodeKey builds a NodeKey, rejecting paths deeper than the tree's root
// height.
func NewNodeKey(version address.Version, path address.NibblePath) (NodeKey, error) {
	if path.Len() > address.MaxNibblePathLength {
		return NodeKey{}, fmt.Errorf("%w: %d", ErrMaxDepthExceeded, path.Len())
	}
	return NodeKey{Version: version, Path: path}, nil
}

// RootNodeKey is the key of the tree's root at a given version: version,
// empty nibble path.
func RootNodeKey(version address.Version) NodeKey {
	empty, _ := address.NewNibblePath(nil)
	return NodeKey{Version: version, Path: empty}
}

// Child derives this key's child along nibble n, one level deeper, at the
// same version (children are created in the same batch as their parent
// unless the child is an untouched subtree reused from an earlier version,
// in which case the caller constructs its NodeKey directly with that
// earlier version).
func (k NodeKey) Child(n address.Nibble, atVersion address.Version) (NodeKey, error) {
	path, err := k.Path.Push(n)
	if err != nil {
		return NodeKey{}, err
	}
	return NodeKey{Version: atVersion, Path: path}, nil
}

// Encode writes the disk layout: version (big-endian u64) so lexicographic
// key order equals version order, followed by the nibble path's own
// num_nibbles || packed_bytes encoding.
func (k NodeKey) Encode() []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, k.Version)
	return append(buf, k.Path.Encode()...)
}

// DecodeNodeKey parses the Encode wire form.
func DecodeNodeKey(data []byte) (NodeKey, error) {
	if len(data) < 8 {
		return NodeKey{}, fmt.Errorf("node key: %w", address.ErrEmptyInput)
	}
	version := binary.BigEndian.Uint64(data[:8])
	path, n, err := address.DecodeNibblePath(data[8:])
	if err != nil {
		return NodeKey{}, fmt.Errorf("node key: %w", err)
	}
	if 8+n != len(data) {
		return NodeKey{}, fmt.Errorf("node key: %w: trailing bytes", address.ErrEmptyInput)
	}
	return NodeKey{Version: version, Path: path}, nil
}

// Equal reports whether two keys address the same node.
func (k NodeKey) Equal(other NodeKey) bool {
	return k.Version == other.Version && bytes.Equal(k.Path.Encode(), other.Path.Encode())
}

// Nibble returns the nibble at index i along this key's path.
func (k NodeKey) Nibble(i int) address.Nibble {
	return k.Path.Get(i)
}

func (k NodeKey) String() string {
	return fmt.Sprintf("NodeKey{version=%d, nibbles=%d}", k.Version, k.Path.Len())
}
