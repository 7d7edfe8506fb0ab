package jmt

import (
	"testing"

	"github.com/levensti/diem/internal/address"
)

func TestNullNodeHashIsPlaceholder(t *testing.T) {
	if NullNode.Hash() != address.PlaceholderHash {
		t.Fatal("expected the Null node to hash to the placeholder")
	}
}

func TestNullNodeEncodeDecodeRoundTrip(t *testing.T) {
	encoded := NullNode.Encode()
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Tag != TagNull {
		t.Fatalf("expected TagNull, got %v", decoded.Tag)
	}
}

func TestLeafVariantEncodeDecodeRoundTrip(t *testing.T) {
	leaf := NewLeafNode(sampleAccountKey(0x44), []byte("state"))
	nd := NewLeafVariant(leaf)
	encoded := nd.Encode()
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Tag != TagLeaf {
		t.Fatalf("expected TagLeaf, got %v", decoded.Tag)
	}
	if decoded.Hash() != nd.Hash() {
		t.Fatal("decoded leaf variant hash mismatch")
	}
}

func TestInternalVariantLegacyEncodeDecodeRoundTrip(t *testing.T) {
	var children [BranchFactor]*Child
	children[0] = leafChild(0x01)
	children[1] = internalChild(0x02)
	children[1].LeafCount = nil // legacy child: count unknown
	n, err := NewInternalNode(children, false)
	if err != nil {
		t.Fatalf("new internal node: %v", err)
	}
	nd := NewInternalVariant(n)
	if nd.Tag != TagInternalLegacy {
		t.Fatalf("expected TagInternalLegacy, got %v", nd.Tag)
	}
	encoded := nd.Encode()
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Tag != TagInternalLegacy {
		t.Fatalf("expected TagInternalLegacy after decode, got %v", decoded.Tag)
	}
	if decoded.Hash() != nd.Hash() {
		t.Fatal("decoded legacy internal node hash mismatch")
	}
	for i, c := range decoded.Internal.Children {
		if (c == nil) != (n.Children[i] == nil) {
			t.Fatalf("slot %d presence mismatch", i)
		}
		if c == nil {
			continue
		}
		if c.Hash != n.Children[i].Hash || c.IsLeaf != n.Children[i].IsLeaf {
			t.Fatalf("slot %d content mismatch", i)
		}
		if c.LeafCount != nil {
			t.Fatalf("slot %d: legacy encoding must not carry a leaf count", i)
		}
	}
}

func TestInternalVariantPersistedEncodeDecodeRoundTrip(t *testing.T) {
	var children [BranchFactor]*Child
	children[3] = leafChild(0x03)
	children[4] = internalChild(0x04)
	n, err := NewInternalNode(children, true)
	if err != nil {
		t.Fatalf("new internal node: %v", err)
	}
	nd := NewInternalVariant(n)
	if nd.Tag != TagInternal {
		t.Fatalf("expected TagInternal, got %v", nd.Tag)
	}
	encoded := nd.Encode()
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Tag != TagInternal {
		t.Fatalf("expected TagInternal after decode, got %v", decoded.Tag)
	}
	got, ok := decoded.Internal.TotalLeafCount()
	if !ok {
		t.Fatal("expected a known total leaf count after persisted round trip")
	}
	want, _ := n.TotalLeafCount()
	if got != want {
		t.Fatalf("leaf count mismatch: got %d want %d", got, want)
	}
}

func TestDecodeRejectsEmptyInput(t *testing.T) {
	if _, err := Decode(nil); err != ErrEmptyInput {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestDecodeRejectsUnknownTag(t *testing.T) {
	if _, err := Decode([]byte{0xff}); err != ErrUnknownTag {
		t.Fatalf("expected ErrUnknownTag, got %v", err)
	}
}

func TestDecodeRejectsExtraLeafBits(t *testing.T) {
	// existence_bitmap = 0b0001 (bit 0 only), leaf_bitmap = 0b0011 (bits 0
	// and 1) — bit 1 is set as a leaf without being a child at all.
	body := []byte{0x01, 0x00, 0x03, 0x00}
	if _, err := decodeInternalBody(body, true); err != ErrExtraLeaves {
		t.Fatalf("expected ErrExtraLeaves, got %v", err)
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	var children [BranchFactor]*Child
	children[0] = leafChild(0x01)
	children[1] = leafChild(0x02)
	n, _ := NewInternalNode(children, true)
	body := append(encodeInternalBody(n, true), 0x00)
	if _, err := decodeInternalBody(body, true); err != ErrTrailingBytes {
		t.Fatalf("expected ErrTrailingBytes, got %v", err)
	}
}
