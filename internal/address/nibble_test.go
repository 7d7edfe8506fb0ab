package address

import "testing"

func TestNibblePathEvenLengthRoundTrips(t *testing.T) {
	nibbles := []Nibble{0x1, 0x2, 0x3, 0x4}
	p, err := NewNibblePath(nibbles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Len() != 4 || p.IsOdd() {
		t.Fatalf("unexpected shape: len=%d odd=%v", p.Len(), p.IsOdd())
	}
	encoded := p.Encode()
	decoded, n, err := DecodeNibblePath(encoded)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if n != len(encoded) {
		t.Errorf("consumed %d bytes, want %d", n, len(encoded))
	}
	for i, want := range nibbles {
		if decoded.Get(i) != want {
			t.Errorf("nibble %d: got %v, want %v", i, decoded.Get(i), want)
		}
	}
}

func TestNibblePathOddLengthZeroPads(t *testing.T) {
	nibbles := []Nibble{0xa, 0xb, 0xc}
	p, err := NewNibblePath(nibbles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.IsOdd() {
		t.Fatalf("expected odd-length path")
	}
	encoded := p.Encode()
	// Last byte's low nibble must be the zero padding.
	last := encoded[len(encoded)-1]
	if last&0x0f != 0 {
		t.Fatalf("expected zero padding in low nibble, got %x", last)
	}
	decoded, _, err := DecodeNibblePath(encoded)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if decoded.Len() != 3 || decoded.Get(2) != 0xc {
		t.Errorf("round trip mismatch: len=%d last=%v", decoded.Len(), decoded.Get(2))
	}
}

func TestNibblePathRejectsNonZeroPadding(t *testing.T) {
	encoded := []byte{3, 0xab, 0xc1} // low nibble of last byte is 0x1, must be rejected
	if _, _, err := DecodeNibblePath(encoded); err == nil {
		t.Errorf("expected padding violation error")
	}
}

func TestNibblePathFromHashHasSixtyFourNibbles(t *testing.T) {
	h, err := ParseHash("0x" + stringsRepeat("ab", 32))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := NibblePathFromHash(h)
	if p.Len() != MaxNibblePathLength {
		t.Errorf("got %d nibbles, want %d", p.Len(), MaxNibblePathLength)
	}
}

func TestNibblePathPushExtends(t *testing.T) {
	p, err := NewNibblePath(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, err = p.Push(0x5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, err = p.Push(0xf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Len() != 2 || p.Get(0) != 0x5 || p.Get(1) != 0xf {
		t.Errorf("unexpected path after push: len=%d", p.Len())
	}
}
