package address

import "testing"

func TestUvarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 1 << 20, 1<<56 - 1, 1 << 56, ^uint64(0)}
	for _, v := range cases {
		encoded := PutUvarint(v)
		got, n, err := Uvarint(encoded)
		if err != nil {
			t.Fatalf("decode %d: unexpected error: %v", v, err)
		}
		if n != len(encoded) {
			t.Errorf("decode %d: consumed %d bytes, want %d", v, n, len(encoded))
		}
		if got != v {
			t.Errorf("round trip mismatch: got %d, want %d", got, v)
		}
	}
}

func TestUvarintMaxLengthIsNineBytes(t *testing.T) {
	encoded := PutUvarint(^uint64(0))
	if len(encoded) != 9 {
		t.Errorf("got length %d, want 9", len(encoded))
	}
	// The 9th byte is raw: it carries the top 8 bits unmodified, with no
	// continuation flag, so for the maximum value it is 0xff.
	if encoded[8] != 0xff {
		t.Errorf("9th byte: got %x, want ff (raw top 8 bits)", encoded[8])
	}
}

func TestUvarintRejectsTruncatedInput(t *testing.T) {
	encoded := PutUvarint(1 << 40)
	if _, _, err := Uvarint(encoded[:len(encoded)-1]); err == nil {
		t.Errorf("expected error decoding truncated varint")
	}
}
