package address

import (
	"errors"
	"fmt"
)

// maxVarintBytes is the longest possible encoding: 8 continuation bytes
// (7 bits each, 56 bits) plus one final raw byte carrying the top 8 bits of
// a u64 — the encoding never needs a 9th continuation bit.
const maxVarintBytes = 9

// PutUvarint writes v in base-128 little-endian with a continuation bit
// (0x80) on every byte but the last, except that the 9th byte — reached
// only once 8 continuation bytes have already been emitted — is written
// raw, without a continuation bit, since it always carries the final byte
// of a 64-bit value.
func PutUvarint(v uint64) []byte {
	var out []byte
	for i := 0; i < maxVarintBytes-1; i++ {
		if v < 0x80 {
			out = append(out, byte(v))
			return out
		}
		out = append(out, byte(v)|0x80)
		v >>= 7
	}
	// 8 continuation bytes already emitted; the 9th carries whatever
	// remains (up to 8 bits), unencoded.
	out = append(out, byte(v))
	return out
}

// ErrVarintOverflow is returned when more than 9 bytes are consumed without
// terminating — not a valid u64 varint.
var ErrVarintOverflow = errors.New("varint: overflows u64")

// Uvarint decodes a value written by PutUvarint, returning the value and the
// number of bytes consumed.
func Uvarint(data []byte) (uint64, int, error) {
	var v uint64
	for i := 0; i < maxVarintBytes-1; i++ {
		if i >= len(data) {
			return 0, 0, fmt.Errorf("varint: %w", ErrEmptyInput)
		}
		b := data[i]
		if b < 0x80 {
			v |= uint64(b) << (7 * i)
			return v, i + 1, nil
		}
		v |= uint64(b&0x7f) << (7 * i)
	}
	// 9th byte: raw, no continuation bit, carries the remaining high bits.
	if maxVarintBytes-1 >= len(data) {
		return 0, 0, fmt.Errorf("varint: %w", ErrEmptyInput)
	}
	v |= uint64(data[maxVarintBytes-1]) << (7 * (maxVarintBytes - 1))
	return v, maxVarintBytes, nil
}
