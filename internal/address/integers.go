package address

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// U64 serializes as a decimal string on the wire, matching the teacher's
// JSON-facing numeric types that exceed JavaScript's safe-integer range.
type U64 uint64

// MarshalText renders the decimal string form.
func (v U64) MarshalText() ([]byte, error) {
	return []byte(strconv.FormatUint(uint64(v), 10)), nil
}

// UnmarshalText parses a decimal string, failing on overflow or non-digit input.
func (v *U64) UnmarshalText(text []byte) error {
	parsed, err := strconv.ParseUint(string(text), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid u64 %q: %w", text, err)
	}
	*v = U64(parsed)
	return nil
}

// U128 holds a 128-bit unsigned integer, serialized the same decimal-string
// way as U64.
type U128 struct {
	big.Int
}

// NewU128FromUint64 lifts a uint64 into a U128.
func NewU128FromUint64(v uint64) U128 {
	var out U128
	out.SetUint64(v)
	return out
}

var u128Max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// MarshalText renders the decimal string form.
func (v U128) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText parses a decimal string, rejecting negative values and
// anything that doesn't fit in 128 bits.
func (v *U128) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("invalid u128 %q", text)
	}
	if n.Sign() < 0 || n.Cmp(u128Max) > 0 {
		return fmt.Errorf("u128 %q out of range", text)
	}
	v.Int = *n
	return nil
}

// HexEncodedBytes is a byte slice that serializes as "0x" + lowercase hex.
type HexEncodedBytes []byte

// MarshalText implements encoding.TextMarshaler.
func (b HexEncodedBytes) MarshalText() ([]byte, error) {
	return []byte("0x" + hex.EncodeToString(b)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *HexEncodedBytes) UnmarshalText(text []byte) error {
	s := string(text)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return fmt.Errorf("hex-encoded bytes %q must be 0x-prefixed", text)
	}
	raw, err := hex.DecodeString(s[2:])
	if err != nil {
		return fmt.Errorf("hex-encoded bytes %q: %w", text, err)
	}
	*b = raw
	return nil
}
