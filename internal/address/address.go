// Package address implements the primitive wire/text codecs shared across
// the core: 16-byte account addresses, 32-byte hashes, monotonic versions,
// and the 4-bit nibble paths the Jellyfish tree keys its nodes with.
package address

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Size is the length of an Address in bytes.
const Size = 16

// ErrInvalidAddress is returned for any string that is neither a short
// hex-literal (0x-prefixed, up to 32 hex digits) nor a zero-padded 32-hex-digit
// literal.
var ErrInvalidAddress = errors.New("invalid account address")

// Address is a 16-byte account identifier.
type Address [Size]byte

// Parse accepts either a "0x"-prefixed hex literal (shortest form, up to 32
// hex digits, "0x0" legal) or a bare 32-hex-digit padded literal. Any other
// shape is rejected with a uniform diagnostic naming the offending input.
func Parse(s string) (Address, error) {
	var body string
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		body = s[2:]
		if len(body) == 0 || len(body) > 2*Size {
			return Address{}, fmt.Errorf("%w: %s", ErrInvalidAddress, s)
		}
	case len(s) == 2*Size:
		body = s
	default:
		return Address{}, fmt.Errorf("%w: %s", ErrInvalidAddress, s)
	}

	if !isHex(body) {
		return Address{}, fmt.Errorf("%w: %s", ErrInvalidAddress, s)
	}

	// Left-pad to the full 32 hex digits so odd-length literals decode cleanly.
	if len(body)%2 == 1 {
		body = "0" + body
	}
	padded := strings.Repeat("0", 2*Size-len(body)) + body

	raw, err := hex.DecodeString(padded)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %s", ErrInvalidAddress, s)
	}

	var a Address
	copy(a[:], raw)
	return a, nil
}

func isHex(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// String renders the shortest hex literal, leading zeros stripped, the way
// to_hex_literal does: "0x1", not "0x01". The all-zero address is "0x0".
func (a Address) String() string {
	full := hex.EncodeToString(a[:])
	trimmed := strings.TrimLeft(full, "0")
	if trimmed == "" {
		return "0x0"
	}
	return "0x" + trimmed
}

// IsZero reports whether this is the all-zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}

// MarshalText implements encoding.TextMarshaler so addresses round-trip
// through JSON as their canonical hex literal.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
