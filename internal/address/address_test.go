package address

import "testing"

func TestParseShortHexLiteral(t *testing.T) {
	a, err := Parse("0x1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.String() != "0x1" {
		t.Errorf("got %s, want 0x1", a.String())
	}
}

func TestParseZeroAddress(t *testing.T) {
	a, err := Parse("0x0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.String() != "0x0" {
		t.Errorf("got %s, want 0x0", a.String())
	}
	if !a.IsZero() {
		t.Errorf("expected zero address")
	}
}

func TestParsePaddedHexLiteral(t *testing.T) {
	padded := "00000000000000000000000000000001"
	a, err := Parse(padded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.String() != "0x1" {
		t.Errorf("got %s, want 0x1", a.String())
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	cases := []string{"", "0xZZ", "not-hex", "0x" + stringsRepeat("a", 33)}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Errorf("expected error parsing %q", c)
		}
	}
}

func stringsRepeat(s string, n int) string {
	out := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

func TestAddressRoundTripsThroughText(t *testing.T) {
	want, err := Parse("0xdeadbeef")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, err := want.MarshalText()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got Address
	if err := got.UnmarshalText(text); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
