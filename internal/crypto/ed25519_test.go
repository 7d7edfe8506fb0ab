package crypto

import (
	"bytes"
	"testing"
)

func testSeed(b byte) []byte {
	seed := make([]byte, SeedSize)
	for i := range seed {
		seed[i] = b
	}
	return seed
}

func TestEd25519SignAndVerifyRoundTrip(t *testing.T) {
	pub, priv, err := GenerateEd25519Keypair(testSeed(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	message := []byte("raw transaction bytes")
	sig := SignEd25519(priv, message)
	if err := VerifyEd25519(pub, message, sig); err != nil {
		t.Errorf("expected valid signature, got %v", err)
	}
}

func TestEd25519VerifyRejectsTamperedMessage(t *testing.T) {
	pub, priv, err := GenerateEd25519Keypair(testSeed(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sig := SignEd25519(priv, []byte("original"))
	if err := VerifyEd25519(pub, []byte("tampered"), sig); err == nil {
		t.Errorf("expected verification failure")
	}
}

func TestMultiEd25519ThresholdVerification(t *testing.T) {
	pub1, priv1, _ := GenerateEd25519Keypair(testSeed(1))
	pub2, priv2, _ := GenerateEd25519Keypair(testSeed(2))
	pub3, _, _ := GenerateEd25519Keypair(testSeed(3))

	pk := MultiEd25519PublicKey{
		PublicKeys: []Ed25519PublicKey{pub1, pub2, pub3},
		Threshold:  2,
	}
	message := []byte("multi-sig message")
	sig1 := SignEd25519(priv1, message)
	sig2 := SignEd25519(priv2, message)

	sig := MultiEd25519Signature{
		Signatures: []Ed25519Signature{sig1, sig2},
		Bitmap:     0b011,
	}
	if err := pk.Verify(message, sig); err != nil {
		t.Errorf("expected threshold to be met: %v", err)
	}
}

func TestMultiEd25519BelowThresholdFails(t *testing.T) {
	pub1, priv1, _ := GenerateEd25519Keypair(testSeed(1))
	pub2, _, _ := GenerateEd25519Keypair(testSeed(2))

	pk := MultiEd25519PublicKey{
		PublicKeys: []Ed25519PublicKey{pub1, pub2},
		Threshold:  2,
	}
	message := []byte("msg")
	sig := MultiEd25519Signature{
		Signatures: []Ed25519Signature{SignEd25519(priv1, message)},
		Bitmap:     0b01,
	}
	if err := pk.Verify(message, sig); err == nil {
		t.Errorf("expected threshold failure")
	}
}

func TestDigest160IsDeterministic(t *testing.T) {
	a := Digest160([]byte("hello"))
	b := Digest160([]byte("hello"))
	if !bytes.Equal(a[:], b[:]) {
		t.Errorf("expected deterministic digest")
	}
}

func TestXorDigest160IsSelfInverse(t *testing.T) {
	a := Digest160([]byte("a"))
	b := Digest160([]byte("b"))
	x := XorDigest160(a, b)
	back := XorDigest160(x, b)
	if back != a {
		t.Errorf("xor is not self-inverse")
	}
}
