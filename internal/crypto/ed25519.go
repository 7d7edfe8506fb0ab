// Package crypto implements the signature schemes used to authenticate
// transactions: plain Ed25519 and a k-of-n MultiEd25519 threshold scheme.
// The multi-agent signing message is assembled in package txn, which
// verifies it with these schemes.
package crypto

import (
	"crypto/ed25519"
	"errors"
	"fmt"
)

// PublicKeySize and SignatureSize mirror the stdlib Ed25519 sizes; named
// here so callers decoding wire bytes don't reach into crypto/ed25519
// themselves.
const (
	PublicKeySize = ed25519.PublicKeySize
	SignatureSize = ed25519.SignatureSize
	SeedSize      = ed25519.SeedSize
)

var (
	// ErrInvalidKeyLength is returned when a public key is not PublicKeySize bytes.
	ErrInvalidKeyLength = errors.New("crypto: invalid ed25519 public key length")
	// ErrInvalidSignatureLength is returned when a signature is not SignatureSize bytes.
	ErrInvalidSignatureLength = errors.New("crypto: invalid ed25519 signature length")
	// ErrSignatureVerificationFailed is the single failure reason for any
	// rejected signature — per §7 verification failures are never retried
	// or partially accepted, so no finer-grained reason is exposed.
	ErrSignatureVerificationFailed = errors.New("crypto: signature verification failed")
)

// Ed25519PublicKey is a 32-byte Ed25519 public key.
type Ed25519PublicKey [PublicKeySize]byte

// Ed25519Signature is a 64-byte Ed25519 signature.
type Ed25519Signature [SignatureSize]byte

// GenerateEd25519Keypair derives a keypair from a 32-byte seed, used by test
// fixtures and account-creation tooling.
func GenerateEd25519Keypair(seed []byte) (Ed25519PublicKey, ed25519.PrivateKey, error) {
	if len(seed) != SeedSize {
		return Ed25519PublicKey{}, nil, fmt.Errorf("crypto: seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	var pub Ed25519PublicKey
	copy(pub[:], priv.Public().(ed25519.PublicKey))
	return pub, priv, nil
}

// SignEd25519 signs message with priv, returning the raw 64-byte signature.
func SignEd25519(priv ed25519.PrivateKey, message []byte) Ed25519Signature {
	var sig Ed25519Signature
	copy(sig[:], ed25519.Sign(priv, message))
	return sig
}

// VerifyEd25519 checks sig over message under pk. Returns
// ErrSignatureVerificationFailed on any mismatch, never a finer-grained reason.
func VerifyEd25519(pk Ed25519PublicKey, message []byte, sig Ed25519Signature) error {
	if !ed25519.Verify(pk[:], message, sig[:]) {
		return ErrSignatureVerificationFailed
	}
	return nil
}

// MultiEd25519PublicKey is a k-of-n threshold public key: an ordered set of
// member keys plus the signing threshold.
type MultiEd25519PublicKey struct {
	PublicKeys []Ed25519PublicKey
	Threshold  uint8
}

// MultiEd25519Signature pairs each present signature with a bitmap
// identifying which member key produced it, so verification doesn't have to
// brute-force match signatures to keys.
type MultiEd25519Signature struct {
	Signatures []Ed25519Signature
	Bitmap     uint32 // bit i set iff PublicKeys[i] signed
}

var (
	// ErrThresholdNotMet is returned when fewer valid signatures are present
	// than the key's threshold requires.
	ErrThresholdNotMet = errors.New("crypto: multi-ed25519 threshold not met")
	// ErrBitmapSignatureMismatch is returned when the signature count
	// doesn't match the number of bits set in the bitmap.
	ErrBitmapSignatureMismatch = errors.New("crypto: multi-ed25519 signature count does not match bitmap")
)

// Verify checks a MultiEd25519Signature against message, requiring every
// bitmap-indicated signature to verify against its corresponding member
// key and at least Threshold such signatures to be present.
func (pk MultiEd25519PublicKey) Verify(message []byte, sig MultiEd25519Signature) error {
	if bitsSet(sig.Bitmap) != len(sig.Signatures) {
		return ErrBitmapSignatureMismatch
	}
	var verified int
	sigIdx := 0
	for i := 0; i < len(pk.PublicKeys); i++ {
		if sig.Bitmap&(1<<uint(i)) == 0 {
			continue
		}
		if err := VerifyEd25519(pk.PublicKeys[i], message, sig.Signatures[sigIdx]); err != nil {
			return ErrSignatureVerificationFailed
		}
		sigIdx++
		verified++
	}
	if verified < int(pk.Threshold) {
		return ErrThresholdNotMet
	}
	return nil
}

func bitsSet(bitmap uint32) int {
	count := 0
	for bitmap != 0 {
		bitmap &= bitmap - 1
		count++
	}
	return count
}
