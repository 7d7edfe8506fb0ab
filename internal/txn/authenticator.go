package txn

import (
	"errors"
	"fmt"

	"github.com/levensti/diem/internal/address"
	"github.com/levensti/diem/internal/crypto"
	"github.com/levensti/diem/internal/protocol"
)

// AuthenticatorKind tags which Authenticator variant is present.
type AuthenticatorKind uint8

const (
	AuthEd25519 AuthenticatorKind = iota
	AuthMultiEd25519
	AuthMultiAgent
)

// AccountAuthenticator is a single account's half of an authenticator: a
// plain Ed25519 signature or a MultiEd25519 threshold signature. It's the
// per-signer shape MultiAgent carries one of per secondary signer.
type AccountAuthenticator struct {
	Kind       AuthenticatorKind // AuthEd25519 or AuthMultiEd25519 only
	Ed25519PK  crypto.Ed25519PublicKey
	Ed25519Sig crypto.Ed25519Signature
	MultiPK    crypto.MultiEd25519PublicKey
	MultiSig   crypto.MultiEd25519Signature
}

// Verify checks this authenticator's signature against message.
func (a AccountAuthenticator) Verify(message []byte) error {
	switch a.Kind {
	case AuthEd25519:
		return crypto.VerifyEd25519(a.Ed25519PK, message, a.Ed25519Sig)
	case AuthMultiEd25519:
		return a.MultiPK.Verify(message, a.MultiSig)
	default:
		return fmt.Errorf("account authenticator: unsupported kind %d", a.Kind)
	}
}

// Authenticator is the tagged union a SignedTransaction carries: a single
// Ed25519 or MultiEd25519 signature from the sender, or a MultiAgent bundle
// combining the sender's authenticator with one per secondary signer.
type Authenticator struct {
	Kind                    AuthenticatorKind
	Ed25519PK               crypto.Ed25519PublicKey
	Ed25519Sig              crypto.Ed25519Signature
	MultiPK                 crypto.MultiEd25519PublicKey
	MultiSig                crypto.MultiEd25519Signature
	Sender                  AccountAuthenticator
	SecondaryAddresses      []address.Address
	SecondaryAuthenticators []AccountAuthenticator
}

var (
	// ErrSecondaryLengthMismatch is returned when a MultiAgent authenticator's
	// secondary addresses and secondary authenticators aren't the same length.
	ErrSecondaryLengthMismatch = errors.New("txn: multi-agent secondary_authenticators length must equal secondary_addresses length")
	// ErrDuplicateSigner is returned when the sender address collides with a
	// secondary signer address, or two secondary signers collide.
	ErrDuplicateSigner = errors.New("txn: duplicate signer address")
)

// buildMultiAgentMessage reproduces the signing message for
// RawTransactionWithData::MultiAgent{raw_txn, secondary_signer_addresses}:
// the domain prefix, the raw transaction's own encoding, then each secondary
// address in order. This is the generalization of the teacher's
// BuildMultiSigningData/FinishMultiSigningData pair (prepend a domain
// prefix, append the identities that must not be substitutable) to a
// multi-party signer set instead of a single extra account id.
func buildMultiAgentMessage(rawTxn RawTransaction, secondaryAddresses []address.Address) []byte {
	body := rawTxn.Encode()
	for _, a := range secondaryAddresses {
		body = append(body, a[:]...)
	}
	return crypto.HashWithPrefix(protocol.HashPrefixMultiAgentRawTxn, body)[:]
}

// checkDuplicateSigners verifies sender and every secondary address are
// pairwise distinct.
func checkDuplicateSigners(sender address.Address, secondary []address.Address) error {
	seen := map[address.Address]bool{sender: true}
	for _, a := range secondary {
		if seen[a] {
			return fmt.Errorf("%w: %s", ErrDuplicateSigner, a)
		}
		seen[a] = true
	}
	return nil
}
