package txn

import (
	"fmt"

	"github.com/levensti/diem/internal/address"
	"github.com/levensti/diem/internal/crypto"
	"github.com/levensti/diem/internal/protocol"
)

// SignedTransaction pairs a RawTransaction with its Authenticator. It is
// the unverified wire shape: nothing may act on its effects until
// CheckSignature has produced a SignatureCheckedTransaction.
type SignedTransaction struct {
	RawTxn        RawTransaction
	Authenticator Authenticator
}

// SignatureCheckedTransaction wraps a SignedTransaction whose signatures
// have been verified. It is a distinct type on purpose: nothing downstream
// can accidentally operate on a SignedTransaction that was never checked,
// because there is no implicit conversion between the two.
type SignatureCheckedTransaction struct {
	inner SignedTransaction
}

// Unchecked recovers the underlying SignedTransaction, for code paths (like
// re-serialization) that don't care about verification state.
func (s SignatureCheckedTransaction) Unchecked() SignedTransaction { return s.inner }

// RawTxn is a convenience accessor mirroring SignedTransaction's field.
func (s SignatureCheckedTransaction) RawTxn() RawTransaction { return s.inner.RawTxn }

// TransactionHash returns the domain-separated id for the signed
// transaction as a whole, independent of its RawTransaction signing hash.
func (t SignedTransaction) TransactionHash() address.HashValue {
	body := append(t.RawTxn.Encode(), encodeAuthenticator(t.Authenticator)...)
	return crypto.HashWithPrefix(protocol.HashPrefixTransactionID, body)
}

// CheckSignature verifies every signature on t and rejects duplicate
// signer addresses, returning a SignatureCheckedTransaction only when both
// checks pass. The input SignedTransaction is consumed: the only path to a
// SignatureCheckedTransaction is through this function.
func CheckSignature(t SignedTransaction) (SignatureCheckedTransaction, error) {
	switch t.Authenticator.Kind {
	case AuthEd25519:
		msg := t.RawTxn.Hash()
		if err := crypto.VerifyEd25519(t.Authenticator.Ed25519PK, msg[:], t.Authenticator.Ed25519Sig); err != nil {
			return SignatureCheckedTransaction{}, fmt.Errorf("txn: sender signature check failed: %w", err)
		}
	case AuthMultiEd25519:
		msg := t.RawTxn.Hash()
		if err := t.Authenticator.MultiPK.Verify(msg[:], t.Authenticator.MultiSig); err != nil {
			return SignatureCheckedTransaction{}, fmt.Errorf("txn: sender multi-signature check failed: %w", err)
		}
	case AuthMultiAgent:
		if err := checkDuplicateSigners(t.RawTxn.Sender, t.Authenticator.SecondaryAddresses); err != nil {
			return SignatureCheckedTransaction{}, err
		}
		if len(t.Authenticator.SecondaryAuthenticators) != len(t.Authenticator.SecondaryAddresses) {
			return SignatureCheckedTransaction{}, ErrSecondaryLengthMismatch
		}
		msg := buildMultiAgentMessage(t.RawTxn, t.Authenticator.SecondaryAddresses)
		if err := t.Authenticator.Sender.Verify(msg); err != nil {
			return SignatureCheckedTransaction{}, fmt.Errorf("txn: sender signature check failed: %w", err)
		}
		for i, auth := range t.Authenticator.SecondaryAuthenticators {
			if err := auth.Verify(msg); err != nil {
				return SignatureCheckedTransaction{}, fmt.Errorf("txn: secondary signer %s signature check failed: %w", t.Authenticator.SecondaryAddresses[i], err)
			}
		}
	default:
		return SignatureCheckedTransaction{}, fmt.Errorf("txn: unsupported authenticator kind %d", t.Authenticator.Kind)
	}
	return SignatureCheckedTransaction{inner: t}, nil
}

func encodeAuthenticator(a Authenticator) []byte {
	var buf []byte
	buf = append(buf, byte(a.Kind))
	switch a.Kind {
	case AuthEd25519:
		buf = append(buf, a.Ed25519PK[:]...)
		buf = append(buf, a.Ed25519Sig[:]...)
	case AuthMultiEd25519:
		for _, pk := range a.MultiPK.PublicKeys {
			buf = append(buf, pk[:]...)
		}
		buf = append(buf, a.MultiPK.Threshold)
		for _, sig := range a.MultiSig.Signatures {
			buf = append(buf, sig[:]...)
		}
	case AuthMultiAgent:
		buf = append(buf, encodeAccountAuthenticator(a.Sender)...)
		for _, addr := range a.SecondaryAddresses {
			buf = append(buf, addr[:]...)
		}
		for _, aa := range a.SecondaryAuthenticators {
			buf = append(buf, encodeAccountAuthenticator(aa)...)
		}
	}
	return buf
}

func encodeAccountAuthenticator(a AccountAuthenticator) []byte {
	var buf []byte
	buf = append(buf, byte(a.Kind))
	switch a.Kind {
	case AuthEd25519:
		buf = append(buf, a.Ed25519PK[:]...)
		buf = append(buf, a.Ed25519Sig[:]...)
	case AuthMultiEd25519:
		for _, pk := range a.MultiPK.PublicKeys {
			buf = append(buf, pk[:]...)
		}
		buf = append(buf, a.MultiPK.Threshold)
		for _, sig := range a.MultiSig.Signatures {
			buf = append(buf, sig[:]...)
		}
	}
	return buf
}

// FormatForClient renders a human-readable summary for logs. getName maps a
// ModuleID/Script/etc to a display name; this is advisory only and is not
// part of any other component's contract.
func (t SignedTransaction) FormatForClient(getName func(ModuleID) string) string {
	switch t.RawTxn.Payload.Kind {
	case PayloadScriptFunction:
		sf := t.RawTxn.Payload.ScriptFunction
		name := sf.Function
		if getName != nil {
			name = fmt.Sprintf("%s::%s", getName(sf.Module), sf.Function)
		}
		return fmt.Sprintf("SignedTransaction { sender: %s, sequence_number: %d, payload: ScriptFunction(%s) }",
			t.RawTxn.Sender, t.RawTxn.SequenceNumber, name)
	case PayloadScript:
		return fmt.Sprintf("SignedTransaction { sender: %s, sequence_number: %d, payload: Script }",
			t.RawTxn.Sender, t.RawTxn.SequenceNumber)
	case PayloadModule:
		return fmt.Sprintf("SignedTransaction { sender: %s, sequence_number: %d, payload: Module }",
			t.RawTxn.Sender, t.RawTxn.SequenceNumber)
	case PayloadWriteSet:
		return fmt.Sprintf("SignedTransaction { sender: %s, sequence_number: %d, payload: WriteSet }",
			t.RawTxn.Sender, t.RawTxn.SequenceNumber)
	default:
		return fmt.Sprintf("SignedTransaction { sender: %s, sequence_number: %d, payload: unknown }",
			t.RawTxn.Sender, t.RawTxn.SequenceNumber)
	}
}
