package accumulator

import (
	"bytes"
	"encoding/binary"

	"github.com/levensti/diem/internal/address"
	"github.com/levensti/diem/internal/crypto"
	"github.com/levensti/diem/internal/protocol"
	"github.com/levensti/diem/internal/txn"
)

// TransactionInfo is the leaf the ledger's transaction accumulator is built
// over: everything downstream proof verification needs to know about one
// executed transaction without re-executing it.
type TransactionInfo struct {
	TransactionHash address.HashValue
	StateRootHash   address.HashValue
	EventRootHash   address.HashValue
	GasUsed         uint64
	Status          txn.TransactionStatus
}

// Encode is the canonical byte form hashed to produce the accumulator leaf.
func (ti TransactionInfo) Encode() []byte {
	buf := bytes.NewBuffer(nil)
	buf.Write(ti.TransactionHash[:])
	buf.Write(ti.StateRootHash[:])
	buf.Write(ti.EventRootHash[:])
	binary.Write(buf, binary.LittleEndian, ti.GasUsed)
	buf.WriteByte(byte(ti.Status.Kind))
	return buf.Bytes()
}

// Hash computes the domain-separated leaf hash of this TransactionInfo,
// what actually gets folded into the transaction accumulator.
func (ti TransactionInfo) Hash() address.HashValue {
	return crypto.HashWithPrefix(protocol.HashPrefixTransactionInfo, ti.Encode())
}

// TransactionWithProof bundles a user transaction, its info, optional
// events, and the inclusion proof of that info in the ledger's transaction
// accumulator.
type TransactionWithProof struct {
	Version     address.Version
	Transaction txn.SignedTransaction
	Info        TransactionInfo
	Events      []txn.Event // present iff the caller requested events
	Proof       Proof
}

// VerifyUserTxn checks all six conditions §4.3 requires: version, sender,
// sequence number, and transaction hash match; the reconstructed event root
// (when events are present) equals Info.EventRootHash; and the inclusion
// proof checks against ledgerInfo at version.
func (t TransactionWithProof) VerifyUserTxn(ledgerInfo LedgerInfo, version address.Version, sender address.Address, sequenceNumber uint64) error {
	if t.Version != version {
		return errMismatch("version")
	}
	if t.Transaction.RawTxn.Sender != sender {
		return errMismatch("sender")
	}
	if t.Transaction.RawTxn.SequenceNumber != sequenceNumber {
		return errMismatch("sequence_number")
	}
	if t.Transaction.TransactionHash() != t.Info.TransactionHash {
		return errMismatch("transaction_hash")
	}
	if t.Events != nil {
		eventBytes := make([][]byte, len(t.Events))
		for i, e := range t.Events {
			eventBytes[i] = encodeEvent(e)
		}
		if EventRoot(eventBytes) != t.Info.EventRootHash {
			return errMismatch("event_root_hash")
		}
	}
	leaf := t.Info.Hash()
	if !Verify(leaf, leafIndexForVersion(version, ledgerInfo), int(ledgerInfo.Version)+1, t.Proof, ledgerInfo.TransactionAccumulatorHash) {
		return errMismatch("inclusion_proof")
	}
	return nil
}

func encodeEvent(e txn.Event) []byte {
	buf := bytes.NewBuffer(nil)
	buf.Write(e.Key[:])
	binary.Write(buf, binary.LittleEndian, e.Seq)
	buf.Write(e.Data)
	return buf.Bytes()
}

// leafIndexForVersion maps a ledger version to its position in the
// transaction accumulator. Versions are assigned densely starting at 0, so
// a transaction's own version is its leaf index.
func leafIndexForVersion(version address.Version, _ LedgerInfo) int {
	return int(version)
}

func errMismatch(field string) error {
	return &VerifyError{Field: field}
}

// VerifyError is the single failure reason returned by every verification
// contract in this package: per §7, proof failures are never retried or
// partially accepted, so one typed error carrying the offending field is
// all downstream callers get.
type VerifyError struct {
	Field string
}

func (e *VerifyError) Error() string {
	return "accumulator: verification failed: " + e.Field + " mismatch"
}
