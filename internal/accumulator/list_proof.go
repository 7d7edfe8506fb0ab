package accumulator

import (
	"github.com/levensti/diem/internal/address"
	"github.com/levensti/diem/internal/txn"
)

// TransactionListWithProof bundles a contiguous run of transactions
// starting at FirstVersion with one TransactionInfo per transaction and a
// proof that the info list is a contiguous slice of the ledger's
// transaction accumulator.
type TransactionListWithProof struct {
	FirstVersion *address.Version // nil iff the list (and infos) are empty
	Transactions []txn.SignedTransaction
	Infos        []TransactionInfo
	EventLists   [][]txn.Event // nil iff events weren't requested; else one sublist per transaction
	Proofs       []Proof       // one inclusion proof per transaction info
}

// Verify checks: the list's first version equals firstVersion (or both are
// absent for an empty list); the transaction and info counts match; each
// transaction's hash matches its paired info; every info verifies against
// ledgerInfo; and, if events were supplied, each transaction's event
// sublist reconstructs to its info's event root.
func (l TransactionListWithProof) Verify(ledgerInfo LedgerInfo, firstVersion *address.Version) error {
	bothAbsent := l.FirstVersion == nil && firstVersion == nil
	if !bothAbsent {
		if l.FirstVersion == nil || firstVersion == nil || *l.FirstVersion != *firstVersion {
			return errMismatch("first_version")
		}
	}
	if len(l.Transactions) != len(l.Infos) {
		return errMismatch("transaction_count")
	}
	if len(l.Proofs) != len(l.Infos) {
		return errMismatch("proof_count")
	}
	if l.EventLists != nil && len(l.EventLists) != len(l.Transactions) {
		return errMismatch("event_list_count")
	}

	for i, t := range l.Transactions {
		if t.TransactionHash() != l.Infos[i].TransactionHash {
			return errMismatch("transaction_hash")
		}

		var version address.Version
		if l.FirstVersion != nil {
			version = *l.FirstVersion + address.Version(i)
		}
		leaf := l.Infos[i].Hash()
		if !Verify(leaf, leafIndexForVersion(version, ledgerInfo), int(ledgerInfo.Version)+1, l.Proofs[i], ledgerInfo.TransactionAccumulatorHash) {
			return errMismatch("inclusion_proof")
		}

		if l.EventLists != nil {
			eventBytes := make([][]byte, len(l.EventLists[i]))
			for j, e := range l.EventLists[i] {
				eventBytes[j] = encodeEvent(e)
			}
			if EventRoot(eventBytes) != l.Infos[i].EventRootHash {
				return errMismatch("event_root_hash")
			}
		}
	}
	return nil
}

// TransactionOutputListWithProof is analogous to TransactionListWithProof
// but carries executor outputs instead of the signed transactions
// themselves. It cannot attest that the outputs are correct — only replay
// can do that — so Verify checks exactly what it's able to: the infos and
// their event roots are internally consistent and properly included.
type TransactionOutputListWithProof struct {
	FirstVersion *address.Version
	Outputs      []txn.TransactionOutput
	Infos        []TransactionInfo
	Proofs       []Proof
}

// Verify checks the info/proof consistency described on the type; it does
// not and cannot verify that Outputs themselves are correct.
func (l TransactionOutputListWithProof) Verify(ledgerInfo LedgerInfo, firstVersion *address.Version) error {
	bothAbsent := l.FirstVersion == nil && firstVersion == nil
	if !bothAbsent {
		if l.FirstVersion == nil || firstVersion == nil || *l.FirstVersion != *firstVersion {
			return errMismatch("first_version")
		}
	}
	if len(l.Outputs) != len(l.Infos) || len(l.Proofs) != len(l.Infos) {
		return errMismatch("list_length")
	}
	for i, o := range l.Outputs {
		eventBytes := make([][]byte, len(o.Events))
		for j, e := range o.Events {
			eventBytes[j] = encodeEvent(e)
		}
		if EventRoot(eventBytes) != l.Infos[i].EventRootHash {
			return errMismatch("event_root_hash")
		}

		var version address.Version
		if l.FirstVersion != nil {
			version = *l.FirstVersion + address.Version(i)
		}
		leaf := l.Infos[i].Hash()
		if !Verify(leaf, leafIndexForVersion(version, ledgerInfo), int(ledgerInfo.Version)+1, l.Proofs[i], ledgerInfo.TransactionAccumulatorHash) {
			return errMismatch("inclusion_proof")
		}
	}
	return nil
}

// AccountTransactionsWithProof bundles every user transaction an account
// submitted in the sequence-number window [StartSeq, StartSeq+len), each
// with its own inclusion proof.
type AccountTransactionsWithProof struct {
	Account      address.Address
	StartSeq     uint64
	Transactions []TransactionWithProof
}

// Verify checks: count <= limit; each transaction is a user transaction
// from account with seq = start_seq + i; each version <= ledgerVersion;
// events are present iff includeEvents was requested; and each element
// verifies via VerifyUserTxn.
func (a AccountTransactionsWithProof) Verify(ledgerInfo LedgerInfo, account address.Address, startSeq uint64, limit int, includeEvents bool, ledgerVersion address.Version) error {
	if a.Account != account || a.StartSeq != startSeq {
		return errMismatch("account_or_start_seq")
	}
	if len(a.Transactions) > limit {
		return errMismatch("count_exceeds_limit")
	}
	for i, t := range a.Transactions {
		if t.Transaction.RawTxn.Sender != account {
			return errMismatch("sender")
		}
		if t.Version > ledgerVersion {
			return errMismatch("version_exceeds_ledger")
		}
		if includeEvents && t.Events == nil {
			return errMismatch("events_missing")
		}
		if !includeEvents && t.Events != nil {
			return errMismatch("events_unexpected")
		}
		seq := startSeq + uint64(i)
		if err := t.VerifyUserTxn(ledgerInfo, t.Version, account, seq); err != nil {
			return err
		}
	}
	return nil
}
