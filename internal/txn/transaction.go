package txn

// TransactionKind tags which Transaction variant is present.
type TransactionKind uint8

const (
	TransactionUser TransactionKind = iota
	TransactionGenesis
	TransactionBlockMetadata
)

// BlockMetadata carries the consensus-assigned metadata for a block's
// pseudo-transaction: its id, timestamp, and the proposer/voter set that
// produced it. The consensus engine that fills this in is out of scope;
// the core only stores and hashes it.
type BlockMetadata struct {
	ID                 [32]byte
	Round              uint64
	TimestampUsecs     uint64
	PreviousBlockVotes []bool
	Proposer           [16]byte
}

// Transaction is the unit of ledger inclusion: either a user-submitted
// SignedTransaction, the genesis write set, or a block's metadata entry.
type Transaction struct {
	Kind          TransactionKind
	UserTxn       SignedTransaction
	GenesisWrites WriteSetPayload
	BlockMeta     BlockMetadata
}

// TransactionStatusKind tags which TransactionStatus variant is present.
type TransactionStatusKind uint8

const (
	StatusKeep TransactionStatusKind = iota
	StatusDiscard
	StatusRetry
)

// KeptVMStatus is the VM-reported outcome of a kept transaction (success or
// a recorded on-chain abort/failure code). The VM itself is out of scope;
// the core treats this as an opaque, comparable status code plus message.
type KeptVMStatus struct {
	Code    uint64
	Message string
}

// DiscardCode is the reason a transaction was discarded before or during
// execution and will never be included on-chain.
type DiscardCode uint64

// TransactionStatus is the outcome recorded for a transaction after
// execution: kept (with its VM status), discarded outright, or eligible to
// be retried in a later block (e.g. because of a sequence-number gap
// observed mid-block).
type TransactionStatus struct {
	Kind    TransactionStatusKind
	Keep    KeptVMStatus
	Discard DiscardCode
}

// IsKept reports whether the transaction was kept (and so contributed an
// output), as opposed to discarded or retried.
func (s TransactionStatus) IsKept() bool { return s.Kind == StatusKeep }

// Event is a single effect emitted during execution, destined for the
// per-transaction event accumulator (see internal/accumulator).
type Event struct {
	Key  [8]byte
	Seq  uint64
	Data []byte
}

// TransactionOutput is everything execution produced for one transaction:
// its write set, emitted events, gas charged, and final status.
type TransactionOutput struct {
	WriteSet ChangeSet
	Events   []Event
	GasUsed  uint64
	Status   TransactionStatus
}
