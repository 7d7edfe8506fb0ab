// Package mempool implements the multi-index prioritized transaction pool:
// a priority-ordered queue for block building, a monotonic timeline for
// downstream consumers, and TTL-based garbage collection, grounded on the
// teacher's internal/core/txq transaction queue (fee-level ordering,
// per-account queuing, parentHash-tiebroken determinism) generalized from
// XRPL's single fee-level model to full account-sequencing and CRSN
// windows.
package mempool

import (
	"errors"
	"time"

	"github.com/levensti/diem/internal/address"
	"github.com/levensti/diem/internal/txn"
)

// SequenceKind distinguishes strictly-sequential account numbering from a
// CRSN (concurrent sequence number) window, the two account-numbering
// schemes the pool must promote readiness under.
type SequenceKind int

const (
	SequenceSequential SequenceKind = iota
	SequenceCRSN
)

// SequenceInfo is the pool's cached view of an account's numbering scheme.
// For Sequential accounts MinSeq is the next sequence number storage
// expects; for CRSN accounts MinNonce/Size describe the open window
// [MinNonce, MinNonce+Size).
type SequenceInfo struct {
	Kind     SequenceKind
	MinSeq   uint64
	MinNonce uint64
	Size     uint64
}

// InWindow reports whether seq falls inside a CRSN account's current
// window; meaningless for Sequential accounts.
func (s SequenceInfo) InWindow(seq uint64) bool {
	return seq >= s.MinNonce && seq < s.MinNonce+s.Size
}

// TimelineStateKind is a transaction's readiness classification.
type TimelineStateKind int

const (
	TimelineNotReady TimelineStateKind = iota
	TimelineReady
	TimelineNonQualified
)

// TimelineState pairs the readiness classification with the timeline id
// assigned at the moment a transaction became Ready (zero until then).
type TimelineState struct {
	Kind       TimelineStateKind
	TimelineID uint64
}

// MempoolTransaction is one pooled transaction plus the bookkeeping the
// indices need: its TTLs, its ranking input, and its current readiness.
type MempoolTransaction struct {
	SignedTxn       txn.SignedTransaction
	Hash            address.HashValue
	Account         address.Address
	Seq             uint64
	SystemExpiry    time.Time // wall-clock TTL, independent of the txn's own expiration field
	ExpirationSecs  uint64    // RawTransaction.ExpirationTimestampSecs, checked against block time
	MaxGasAmount    uint64
	GasUnitPrice    uint64
	RankingScore    uint64 // higher ranks first; derived from gas price, see rankingScore
	TimelineState   TimelineState
	InsertionTiebreak uint64 // monotonic counter, breaks RankingScore ties deterministically
}

// rankingScore derives a transaction's priority-index key from its gas
// price: mempool ordering within an account is by sequence (readiness),
// but across accounts it is the gas price the submitter is willing to pay,
// the same fee-level-first ordering the teacher's candidateLess uses
// (internal/core/txq/txq.go), generalized from a fixed fee schedule to a
// user-supplied gas_unit_price.
func rankingScore(gasUnitPrice uint64) uint64 {
	return gasUnitPrice
}

// InsertResult is the caller-facing outcome of Insert.
type InsertResult int

const (
	Accepted InsertResult = iota
	ResultInvalidUpdate
	ResultTooManyTransactions
	ResultMempoolIsFull
	ResultInvalidSeqNumber
)

func (r InsertResult) String() string {
	switch r {
	case Accepted:
		return "Accepted"
	case ResultInvalidUpdate:
		return "InvalidUpdate"
	case ResultTooManyTransactions:
		return "TooManyTransactions"
	case ResultMempoolIsFull:
		return "MempoolIsFull"
	case ResultInvalidSeqNumber:
		return "InvalidSeqNumber"
	default:
		return "Unknown"
	}
}

var (
	ErrInvalidSeqNumber     = errors.New("mempool: invalid sequence number")
	ErrInvalidUpdate        = errors.New("mempool: transaction update not allowed")
	ErrTooManyTransactions  = errors.New("mempool: too many transactions for account")
	ErrMempoolIsFull        = errors.New("mempool: pool at capacity")
)

// Config bounds pool size.
type Config struct {
	Capacity           int // total transactions across all accounts
	PerAccountCapacity int

	// EnableGasEscalation turns on congestion-based gas price tracking
	// (see GasPriceEscalation). On by default; it only does anything once
	// a caller starts feeding it block-close observations via
	// OnBlockClosed.
	EnableGasEscalation bool
	Escalation          EscalationConfig
}

// DefaultConfig mirrors the teacher's queue size defaults in spirit: a
// generous global cap with a much smaller per-account cap so one account
// cannot monopolize the pool.
func DefaultConfig() Config {
	return Config{
		Capacity:            100_000,
		PerAccountCapacity:  100,
		EnableGasEscalation: true,
		Escalation:          DefaultEscalationConfig(),
	}
}
