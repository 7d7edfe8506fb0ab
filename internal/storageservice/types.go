// Package storageservice is the read-only data-and-proofs surface other
// nodes and light clients query against: account state chunks, epoch
// boundaries, and transaction/output ranges, each with an inclusion
// proof against a ledger's accumulator or tree root. The request/
// response shapes and handler signatures follow the teacher's own
// internal/grpc package (plain Go request/response structs, handler
// methods taking context.Context and returning (*Response, error),
// google.golang.org/grpc/status for error mapping) rather than a
// generated-protobuf service — the teacher's own grpc server never
// registers a codegen'd ServiceDesc either, it stands up grpc.NewServer
// and exposes handlers directly.
package storageservice

import (
	"github.com/levensti/diem/internal/accumulator"
	"github.com/levensti/diem/internal/address"
)

// ProtocolVersion is the single protocol version this server speaks.
const ProtocolVersion = 1

// MaxChunkSize bounds every request's expected_num_* field: accounts,
// transactions, outputs, and epoch-ending ledger infos all cap at 1000
// per response.
const MaxChunkSize = 1000

// ErrorKind is the one error kind ever transmitted to a caller: the
// spec collapses every internal failure into InternalError before
// transmission, logging the real cause server-side.
type ErrorKind int

const (
	InternalError ErrorKind = iota
)

// StorageServiceError is the wire-visible error shape.
type StorageServiceError struct {
	Kind    ErrorKind
	Message string
}

func (e *StorageServiceError) Error() string { return e.Message }

func internalError(msg string) *StorageServiceError {
	return &StorageServiceError{Kind: InternalError, Message: msg}
}

// GetAccountStatesChunkWithProofRequest asks for a run of account states
// at version, beginning at (or just after) startAccountKey.
type GetAccountStatesChunkWithProofRequest struct {
	Version                  address.Version
	StartAccountKey          address.HashValue
	ExpectedNumAccountStates uint64
}

// AccountStateChunkWithProof is a run of account states (AccountKeys with
// their AccountBlobs) at Version; FirstKeyProof and LastKeyProof carry
// what a caller uses to verify the chunk is a
// contiguous, non-overlapping run against the tree's root at Version.
type AccountStateChunkWithProof struct {
	Version       address.Version
	AccountKeys   []address.HashValue
	AccountBlobs  [][]byte
	RootHash      address.HashValue
	FirstKeyProof jmtProofPlaceholder
	LastKeyProof  jmtProofPlaceholder
}

// jmtProofPlaceholder stands in for the sibling-hash list a range proof
// carries; the range-proof construction itself lives with the tree
// traversal layer once written, not in this façade.
type jmtProofPlaceholder struct {
	Siblings []address.HashValue
}

type GetAccountStatesChunkWithProofResponse struct {
	Chunk AccountStateChunkWithProof
}

// GetEpochEndingLedgerInfosRequest asks for the LedgerInfos that close
// epochs in [StartEpoch, ExpectedEndEpoch].
type GetEpochEndingLedgerInfosRequest struct {
	StartEpoch       uint64
	ExpectedEndEpoch uint64
}

type GetEpochEndingLedgerInfosResponse struct {
	LedgerInfos []accumulator.LedgerInfo
}

type GetNumberOfAccountsAtVersionRequest struct {
	Version address.Version
}

type GetNumberOfAccountsAtVersionResponse struct {
	NumAccounts uint64
}

type GetServerProtocolVersionRequest struct{}

type GetServerProtocolVersionResponse struct {
	ProtocolVersion uint64
}

// ServerSummary is a snapshot of what this server currently has
// available to serve, the "can I even ask you this" preflight clients
// use before issuing a real request.
type ServerSummary struct {
	ProtocolVersion  uint64
	LatestLedgerInfo *accumulator.LedgerInfo
	LowestVersion    address.Version
	HighestVersion   address.Version
}

type GetStorageServerSummaryRequest struct{}

type GetStorageServerSummaryResponse struct {
	Summary ServerSummary
}

type GetTransactionOutputsWithProofRequest struct {
	ProofVersion      address.Version
	StartVersion      address.Version
	ExpectedNumOutputs uint64
}

type GetTransactionOutputsWithProofResponse struct {
	OutputsWithProof accumulator.TransactionOutputListWithProof
}

type GetTransactionsWithProofRequest struct {
	ProofVersion            address.Version
	StartVersion            address.Version
	ExpectedNumTransactions uint64
	IncludeEvents           bool
}

type GetTransactionsWithProofResponse struct {
	TransactionsWithProof accumulator.TransactionListWithProof
}
