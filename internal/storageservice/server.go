package storageservice

import (
	"context"
	"log"

	"github.com/levensti/diem/internal/accumulator"
	"github.com/levensti/diem/internal/address"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// LedgerReader is the data source a Server reads from. It is satisfied
// by whatever owns the committed ledger state (accumulator + JMT node
// store); this package only shapes requests/responses and enforces caps,
// it does not itself walk the tree or accumulator.
type LedgerReader interface {
	Summary() ServerSummary
	AccountStatesChunk(version address.Version, startKey address.HashValue, limit int) (AccountStateChunkWithProof, error)
	NumberOfAccounts(version address.Version) (uint64, error)
	EpochEndingLedgerInfos(startEpoch, endEpochInclusive uint64) ([]accumulator.LedgerInfo, error)
	TransactionsWithProof(proofVersion, startVersion address.Version, limit int, includeEvents bool) (accumulator.TransactionListWithProof, error)
	TransactionOutputsWithProof(proofVersion, startVersion address.Version, limit int) (accumulator.TransactionOutputListWithProof, error)
}

// Server implements the seven §6.1 operations against a LedgerReader,
// mirroring the teacher's internal/grpc.Server: a thin struct wrapping a
// backing service interface, with handler methods taking context and
// returning (*Response, error). Internal errors are logged here and
// collapsed to a single StorageServiceError before being handed back,
// exactly as the spec requires.
type Server struct {
	reader LedgerReader
	logger *log.Logger
}

// NewServer wraps reader as a Server. logger may be nil to discard
// internal-error diagnostics.
func NewServer(reader LedgerReader, logger *log.Logger) *Server {
	return &Server{reader: reader, logger: logger}
}

func (s *Server) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

func clampLimit(requested uint64) int {
	if requested > MaxChunkSize {
		return MaxChunkSize
	}
	return int(requested)
}

// GetAccountStatesChunkWithProof serves a bounded run of account states.
func (s *Server) GetAccountStatesChunkWithProof(ctx context.Context, req *GetAccountStatesChunkWithProofRequest) (*GetAccountStatesChunkWithProofResponse, error) {
	limit := clampLimit(req.ExpectedNumAccountStates)
	chunk, err := s.reader.AccountStatesChunk(req.Version, req.StartAccountKey, limit)
	if err != nil {
		s.logf("storageservice: account states chunk: %v", err)
		return nil, status.Error(codes.Internal, internalError("failed to read account states chunk").Error())
	}
	return &GetAccountStatesChunkWithProofResponse{Chunk: chunk}, nil
}

// GetEpochEndingLedgerInfos serves the LedgerInfos that close epochs in
// [StartEpoch, ExpectedEndEpoch], capped at MaxChunkSize entries.
func (s *Server) GetEpochEndingLedgerInfos(ctx context.Context, req *GetEpochEndingLedgerInfosRequest) (*GetEpochEndingLedgerInfosResponse, error) {
	endEpoch := req.ExpectedEndEpoch
	if endEpoch-req.StartEpoch+1 > MaxChunkSize {
		endEpoch = req.StartEpoch + MaxChunkSize - 1
	}
	infos, err := s.reader.EpochEndingLedgerInfos(req.StartEpoch, endEpoch)
	if err != nil {
		s.logf("storageservice: epoch ending ledger infos: %v", err)
		return nil, status.Error(codes.Internal, internalError("failed to read epoch ending ledger infos").Error())
	}
	return &GetEpochEndingLedgerInfosResponse{LedgerInfos: infos}, nil
}

// GetNumberOfAccountsAtVersion serves the total account count as of
// version.
func (s *Server) GetNumberOfAccountsAtVersion(ctx context.Context, req *GetNumberOfAccountsAtVersionRequest) (*GetNumberOfAccountsAtVersionResponse, error) {
	n, err := s.reader.NumberOfAccounts(req.Version)
	if err != nil {
		s.logf("storageservice: number of accounts: %v", err)
		return nil, status.Error(codes.Internal, internalError("failed to read account count").Error())
	}
	return &GetNumberOfAccountsAtVersionResponse{NumAccounts: n}, nil
}

// GetServerProtocolVersion returns the single protocol version this
// server speaks.
func (s *Server) GetServerProtocolVersion(ctx context.Context, req *GetServerProtocolVersionRequest) (*GetServerProtocolVersionResponse, error) {
	return &GetServerProtocolVersionResponse{ProtocolVersion: ProtocolVersion}, nil
}

// GetStorageServerSummary returns what this server currently has
// available to serve.
func (s *Server) GetStorageServerSummary(ctx context.Context, req *GetStorageServerSummaryRequest) (*GetStorageServerSummaryResponse, error) {
	return &GetStorageServerSummaryResponse{Summary: s.reader.Summary()}, nil
}

// GetTransactionOutputsWithProof serves a bounded, proven run of
// transaction outputs.
func (s *Server) GetTransactionOutputsWithProof(ctx context.Context, req *GetTransactionOutputsWithProofRequest) (*GetTransactionOutputsWithProofResponse, error) {
	limit := clampLimit(req.ExpectedNumOutputs)
	outputs, err := s.reader.TransactionOutputsWithProof(req.ProofVersion, req.StartVersion, limit)
	if err != nil {
		s.logf("storageservice: transaction outputs with proof: %v", err)
		return nil, status.Error(codes.Internal, internalError("failed to read transaction outputs").Error())
	}
	return &GetTransactionOutputsWithProofResponse{OutputsWithProof: outputs}, nil
}

// GetTransactionsWithProof serves a bounded, proven run of transactions.
func (s *Server) GetTransactionsWithProof(ctx context.Context, req *GetTransactionsWithProofRequest) (*GetTransactionsWithProofResponse, error) {
	limit := clampLimit(req.ExpectedNumTransactions)
	txns, err := s.reader.TransactionsWithProof(req.ProofVersion, req.StartVersion, limit, req.IncludeEvents)
	if err != nil {
		s.logf("storageservice: transactions with proof: %v", err)
		return nil, status.Error(codes.Internal, internalError("failed to read transactions").Error())
	}
	return &GetTransactionsWithProofResponse{TransactionsWithProof: txns}, nil
}
