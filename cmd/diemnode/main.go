// Command diemnode wires the pieces of this module together for local
// smoke-testing: load config, open a node store, start the mempool
// service's periodic GC, and serve the storage-service gRPC surface and
// a Prometheus /metrics endpoint. It is deliberately thin — this module
// has no consensus or execution engine, so there is no block production
// loop here, only the request-serving surfaces the spec actually defines.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/levensti/diem/internal/accumulator"
	"github.com/levensti/diem/internal/address"
	"github.com/levensti/diem/internal/config"
	"github.com/levensti/diem/internal/jmt/store"
	"github.com/levensti/diem/internal/mempool"
	mempoolservice "github.com/levensti/diem/internal/mempool/service"
	"github.com/levensti/diem/internal/metrics"
	"github.com/levensti/diem/internal/storage/nodestore"
	"github.com/levensti/diem/internal/storageservice"
)

func main() {
	configPath := os.Getenv("DIEM_CONFIG")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("diemnode: failed to load config: %v", err)
	}

	logger := log.New(os.Stderr, "diemnode: ", log.LstdFlags)

	db, closeDB, err := openNodeStore(cfg)
	if err != nil {
		log.Fatalf("diemnode: failed to open node store: %v", err)
	}
	defer closeDB()

	reg := metrics.New()
	treeStore := store.New(db, reg)
	_ = treeStore // exercised by proof-building callers once a block producer exists

	pool := mempool.New(mempool.Config{
		Capacity:            cfg.Mempool.Capacity,
		PerAccountCapacity:  cfg.Mempool.CapacityPerUser,
		EnableGasEscalation: true,
		Escalation:          mempool.DefaultEscalationConfig(),
	})
	mpService := mempoolservice.New(pool, logger, reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	blockTime := func() uint64 { return uint64(time.Now().Unix()) }
	gcDone := mpService.StartPeriodicGC(ctx, cfg.Mempool.TTLCheckInterval, blockTime)

	reader := newEmptyLedgerReader()
	storageServer := storageservice.NewServer(reader, logger)
	grpcServer := storageservice.NewGRPCServer(storageServer)
	go func() {
		if err := grpcServer.Serve("127.0.0.1:9200"); err != nil {
			logger.Printf("storage service grpc server stopped: %v", err)
		}
	}()
	defer grpcServer.Stop()

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", reg.Handler())
		httpServer := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Printf("metrics server stopped: %v", err)
			}
		}()
		defer httpServer.Close()
	}

	logger.Printf("diemnode started: mempool capacity=%d storage backend=%s", cfg.Mempool.Capacity, cfg.Storage.Backend)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Print("shutting down")
	cancel()
	<-gcDone
}

func openNodeStore(cfg *config.Config) (nodestore.Database, func(), error) {
	nsConfig := nodestore.DefaultConfig()
	nsConfig.Backend = cfg.Storage.Backend
	nsConfig.Path = cfg.Storage.Path
	if cfg.Storage.Compressor != "" {
		nsConfig.Compressor = cfg.Storage.Compressor
	}

	backend, err := nodestore.CreateBackend(nsConfig.Backend, nsConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := backend.Open(true); err != nil {
		return nil, nil, err
	}
	db := nodestore.NewDatabase(backend, cfg.JMT.NodeCacheSize, cfg.JMT.NodeCacheTTL)
	return db, func() { db.Close() }, nil
}

// emptyLedgerReader answers every storageservice.LedgerReader query with an
// empty-but-valid response. It stands in for the real committed-state
// reader (accumulator + JMT tree, populated by a block executor) that this
// module's scope does not include, so the gRPC surface can be smoke-tested
// before any consensus/execution layer exists above it.
type emptyLedgerReader struct{}

func newEmptyLedgerReader() *emptyLedgerReader { return &emptyLedgerReader{} }

func (r *emptyLedgerReader) Summary() storageservice.ServerSummary {
	return storageservice.ServerSummary{
		ProtocolVersion: storageservice.ProtocolVersion,
	}
}

func (r *emptyLedgerReader) AccountStatesChunk(version address.Version, startKey address.HashValue, limit int) (storageservice.AccountStateChunkWithProof, error) {
	return storageservice.AccountStateChunkWithProof{Version: version}, nil
}

func (r *emptyLedgerReader) NumberOfAccounts(version address.Version) (uint64, error) {
	return 0, nil
}

func (r *emptyLedgerReader) EpochEndingLedgerInfos(startEpoch, endEpochInclusive uint64) ([]accumulator.LedgerInfo, error) {
	return nil, nil
}

func (r *emptyLedgerReader) TransactionsWithProof(proofVersion, startVersion address.Version, limit int, includeEvents bool) (accumulator.TransactionListWithProof, error) {
	return accumulator.TransactionListWithProof{}, nil
}

func (r *emptyLedgerReader) TransactionOutputsWithProof(proofVersion, startVersion address.Version, limit int) (accumulator.TransactionOutputListWithProof, error) {
	return accumulator.TransactionOutputListWithProof{}, nil
}
