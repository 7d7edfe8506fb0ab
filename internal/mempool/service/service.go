// Package service is the mempool's façade: the only surface other
// subsystems (block proposal, RPC admission handlers, ledger-commit
// notification) are meant to call. It owns GC scheduling and admission
// logging so callers never touch the underlying mempool.Mempool
// directly, the same "one entry point per subsystem" shape the teacher
// gives its own internal/core/txq consumers through internal/cli/server.go.
package service

import (
	"context"
	"log"
	"time"

	"github.com/levensti/diem/internal/address"
	"github.com/levensti/diem/internal/crypto"
	"github.com/levensti/diem/internal/mempool"
	"github.com/levensti/diem/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// Service wraps a mempool.Mempool with admission logging and grouped GC.
type Service struct {
	pool    *mempool.Mempool
	logger  *log.Logger
	metrics *metrics.Registry
}

// New builds a Service around pool. logger may be nil, in which case
// admission rejections are simply not logged — mirrors the teacher's
// optional *log.Logger plumbed through internal/cli/server.go. reg may
// also be nil to skip instrumentation entirely.
func New(pool *mempool.Mempool, logger *log.Logger, reg *metrics.Registry) *Service {
	return &Service{pool: pool, logger: logger, metrics: reg}
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

// Submit admits a transaction. It is the façade's counterpart to
// mempool.Mempool.Insert, adding rejection diagnostics and metrics.
func (s *Service) Submit(t *mempool.MempoolTransaction) mempool.InsertResult {
	result := s.pool.Insert(t)
	if s.metrics != nil {
		s.metrics.MempoolInsertsTotal.WithLabelValues(result.String()).Inc()
		s.metrics.MempoolSize.Set(float64(s.pool.Size()))
	}
	if result != mempool.Accepted {
		s.logf("mempool: rejected hash=%x account=%x seq=%d reason=%s",
			t.Hash, t.Account, t.Seq, result)
	}
	return result
}

// NotifyAccountState updates the façade's cached view of an account's
// numbering scheme (typically called after a ledger commit) and
// recomputes readiness, matching §4.5.3.
func (s *Service) NotifyAccountState(acct address.Address, seqInfo mempool.SequenceInfo) {
	s.pool.UpdateAccountSequenceInfo(acct, seqInfo)
}

// GetBlock proposes up to batchSize transactions, excluding any hash
// already present in seen.
func (s *Service) GetBlock(batchSize int, seen map[address.HashValue]struct{}) []*mempool.MempoolTransaction {
	return s.pool.GetBlock(batchSize, seen)
}

// SetParentHash salts the tiebreak GetBlock uses when two transactions
// carry the same ranking score, typically called once per proposer round
// with the parent block's hash.
func (s *Service) SetParentHash(parentHash [crypto.DigestSize]byte) {
	s.pool.SetParentHash(parentHash)
}

// Commit removes a successfully applied transaction from the pool.
func (s *Service) Commit(acct address.Address, seq uint64) {
	s.pool.RemoveTransaction(acct, seq, false)
}

// RequiredGasPrice reports the gas-unit-price floor a transaction must pay
// to bypass the mempool and land directly in a block already holding
// blockTxnCount transactions. Zero when gas escalation is disabled.
func (s *Service) RequiredGasPrice(blockTxnCount uint32) uint64 {
	return s.pool.RequiredGasPrice(blockTxnCount)
}

// OnBlockClosed reports the gas prices of a just-closed block's
// transactions to the escalation tracker so future RequiredGasPrice calls
// reflect how congested recent blocks have been.
func (s *Service) OnBlockClosed(gasPrices []uint64, slowConsensus bool) {
	s.pool.OnBlockClosed(gasPrices, slowConsensus)
}

// Reject removes a rejected transaction's own sequence number only; later
// sequence numbers queued behind it stay pooled.
func (s *Service) Reject(acct address.Address, seq uint64) {
	s.pool.RemoveTransaction(acct, seq, true)
}

// GetByHash looks up a pooled transaction by hash.
func (s *Service) GetByHash(hash address.HashValue) (*mempool.MempoolTransaction, bool) {
	return s.pool.GetByHash(hash)
}

// ReadTimeline exposes the pool's timeline read model.
func (s *Service) ReadTimeline(sinceID uint64, count int) []*mempool.MempoolTransaction {
	return s.pool.ReadTimeline(sinceID, count)
}

// TimelineRange exposes a fixed timeline window.
func (s *Service) TimelineRange(startID, endID uint64) []*mempool.MempoolTransaction {
	return s.pool.TimelineRange(startID, endID)
}

// Size reports current pool occupancy.
func (s *Service) Size() int { return s.pool.Size() }

// RunGC runs both system-TTL and expiration-time garbage collection
// concurrently under an errgroup, the way the teacher's go.mod-listed
// golang.org/x/sync is used elsewhere in the pack to fan out independent
// maintenance work; blockTime is the caller's notion of the current
// block's wall-clock timestamp for the expiration-time sweep.
func (s *Service) RunGC(ctx context.Context, now time.Time, blockTime uint64) (systemTTLRemoved, expirationRemoved int, err error) {
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		systemTTLRemoved = s.pool.GCBySystemTTL(now)
		return nil
	})
	g.Go(func() error {
		expirationRemoved = s.pool.GCByExpirationTime(blockTime)
		return nil
	})
	err = g.Wait()
	if s.metrics != nil && err == nil {
		s.metrics.MempoolGCRemovedTotal.WithLabelValues("system_ttl").Add(float64(systemTTLRemoved))
		s.metrics.MempoolGCRemovedTotal.WithLabelValues("expiration").Add(float64(expirationRemoved))
		s.metrics.MempoolSize.Set(float64(s.pool.Size()))
	}
	return
}

// StartPeriodicGC runs RunGC on interval until ctx is canceled,
// returning the done channel so callers can wait for final shutdown.
func (s *Service) StartPeriodicGC(ctx context.Context, interval time.Duration, blockTimeFn func() uint64) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, expRemoved, err := s.RunGC(ctx, time.Now(), blockTimeFn())
				if err != nil {
					s.logf("mempool: gc error: %v", err)
					continue
				}
				if removed+expRemoved > 0 {
					s.logf("mempool: gc removed %d (ttl) + %d (expiration)", removed, expRemoved)
				}
			}
		}
	}()
	return done
}
