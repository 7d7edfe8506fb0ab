package mempool

import (
	"bytes"
	"sort"
	"sync"
	"time"

	"github.com/levensti/diem/internal/address"
	"github.com/levensti/diem/internal/crypto"
)

func bytesLess(a, b []byte) bool {
	return bytes.Compare(a, b) < 0
}

// txnLocation is what the hash_index and parking lot store: enough to
// find the owning accountQueue entry without duplicating the transaction.
type txnLocation struct {
	account address.Address
	seq     uint64
}

// Mempool is the prioritized transaction pool: per-account queues holding
// Ready and parked transactions, a monotonic timeline for downstream
// readers, and a hash index for direct lookup, all kept consistent under
// a single lock the way the teacher's TxQ (internal/core/txq/txq.go)
// guards byFee/byAccount with one mutex. There is no separate priority
// or TTL index: GetBlock orders the account heads on each call, and both
// GCs scan every pooled transaction.
type Mempool struct {
	mu sync.Mutex

	config Config

	accounts  map[address.Address]*accountQueue
	hashIndex map[address.HashValue]txnLocation

	nextTimelineID    uint64
	insertionCounter  uint64
	size              int

	escalation *GasPriceEscalation

	// parentHash salts the same-RankingScore tiebreak so different
	// proposer rounds (each with a different parent block) don't always
	// favor the same account when two transactions pay the identical
	// gas price, the same role the teacher's parentHash XOR plays in
	// candidateLess (internal/core/txq/txq.go).
	parentHash [crypto.DigestSize]byte
}

// New creates an empty pool.
func New(config Config) *Mempool {
	m := &Mempool{
		config:    config,
		accounts:  make(map[address.Address]*accountQueue),
		hashIndex: make(map[address.HashValue]txnLocation),
	}
	if config.EnableGasEscalation {
		m.escalation = NewGasPriceEscalation(config.Escalation)
	}
	return m
}

// SetParentHash salts the same-RankingScore tiebreak GetBlock uses. Call
// it once per block-building round with the parent block's hash (folded
// to 20 bytes) so independently-run proposers converge on the same
// ordering without favoring a fixed account whenever two transactions
// tie on gas price.
func (m *Mempool) SetParentHash(parentHash [crypto.DigestSize]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parentHash = parentHash
}

// RequiredGasPrice reports the gas-unit-price floor a transaction must pay
// to be included in a block that already holds blockTxnCount transactions.
// Returns 0 when gas escalation is disabled, meaning no floor applies.
func (m *Mempool) RequiredGasPrice(blockTxnCount uint32) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.escalation == nil {
		return 0
	}
	return m.escalation.RequiredGasPrice(blockTxnCount)
}

// OnBlockClosed feeds the gas prices paid by a just-closed block's
// transactions into the escalation tracker. A no-op when gas escalation
// is disabled.
func (m *Mempool) OnBlockClosed(gasPrices []uint64, slowConsensus bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.escalation == nil {
		return
	}
	m.escalation.OnBlockClosed(gasPrices, slowConsensus)
}

func (m *Mempool) accountQueueFor(acct address.Address, seqInfo SequenceInfo) *accountQueue {
	q, ok := m.accounts[acct]
	if !ok {
		q = newAccountQueue(acct, seqInfo)
		m.accounts[acct] = q
	}
	return q
}

// Insert admits t into the pool, judging readiness against the
// account's last-known SequenceInfo (set via UpdateAccountSequenceInfo;
// a never-seen account starts out Sequential with MinSeq 0).
//
// The algorithm mirrors §4.5.2: a resubmission of an already-pooled
// sequence number with a strictly higher gas price replaces the old
// entry (fee bump); an identical resubmission is an idempotent no-op;
// anything else at an already-occupied sequence is rejected. Capacity is
// enforced per account and globally: a newcomer that would be Ready may
// evict one parked transaction to make room, but a non-ready newcomer is
// rejected outright rather than touching the parking lot. Already-committed
// sequence numbers for the account are dropped, and the new transaction's
// account is re-promoted afterward so any newly contiguous successors
// already pooled become Ready too.
func (m *Mempool) Insert(t *MempoolTransaction) InsertResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.hashIndex[t.Hash]; ok {
		// Same hash already pooled: nothing to do.
		_ = existing
		return Accepted
	}

	q := m.accountQueueFor(t.Account, SequenceInfo{})
	if existing, ok := q.get(t.Seq); ok {
		if existing.Hash == t.Hash {
			return Accepted
		}
		if t.GasUnitPrice <= existing.GasUnitPrice {
			return ResultInvalidUpdate
		}
		delete(m.hashIndex, existing.Hash)
		q.remove(existing.Seq)
		m.size--
	} else if q.count() >= m.config.PerAccountCapacity {
		return ResultTooManyTransactions
	}

	ready := q.wouldBeReady(t.Seq)
	if m.size >= m.config.Capacity {
		if !ready || !m.evictOneParked() {
			return ResultMempoolIsFull
		}
	}

	// Clean already-committed sequence numbers for this account.
	for _, seq := range q.sortedSeqs() {
		if seq < q.seqInfo.MinSeq {
			old := q.txns[seq]
			delete(m.hashIndex, old.Hash)
			q.remove(seq)
			m.size--
		}
	}

	m.insertionCounter++
	t.InsertionTiebreak = m.insertionCounter
	t.RankingScore = rankingScore(t.GasUnitPrice)
	t.TimelineState = TimelineState{Kind: TimelineNotReady}

	q.put(t)
	m.hashIndex[t.Hash] = txnLocation{account: t.Account, seq: t.Seq}
	m.size++

	q.promoteReadiness(m.assignTimelineID)
	return Accepted
}

// evictOneParked drops one parked transaction: it takes each account's
// highest-sequence parked transaction (see accountQueue.highestParked)
// and, among those, evicts the one with the lowest RankingScore, breaking
// ties toward the most recently inserted.
// Returns false if every pooled transaction is Ready, meaning there is
// nothing safe to evict.
func (m *Mempool) evictOneParked() bool {
	var victimQueue *accountQueue
	var victim *MempoolTransaction
	for _, q := range m.accounts {
		candidate, ok := q.highestParked()
		if !ok {
			continue
		}
		if victim == nil || candidate.RankingScore < victim.RankingScore ||
			(candidate.RankingScore == victim.RankingScore && candidate.InsertionTiebreak > victim.InsertionTiebreak) {
			victim = candidate
			victimQueue = q
		}
	}
	if victim == nil {
		return false
	}
	delete(m.hashIndex, victim.Hash)
	victimQueue.remove(victim.Seq)
	m.size--
	return true
}

// UpdateAccountSequenceInfo refreshes a single account's numbering
// scheme and recomputes readiness for every transaction it has pooled,
// the pool's half of process_ready_transactions (the other half runs
// inside accountQueue.promoteReadiness).
func (m *Mempool) UpdateAccountSequenceInfo(acct address.Address, seqInfo SequenceInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.accounts[acct]
	if !ok {
		m.accounts[acct] = newAccountQueue(acct, seqInfo)
		return
	}
	q.seqInfo = seqInfo
	q.promoteReadiness(m.assignTimelineID)
}

func (m *Mempool) assignTimelineID(t *MempoolTransaction) {
	m.nextTimelineID++
	t.TimelineState.TimelineID = m.nextTimelineID
}

// GetBlock returns up to batchSize Ready transactions in priority order,
// one per account per pass in sequence order, skipping any hash present
// in seen (already included by a concurrent proposer run). Matches
// §4.5.4: iteration is priority-first, but an account's own transactions
// are still emitted in sequence order since a later sequence cannot be
// valid without its predecessor in the same block.
func (m *Mempool) GetBlock(batchSize int, seen map[address.HashValue]struct{}) []*MempoolTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	type head struct {
		q   *accountQueue
		txn *MempoolTransaction
	}
	heads := make([]head, 0, len(m.accounts))
	for _, q := range m.accounts {
		if t, ok := q.firstReady(); ok {
			heads = append(heads, head{q: q, txn: t})
		}
	}

	out := make([]*MempoolTransaction, 0, batchSize)
	for len(out) < batchSize {
		sort.Slice(heads, func(i, j int) bool {
			a, b := heads[i].txn, heads[j].txn
			if a.RankingScore != b.RankingScore {
				return a.RankingScore > b.RankingScore
			}
			aSalt := crypto.XorDigest160(crypto.Digest160(a.Hash[:]), m.parentHash)
			bSalt := crypto.XorDigest160(crypto.Digest160(b.Hash[:]), m.parentHash)
			if aSalt != bSalt {
				return bytesLess(aSalt[:], bSalt[:])
			}
			return a.InsertionTiebreak < b.InsertionTiebreak
		})
		advanced := false
		for i := range heads {
			h := &heads[i]
			if _, dup := seen[h.txn.Hash]; dup {
				next, ok := h.q.nextReadyAfter(h.txn.Seq)
				if !ok {
					heads = append(heads[:i], heads[i+1:]...)
				} else {
					h.txn = next
				}
				advanced = true
				break
			}
			out = append(out, h.txn)
			if len(out) >= batchSize {
				return out
			}
			next, ok := h.q.nextReadyAfter(h.txn.Seq)
			if !ok {
				heads = append(heads[:i], heads[i+1:]...)
			} else {
				h.txn = next
			}
			advanced = true
			break
		}
		if !advanced {
			break
		}
	}
	return out
}

// nextReadyAfter returns the account's next Ready transaction strictly
// after seq, if its sequence number immediately follows (a gap means the
// chain of readiness stops here for this round).
func (q *accountQueue) nextReadyAfter(seq uint64) (*MempoolTransaction, bool) {
	next, ok := q.get(seq + 1)
	if !ok || next.TimelineState.Kind != TimelineReady {
		return nil, false
	}
	return next, true
}

// RemoveTransaction evicts a committed or rejected transaction, matching
// §4.5.5. Rejected drops only that specific sequence number, leaving the
// cached account sequence untouched. Accepted advances the cached
// sequence to max(cached, seq+1) for Sequential accounts (CRSN accounts
// keep their window as-is, advanced only through UpdateAccountSequenceInfo),
// cleans every now-committed entry below the new cached sequence, and
// re-runs readiness promotion for the account.
func (m *Mempool) RemoveTransaction(acct address.Address, seq uint64, isRejected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.accounts[acct]
	if !ok {
		return
	}

	if t, ok := q.get(seq); ok {
		delete(m.hashIndex, t.Hash)
		q.remove(seq)
		m.size--
	}

	if !isRejected {
		if q.seqInfo.Kind == SequenceSequential {
			if newSeq := seq + 1; newSeq > q.seqInfo.MinSeq {
				q.seqInfo.MinSeq = newSeq
			}
			for _, s := range q.sortedSeqs() {
				if s < q.seqInfo.MinSeq {
					t := q.txns[s]
					delete(m.hashIndex, t.Hash)
					q.remove(s)
					m.size--
				}
			}
		}
		q.promoteReadiness(m.assignTimelineID)
	}

	if q.count() == 0 {
		delete(m.accounts, acct)
	}
}

// GCBySystemTTL drops every transaction whose SystemExpiry has passed as
// of now, the pool's own wall-clock liveness bound independent of the
// transaction's self-declared expiration.
func (m *Mempool) GCBySystemTTL(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gcWhere(func(t *MempoolTransaction) bool { return now.After(t.SystemExpiry) })
}

// GCByExpirationTime drops every transaction whose own declared
// expiration timestamp is at or before blockTime, the consensus-driven
// analogue of GCBySystemTTL.
func (m *Mempool) GCByExpirationTime(blockTime uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gcWhere(func(t *MempoolTransaction) bool {
		return t.ExpirationSecs != 0 && t.ExpirationSecs <= blockTime
	})
}

func (m *Mempool) gcWhere(expired func(*MempoolTransaction) bool) int {
	removed := 0
	for acct, q := range m.accounts {
		for _, seq := range q.sortedSeqs() {
			t := q.txns[seq]
			if expired(t) {
				delete(m.hashIndex, t.Hash)
				q.remove(seq)
				m.size--
				removed++
			}
		}
		if q.count() == 0 {
			delete(m.accounts, acct)
		}
	}
	return removed
}

// ReadTimeline returns up to count Ready transactions with TimelineID
// greater than sinceID, in ascending timeline order, the read model
// a downstream broadcaster polls incrementally.
func (m *Mempool) ReadTimeline(sinceID uint64, count int) []*MempoolTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []*MempoolTransaction
	for _, q := range m.accounts {
		for _, seq := range q.sortedSeqs() {
			t := q.txns[seq]
			if t.TimelineState.Kind == TimelineReady && t.TimelineState.TimelineID > sinceID {
				all = append(all, t)
			}
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].TimelineState.TimelineID < all[j].TimelineState.TimelineID
	})
	if len(all) > count {
		all = all[:count]
	}
	return all
}

// TimelineRange returns every Ready transaction with TimelineID in
// [startID, endID), ascending, for consumers re-reading a fixed window.
func (m *Mempool) TimelineRange(startID, endID uint64) []*MempoolTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []*MempoolTransaction
	for _, q := range m.accounts {
		for _, seq := range q.sortedSeqs() {
			t := q.txns[seq]
			id := t.TimelineState.TimelineID
			if t.TimelineState.Kind == TimelineReady && id >= startID && id < endID {
				all = append(all, t)
			}
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].TimelineState.TimelineID < all[j].TimelineState.TimelineID
	})
	return all
}

// GetByHash looks up a pooled transaction directly via the hash index.
func (m *Mempool) GetByHash(hash address.HashValue) (*MempoolTransaction, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loc, ok := m.hashIndex[hash]
	if !ok {
		return nil, false
	}
	q, ok := m.accounts[loc.account]
	if !ok {
		return nil, false
	}
	return q.get(loc.seq)
}

// Size reports the total number of pooled transactions across all
// accounts.
func (m *Mempool) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}
