package mempool

import (
	"sort"

	"github.com/levensti/diem/internal/address"
)

// accountQueue holds every pooled transaction for one account, keyed by
// sequence number, the same per-account shape as the teacher's
// AccountQueue (internal/core/txq/candidate.go) generalized to carry
// Sequential/CRSN readiness instead of a single "next expected" sequence.
type accountQueue struct {
	account address.Address
	txns    map[uint64]*MempoolTransaction
	seqInfo SequenceInfo
}

func newAccountQueue(account address.Address, seqInfo SequenceInfo) *accountQueue {
	return &accountQueue{
		account: account,
		txns:    make(map[uint64]*MempoolTransaction),
		seqInfo: seqInfo,
	}
}

func (q *accountQueue) count() int { return len(q.txns) }

func (q *accountQueue) get(seq uint64) (*MempoolTransaction, bool) {
	t, ok := q.txns[seq]
	return t, ok
}

func (q *accountQueue) put(t *MempoolTransaction) {
	q.txns[t.Seq] = t
}

func (q *accountQueue) remove(seq uint64) {
	delete(q.txns, seq)
}

// sortedSeqs returns this account's pooled sequence numbers in ascending
// order, the order readiness promotion and GC both need to walk in.
func (q *accountQueue) sortedSeqs() []uint64 {
	out := make([]uint64, 0, len(q.txns))
	for seq := range q.txns {
		out = append(out, seq)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// promoteReadiness recomputes TimelineState for every pooled transaction
// given the account's current numbering scheme, matching
// process_ready_transactions: Sequential accounts promote a contiguous
// run starting at seqInfo.MinSeq; CRSN accounts promote anything inside
// the open nonce window. assignTimelineID is called, in ascending seq
// order, for each transaction newly entering Ready so it receives a
// timeline id only once.
func (q *accountQueue) promoteReadiness(assignTimelineID func(*MempoolTransaction)) {
	seqs := q.sortedSeqs()
	switch q.seqInfo.Kind {
	case SequenceSequential:
		expected := q.seqInfo.MinSeq
		for _, seq := range seqs {
			t := q.txns[seq]
			switch {
			case seq < expected:
				t.TimelineState = TimelineState{Kind: TimelineNonQualified}
			case seq == expected:
				if t.TimelineState.Kind != TimelineReady {
					t.TimelineState = TimelineState{Kind: TimelineReady}
					assignTimelineID(t)
				}
				expected++
			default:
				t.TimelineState = TimelineState{Kind: TimelineNotReady}
			}
		}
	case SequenceCRSN:
		for _, seq := range seqs {
			t := q.txns[seq]
			if q.seqInfo.InWindow(seq) {
				if t.TimelineState.Kind != TimelineReady {
					t.TimelineState = TimelineState{Kind: TimelineReady}
					assignTimelineID(t)
				}
			} else if seq < q.seqInfo.MinNonce {
				t.TimelineState = TimelineState{Kind: TimelineNonQualified}
			} else {
				t.TimelineState = TimelineState{Kind: TimelineNotReady}
			}
		}
	}
}

// wouldBeReady reports whether seq is ready under the account's current
// numbering scheme, without touching any pooled transaction's state —
// used at admission time to gate parking-lot eviction before the
// newcomer is actually inserted.
func (q *accountQueue) wouldBeReady(seq uint64) bool {
	switch q.seqInfo.Kind {
	case SequenceSequential:
		return seq == q.seqInfo.MinSeq
	case SequenceCRSN:
		return q.seqInfo.InWindow(seq)
	default:
		return false
	}
}

// firstReady returns the account's lowest-sequence Ready transaction, the
// only one eligible for inclusion in a block at this moment: get_block
// must never skip ahead of an account's own ordering.
func (q *accountQueue) firstReady() (*MempoolTransaction, bool) {
	var best *MempoolTransaction
	for _, seq := range q.sortedSeqs() {
		t := q.txns[seq]
		if t.TimelineState.Kind == TimelineReady {
			best = t
			break
		}
	}
	return best, best != nil
}

// highestParked returns the account's highest-sequence non-Ready
// transaction, the eviction policy's candidate: dropping the tail of a
// queue frees capacity without invalidating any transaction another one
// depends on.
func (q *accountQueue) highestParked() (*MempoolTransaction, bool) {
	seqs := q.sortedSeqs()
	for i := len(seqs) - 1; i >= 0; i-- {
		t := q.txns[seqs[i]]
		if t.TimelineState.Kind != TimelineReady {
			return t, true
		}
	}
	return nil, false
}
