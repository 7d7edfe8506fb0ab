package service

import (
	"context"
	"testing"
	"time"

	"github.com/levensti/diem/internal/address"
	"github.com/levensti/diem/internal/mempool"
	"github.com/stretchr/testify/require"
)

func testAccount(b byte) address.Address {
	var a address.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func testHash(b byte) address.HashValue {
	var h address.HashValue
	for i := range h {
		h[i] = b
	}
	return h
}

func TestServiceSubmitAndCommit(t *testing.T) {
	pool := mempool.New(mempool.DefaultConfig())
	svc := New(pool, nil, nil)
	acct := testAccount(1)
	svc.NotifyAccountState(acct, mempool.SequenceInfo{Kind: mempool.SequenceSequential, MinSeq: 1})

	txn := &mempool.MempoolTransaction{
		Account:      acct,
		Seq:          1,
		Hash:         testHash(1),
		GasUnitPrice: 5,
		SystemExpiry: time.Now().Add(time.Hour),
	}
	require.Equal(t, mempool.Accepted, svc.Submit(txn))
	svc.NotifyAccountState(acct, mempool.SequenceInfo{Kind: mempool.SequenceSequential, MinSeq: 1})

	got, ok := svc.GetByHash(testHash(1))
	require.True(t, ok)
	require.Equal(t, mempool.TimelineReady, got.TimelineState.Kind)

	svc.Commit(acct, 1)
	_, ok = svc.GetByHash(testHash(1))
	require.False(t, ok)
}

func TestServiceRunGC(t *testing.T) {
	pool := mempool.New(mempool.DefaultConfig())
	svc := New(pool, nil, nil)
	acct := testAccount(2)
	txn := &mempool.MempoolTransaction{
		Account:      acct,
		Seq:          1,
		Hash:         testHash(2),
		GasUnitPrice: 5,
		SystemExpiry: time.Now().Add(-time.Minute),
	}
	svc.Submit(txn)

	ttlRemoved, expRemoved, err := svc.RunGC(context.Background(), time.Now(), 0)
	require.NoError(t, err)
	require.Equal(t, 1, ttlRemoved)
	require.Equal(t, 0, expRemoved)
	require.Equal(t, 0, svc.Size())
}

func TestServiceGetBlockRoundTrip(t *testing.T) {
	pool := mempool.New(mempool.DefaultConfig())
	svc := New(pool, nil, nil)
	acct := testAccount(3)
	svc.NotifyAccountState(acct, mempool.SequenceInfo{Kind: mempool.SequenceSequential, MinSeq: 1})
	svc.Submit(&mempool.MempoolTransaction{
		Account: acct, Seq: 1, Hash: testHash(3), GasUnitPrice: 10,
		SystemExpiry: time.Now().Add(time.Hour),
	})
	svc.NotifyAccountState(acct, mempool.SequenceInfo{Kind: mempool.SequenceSequential, MinSeq: 1})

	block := svc.GetBlock(10, map[address.HashValue]struct{}{})
	require.Len(t, block, 1)
	require.Equal(t, testHash(3), block[0].Hash)
}
