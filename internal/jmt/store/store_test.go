package store

import (
	"context"
	"testing"

	"github.com/levensti/diem/internal/address"
	"github.com/levensti/diem/internal/jmt"
	"github.com/levensti/diem/internal/metrics"
	"github.com/levensti/diem/internal/storage/nodestore"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func sampleAccountKey(b byte) address.HashValue {
	var h address.HashValue
	for i := range h {
		h[i] = b
	}
	return h
}

func newTestStore(t *testing.T, reg *metrics.Registry) *TreeStore {
	t.Helper()
	backend, err := nodestore.NewMemoryBackend(nil)
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	if err := backend.Open(true); err != nil {
		t.Fatalf("open backend: %v", err)
	}
	db := nodestore.NewDatabase(backend, 16, 0)
	return New(db, reg)
}

func sampleRootKey(t *testing.T) jmt.NodeKey {
	t.Helper()
	path, err := address.NewNibblePath(nil)
	if err != nil {
		t.Fatalf("new nibble path: %v", err)
	}
	key, err := jmt.NewNodeKey(1, path)
	if err != nil {
		t.Fatalf("new node key: %v", err)
	}
	return key
}

func TestTreeStorePutGetRoundTrip(t *testing.T) {
	ts := newTestStore(t, nil)
	ctx := context.Background()
	key := sampleRootKey(t)
	leaf := jmt.NewLeafVariant(jmt.NewLeafNode(sampleAccountKey(1), []byte("value")))

	if err := ts.PutNode(ctx, key, leaf); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := ts.GetNode(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Hash() != leaf.Hash() {
		t.Fatal("round-tripped node hash mismatch")
	}
}

func TestTreeStoreGetMissingReturnsErrNodeNotFound(t *testing.T) {
	ts := newTestStore(t, nil)
	key := sampleRootKey(t)

	_, err := ts.GetNode(context.Background(), key)
	if err != ErrNodeNotFound {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestTreeStoreRecordsMetrics(t *testing.T) {
	reg := metrics.New()
	ts := newTestStore(t, reg)
	ctx := context.Background()
	key := sampleRootKey(t)
	leaf := jmt.NewLeafVariant(jmt.NewLeafNode(sampleAccountKey(2), []byte("value")))

	if err := ts.PutNode(ctx, key, leaf); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := ts.GetNode(ctx, key); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := testutil.ToFloat64(reg.JMTNodeWritesTotal); got != 1 {
		t.Fatalf("expected one recorded write, got %v", got)
	}
	if got := testutil.ToFloat64(reg.JMTNodeReadsTotal); got != 1 {
		t.Fatalf("expected one recorded read, got %v", got)
	}
}

func TestTreeStorePutNodeBatch(t *testing.T) {
	ts := newTestStore(t, nil)
	ctx := context.Background()
	key := sampleRootKey(t)
	leaf := jmt.NewLeafVariant(jmt.NewLeafNode(sampleAccountKey(3), []byte("batched")))

	if err := ts.PutNodeBatch(ctx, map[jmt.NodeKey]jmt.Node{key: leaf}); err != nil {
		t.Fatalf("put batch: %v", err)
	}
	got, err := ts.GetNode(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Hash() != leaf.Hash() {
		t.Fatal("batched node hash mismatch")
	}
}
