// Package store adapts the tree's NodeKey-addressed nodes onto the generic
// nodestore.Database: every NodeKey is hashed down to the fixed-size key
// nodestore expects, and every Node is (de)serialized through jmt.Encode.
package store

import (
	"context"
	"errors"

	"github.com/levensti/diem/internal/address"
	"github.com/levensti/diem/internal/crypto"
	"github.com/levensti/diem/internal/jmt"
	"github.com/levensti/diem/internal/metrics"
	"github.com/levensti/diem/internal/storage/nodestore"
)

// ErrNodeNotFound is returned when a NodeKey has no corresponding stored
// node — either it was never written, or it was pruned by a stale-version
// sweep.
var ErrNodeNotFound = errors.New("jmt store: node not found")

// TreeStore reads and writes tree nodes keyed by NodeKey, backed by a
// nodestore.Database.
type TreeStore struct {
	db      nodestore.Database
	metrics *metrics.Registry
}

// New wraps db as a TreeStore. reg may be nil to skip instrumentation.
func New(db nodestore.Database, reg *metrics.Registry) *TreeStore {
	return &TreeStore{db: db, metrics: reg}
}

func storageKey(key jmt.NodeKey) address.HashValue {
	return crypto.Hash(key.Encode())
}

// GetNode fetches and decodes the node at key.
func (s *TreeStore) GetNode(ctx context.Context, key jmt.NodeKey) (jmt.Node, error) {
	if s.metrics != nil {
		s.metrics.JMTNodeReadsTotal.Inc()
	}
	stored, err := s.db.Fetch(ctx, storageKey(key))
	if err != nil {
		return jmt.Node{}, err
	}
	if stored == nil {
		return jmt.Node{}, ErrNodeNotFound
	}
	return jmt.Decode(stored.Data)
}

// PutNode encodes and stores node under key.
func (s *TreeStore) PutNode(ctx context.Context, key jmt.NodeKey, node jmt.Node) error {
	if s.metrics != nil {
		s.metrics.JMTNodeWritesTotal.Inc()
	}
	encoded := node.Encode()
	return s.db.Store(ctx, nodestore.NewNode(nodestore.NodeJMT, storageKey(key), encoded))
}

// PutNodeBatch stores many nodes in one backend round trip, the shape a
// single tree-update batch produces: one or more new internal nodes and
// leaves sharing a version.
func (s *TreeStore) PutNodeBatch(ctx context.Context, batch map[jmt.NodeKey]jmt.Node) error {
	nodes := make([]*nodestore.Node, 0, len(batch))
	for key, node := range batch {
		nodes = append(nodes, nodestore.NewNode(nodestore.NodeJMT, storageKey(key), node.Encode()))
	}
	if s.metrics != nil {
		s.metrics.JMTNodeWritesTotal.Add(float64(len(nodes)))
	}
	return s.db.StoreBatch(ctx, nodes)
}
