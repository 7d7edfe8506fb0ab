// Package nodestore provides content-addressable persistent storage for the
// tree's nodes: a Backend abstraction (in-memory or PebbleDB) fronted by an
// LRU cache, keyed by the node's encoded NodeKey.
package nodestore

import (
	"context"
	"fmt"
	"time"

	"github.com/levensti/diem/internal/address"
)

// Hash256 is the key type this package stores under: the hash of the
// encoded NodeKey addressing a tree node, not the node's own content hash
// (two different versions of the same logical node live at different keys).
type Hash256 = address.HashValue

// NodeType distinguishes what an encoded blob actually holds, so ForEach
// and compaction scans don't need to decode every value to know its shape.
type NodeType uint32

const (
	NodeUnknown NodeType = 0
	NodeJMT     NodeType = 1 // encoded jmt.Node (Null/Leaf/Internal)
	NodeTxnInfo NodeType = 2 // encoded accumulator.TransactionInfo
	NodeLedger  NodeType = 3 // encoded accumulator.LedgerInfo
)

func (nt NodeType) String() string {
	switch nt {
	case NodeJMT:
		return "NodeJMT"
	case NodeTxnInfo:
		return "NodeTxnInfo"
	case NodeLedger:
		return "NodeLedger"
	default:
		return fmt.Sprintf("NodeType(%d)", uint32(nt))
	}
}

// Node is a stored blob with its key, type tag, and size metadata.
type Node struct {
	Type      NodeType
	Hash      Hash256
	Data      []byte
	CreatedAt time.Time
}

// NewNode wraps data under an explicit key (the caller already knows the
// NodeKey encoding; this package doesn't derive it from content).
func NewNode(nodeType NodeType, key Hash256, data []byte) *Node {
	return &Node{Type: nodeType, Hash: key, Data: data, CreatedAt: time.Now()}
}

func (n *Node) Size() int { return len(n.Data) }

func (n *Node) IsValid() bool {
	return n != nil && n.Type != NodeUnknown && len(n.Data) > 0
}

// Result is the payload of an async fetch.
type Result struct {
	Node *Node
	Err  error
}

// Database is the store's public interface: synchronous and async fetch,
// batch operations, and basic lifecycle/maintenance hooks.
type Database interface {
	Store(ctx context.Context, node *Node) error
	Fetch(ctx context.Context, hash Hash256) (*Node, error)
	FetchBatch(ctx context.Context, hashes []Hash256) ([]*Node, error)
	FetchAsync(ctx context.Context, hash Hash256) <-chan Result
	StoreBatch(ctx context.Context, nodes []*Node) error
	Sweep() error
	Stats() Statistics
	Close() error
	Sync() error
}

// Statistics holds running performance counters.
type Statistics struct {
	Reads        uint64
	CacheHits    uint64
	CacheMisses  uint64
	ReadBytes    uint64
	Writes       uint64
	WriteBytes   uint64
	CacheSize    uint64
	CacheMaxSize uint64
	BackendName  string
}

func (s Statistics) String() string {
	hitRate := float64(0)
	if s.Reads > 0 {
		hitRate = float64(s.CacheHits) / float64(s.Reads) * 100
	}
	return fmt.Sprintf("nodestore[%s]: %d reads (%.1f%% hit), %d/%d cached, %d writes",
		s.BackendName, s.Reads, hitRate, s.CacheSize, s.CacheMaxSize, s.Writes)
}

// Status is a backend operation's outcome.
type Status int

const (
	OK Status = iota
	NotFound
	DataCorrupt
	BackendError
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case NotFound:
		return "NotFound"
	case DataCorrupt:
		return "DataCorrupt"
	case BackendError:
		return "BackendError"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Backend is the pluggable storage engine underneath the cache.
type Backend interface {
	Name() string
	Open(createIfMissing bool) error
	Close() error
	IsOpen() bool

	Fetch(key Hash256) (*Node, Status)
	FetchBatch(keys []Hash256) ([]*Node, Status)
	Store(node *Node) Status
	StoreBatch(nodes []*Node) Status
	Sync() Status
	ForEach(fn func(*Node) error) error

	SetDeletePath()
}
