package nodestore

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/levensti/diem/internal/address"
	"github.com/levensti/diem/internal/storage/nodestore/compression"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/bloom"
)

// PebbleBackend is the production backend: an LSM-tree store with an
// optional compressor in front of it, the same shape the teacher uses for
// its SHAMap node store.
type PebbleBackend struct {
	mu         sync.RWMutex
	db         *pebble.DB
	compressor compression.Compressor
	config     *Config
	open       bool
	deletePath bool
}

func NewPebbleBackend(config *Config) (Backend, error) {
	if config == nil {
		config = DefaultConfig()
	}
	compressor, err := compression.Get(config.Compressor)
	if err != nil {
		return nil, fmt.Errorf("failed to get compressor %s: %w", config.Compressor, err)
	}
	return &PebbleBackend{compressor: compressor, config: config}, nil
}

func (p *PebbleBackend) Name() string { return fmt.Sprintf("pebble(%s)", p.config.Path) }

func (p *PebbleBackend) Open(createIfMissing bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.open {
		return fmt.Errorf("backend already open")
	}
	if createIfMissing {
		if err := os.MkdirAll(p.config.Path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", p.config.Path, err)
		}
	}
	opts := &pebble.Options{
		Cache:                    pebble.NewCache(64 << 20),
		MaxOpenFiles:             1000,
		MemTableSize:             32 << 20,
		MaxConcurrentCompactions: 4,
		L0CompactionThreshold:    2,
		L0StopWritesThreshold:    1000,
		LBaseMaxBytes:            64 << 20,
		Levels: []pebble.LevelOptions{
			{TargetFileSize: 2 << 20, FilterPolicy: bloom.FilterPolicy(10)},
		},
	}
	db, err := pebble.Open(p.config.Path, opts)
	if err != nil {
		return fmt.Errorf("failed to open pebble db at %s: %w", p.config.Path, err)
	}
	p.db = db
	p.open = true
	return nil
}

func (p *PebbleBackend) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return nil
	}
	var err error
	if p.db != nil {
		err = p.db.Close()
		p.db = nil
	}
	p.open = false
	if p.deletePath && p.config.Path != "" {
		if rmErr := os.RemoveAll(p.config.Path); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}

func (p *PebbleBackend) IsOpen() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.open
}

func (p *PebbleBackend) Fetch(key Hash256) (*Node, Status) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.open {
		return nil, BackendError
	}
	value, closer, err := p.db.Get(key[:])
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, NotFound
		}
		return nil, BackendError
	}
	defer closer.Close()
	node, err := p.decodeNode(key, value)
	if err != nil {
		return nil, DataCorrupt
	}
	return node, OK
}

func (p *PebbleBackend) FetchBatch(keys []Hash256) ([]*Node, Status) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.open {
		return nil, BackendError
	}
	out := make([]*Node, len(keys))
	for i, key := range keys {
		value, closer, err := p.db.Get(key[:])
		if err != nil {
			if err == pebble.ErrNotFound {
				continue
			}
			return nil, BackendError
		}
		node, decodeErr := p.decodeNode(key, value)
		closer.Close()
		if decodeErr != nil {
			return nil, DataCorrupt
		}
		out[i] = node
	}
	return out, OK
}

func (p *PebbleBackend) Store(node *Node) Status {
	if node == nil {
		return BackendError
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.open {
		return BackendError
	}
	value, err := p.encodeNode(node)
	if err != nil {
		return BackendError
	}
	if err := p.db.Set(node.Hash[:], value, pebble.Sync); err != nil {
		return BackendError
	}
	return OK
}

func (p *PebbleBackend) StoreBatch(nodes []*Node) Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.open {
		return BackendError
	}
	batch := p.db.NewBatch()
	defer batch.Close()
	for _, node := range nodes {
		if node == nil {
			continue
		}
		value, err := p.encodeNode(node)
		if err != nil {
			return BackendError
		}
		if err := batch.Set(node.Hash[:], value, nil); err != nil {
			return BackendError
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return BackendError
	}
	return OK
}

func (p *PebbleBackend) Sync() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.open {
		return BackendError
	}
	if err := p.db.Flush(); err != nil {
		return BackendError
	}
	return OK
}

func (p *PebbleBackend) ForEach(fn func(*Node) error) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.open {
		return ErrBackendClosed
	}
	iter := p.db.NewIter(nil)
	defer iter.Close()
	for iter.First(); iter.Valid(); iter.Next() {
		key := iter.Key()
		if len(key) != address.HashSize {
			continue
		}
		var hash Hash256
		copy(hash[:], key)
		node, decodeErr := p.decodeNode(hash, iter.Value())
		if decodeErr != nil {
			continue
		}
		if err := fn(node); err != nil {
			return err
		}
	}
	return iter.Error()
}

func (p *PebbleBackend) SetDeletePath() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deletePath = true
}

// Compact triggers manual full-range compaction.
func (p *PebbleBackend) Compact() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.open {
		return ErrBackendClosed
	}
	return p.db.Compact(nil, nil, true)
}

func (p *PebbleBackend) encodeNode(node *Node) ([]byte, error) {
	dataToStore := node.Data
	compressed := false
	if p.compressor.Name() != "none" {
		compressedData, err := p.compressor.Compress(node.Data, p.config.CompressionLevel)
		if err == nil && len(compressedData) < len(node.Data) {
			dataToStore = compressedData
			compressed = true
		}
	}
	buf := make([]byte, 0, 4+8+4+len(dataToStore)+1)
	var tmp4 [4]byte
	var tmp8 [8]byte
	binary.LittleEndian.PutUint32(tmp4[:], uint32(node.Type))
	buf = append(buf, tmp4[:]...)
	binary.LittleEndian.PutUint64(tmp8[:], uint64(node.CreatedAt.UnixNano()))
	buf = append(buf, tmp8[:]...)
	binary.LittleEndian.PutUint32(tmp4[:], uint32(len(dataToStore)))
	buf = append(buf, tmp4[:]...)
	buf = append(buf, dataToStore...)
	if compressed {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	return buf, nil
}

func (p *PebbleBackend) decodeNode(key Hash256, data []byte) (*Node, error) {
	if len(data) < 4+8+4+1 {
		return nil, fmt.Errorf("invalid data size: %d", len(data))
	}
	offset := 0
	nodeType := NodeType(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4
	createdAt := time.Unix(0, int64(binary.LittleEndian.Uint64(data[offset:])))
	offset += 8
	length := int(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4
	if offset+length+1 > len(data) {
		return nil, fmt.Errorf("invalid data length: %d", length)
	}
	payload := data[offset : offset+length]
	offset += length
	compressed := data[offset] == 1
	if compressed {
		decompressed, err := p.compressor.Decompress(payload)
		if err != nil {
			return nil, fmt.Errorf("decompression failed: %w", err)
		}
		payload = decompressed
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return &Node{Type: nodeType, Hash: key, Data: out, CreatedAt: createdAt}, nil
}
