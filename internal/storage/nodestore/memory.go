package nodestore

import (
	"fmt"
	"sync"
)

// MemoryBackend is an in-memory backend for tests and ephemeral nodes.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[Hash256]*Node
	open bool
}

func NewMemoryBackend(config *Config) (Backend, error) {
	return &MemoryBackend{data: make(map[Hash256]*Node)}, nil
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Open(createIfMissing bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open {
		return fmt.Errorf("backend already open")
	}
	m.open = true
	return nil
}

func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	m.data = make(map[Hash256]*Node)
	return nil
}

func (m *MemoryBackend) IsOpen() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.open
}

func (m *MemoryBackend) Fetch(key Hash256) (*Node, Status) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.open {
		return nil, BackendError
	}
	node, ok := m.data[key]
	if !ok {
		return nil, NotFound
	}
	return m.copyNode(node), OK
}

func (m *MemoryBackend) FetchBatch(keys []Hash256) ([]*Node, Status) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.open {
		return nil, BackendError
	}
	out := make([]*Node, len(keys))
	for i, k := range keys {
		if node, ok := m.data[k]; ok {
			out[i] = m.copyNode(node)
		}
	}
	return out, OK
}

func (m *MemoryBackend) Store(node *Node) Status {
	if node == nil {
		return BackendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return BackendError
	}
	m.data[node.Hash] = m.copyNode(node)
	return OK
}

func (m *MemoryBackend) StoreBatch(nodes []*Node) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return BackendError
	}
	for _, n := range nodes {
		if n != nil {
			m.data[n.Hash] = m.copyNode(n)
		}
	}
	return OK
}

func (m *MemoryBackend) Sync() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.open {
		return BackendError
	}
	return OK
}

func (m *MemoryBackend) ForEach(fn func(*Node) error) error {
	m.mu.RLock()
	snapshot := make([]*Node, 0, len(m.data))
	for _, n := range m.data {
		snapshot = append(snapshot, m.copyNode(n))
	}
	m.mu.RUnlock()
	for _, n := range snapshot {
		if err := fn(n); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryBackend) SetDeletePath() {}

func (m *MemoryBackend) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *MemoryBackend) copyNode(node *Node) *Node {
	if node == nil {
		return nil
	}
	dataCopy := make([]byte, len(node.Data))
	copy(dataCopy, node.Data)
	return &Node{Type: node.Type, Hash: node.Hash, Data: dataCopy, CreatedAt: node.CreatedAt}
}
