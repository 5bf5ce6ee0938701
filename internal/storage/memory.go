package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tuannm99/sqllab/internal/catalog"
)

// MemoryStore keeps encoded snapshots in a map. Snapshots go through JSON
// so loads behave exactly like the file backend.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

var _ SnapshotStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Load(ctx context.Context, key string) (*catalog.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	raw, ok := m.data[key]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	var snap catalog.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("storage: decode %s: %w", key, err)
	}
	return &snap, nil
}

func (m *MemoryStore) Save(ctx context.Context, key string, snap *catalog.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// Put stores raw bytes under a key. Tests use it to plant corrupt snapshots.
func (m *MemoryStore) Put(key string, raw []byte) {
	m.mu.Lock()
	m.data[key] = append([]byte(nil), raw...)
	m.mu.Unlock()
}

// Len reports how many snapshots are held.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
