package storage

import (
	"context"
	"sync"
)

// MemoryAdapter keeps records in process memory. Nothing survives a restart.
type MemoryAdapter struct {
	mu   sync.Mutex
	data map[string]map[string]Record
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{data: make(map[string]map[string]Record)}
}

func (m *MemoryAdapter) ReadAll(_ context.Context, namespace string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Record, 0, len(m.data[namespace]))
	for _, rec := range m.data[namespace] {
		out = append(out, rec)
	}
	sortRecords(out)
	return out, nil
}

func (m *MemoryAdapter) WriteOne(_ context.Context, namespace, id string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.data[namespace]
	if !ok {
		bucket = make(map[string]Record)
		m.data[namespace] = bucket
	}
	rec.ID = id
	bucket[id] = rec
	return nil
}

func (m *MemoryAdapter) DeleteOne(_ context.Context, namespace, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[namespace][id]; !ok {
		return ErrNotFound
	}
	delete(m.data[namespace], id)
	return nil
}
