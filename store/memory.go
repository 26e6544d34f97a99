package store

import (
	"context"
	"sync"
)

// Memory is an in-memory Store used by tests and single-process setups.
type Memory struct {
	values map[string][]byte
	mu     sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{
		values: make(map[string][]byte),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, exists := m.values[key]
	if !exists {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.values[key] = stored
	return nil
}
