package session

import (
	"context"
	"sync"
)

type memoryBackend struct {
	mu     sync.RWMutex
	fields map[string]string
}

// NewMemory returns a Store that keeps fields in process memory.
func NewMemory() *Store {
	return New(&memoryBackend{fields: make(map[string]string)})
}

func (m *memoryBackend) Load(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.fields[key]
	return v, ok, nil
}

func (m *memoryBackend) Save(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.fields[key] = value
	m.mu.Unlock()
	return nil
}

func (m *memoryBackend) Remove(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.fields, k)
	}
	m.mu.Unlock()
	return nil
}

func (m *memoryBackend) Close() error {
	return nil
}
