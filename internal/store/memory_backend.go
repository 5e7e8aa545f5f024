package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps collections in process memory. Test use only.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (backend *MemoryBackend) Read(_ context.Context, key string) ([]byte, error) {
	backend.mu.RLock()
	defer backend.mu.RUnlock()
	data, ok := backend.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (backend *MemoryBackend) Write(_ context.Context, key string, data []byte) error {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	backend.data[key] = append([]byte(nil), data...)
	return nil
}

func (backend *MemoryBackend) Close() error {
	return nil
}
