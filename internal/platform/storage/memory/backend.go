package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/Apurer/adoptionos/internal/platform/storage/ports"
)

var _ ports.Backend = (*Backend)(nil)

// Backend keeps values in process memory. It is the fallback for every other backend.
type Backend struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewBackend constructs an empty in-memory backend.
func NewBackend() *Backend {
	return &Backend{entries: map[string]string{}}
}

func (b *Backend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	value, ok := b.entries[key]
	return value, ok, nil
}

func (b *Backend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[key] = value
	return nil
}

func (b *Backend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, key)
	return nil
}

func (b *Backend) Clear(_ context.Context, prefix string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if prefix == "" {
		b.entries = map[string]string{}
		return nil
	}
	for key := range b.entries {
		if strings.HasPrefix(key, prefix) {
			delete(b.entries, key)
		}
	}
	return nil
}

// Len reports the number of stored keys.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}
