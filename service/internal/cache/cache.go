// internal/cache/cache.go
package cache

import (
	"context"
	"sync"

	"github.com/jason-s-yu/templesim/service/internal/experiment"
)

var (
	_ experiment.Cache = (*Memory)(nil)
	_ experiment.Cache = (*Redis)(nil)
)

// Memory is an in-process cache. The zero value is ready to use.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]experiment.Tally
}

// NewMemory returns an empty Memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]experiment.Tally)}
}

func (m *Memory) Get(_ context.Context, key string) (experiment.Tally, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.entries[key]
	return t, ok, nil
}

func (m *Memory) Set(_ context.Context, key string, t experiment.Tally) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string]experiment.Tally)
	}
	m.entries[key] = t
	return nil
}

// Len reports the number of cached tallies.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
