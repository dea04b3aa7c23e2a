package storage

import (
	"context"
	"sync"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
)

// Memory keeps payloads in process memory. Nothing survives a restart.
type Memory struct {
	mu   sync.RWMutex
	data map[budget.Key][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[budget.Key][]byte)}
}

func (m *Memory) Load(_ context.Context, key budget.Key) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	payload, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}

	return append([]byte(nil), payload...), true, nil
}

func (m *Memory) Save(_ context.Context, key budget.Key, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), payload...)

	return nil
}

func (m *Memory) Remove(_ context.Context, key budget.Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)

	return nil
}
