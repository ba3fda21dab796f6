package draft

import (
	"context"
	"sync"
)

// Store persists a single draft.
type Store interface {
	// Get returns the stored draft, or def when nothing has been stored yet.
	Get(ctx context.Context, def Draft) (Draft, error)
	// Set atomically replaces the stored draft with the result of update.
	Set(ctx context.Context, update func(Draft) (Draft, error)) error
}

// MemoryStore keeps the encoded draft in memory.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get(ctx context.Context, def Draft) (Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return def, nil
	}
	return Decode(m.data)
}

func (m *MemoryStore) Set(ctx context.Context, update func(Draft) (Draft, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, err := Decode(m.data)
	if err != nil {
		return err
	}
	next, err := update(current)
	if err != nil {
		return err
	}
	data, err := Encode(next)
	if err != nil {
		return err
	}
	m.data = data
	return nil
}
