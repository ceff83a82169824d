package conversation

import (
	"context"
	"sync"
)

// Store persists a History per session key.
type Store interface {
	// Load returns the history for key. Unknown keys yield an empty history.
	Load(ctx context.Context, key string) (History, error)

	// Save replaces the history stored under key.
	Save(ctx context.Context, key string, h History) error

	// Clear removes the history stored under key.
	Clear(ctx context.Context, key string) error
}

// MemoryStore keeps histories in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]History
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]History)}
}

func (s *MemoryStore) Load(_ context.Context, key string) (History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[key].Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, key string, h History) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = h.Clone()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
	return nil
}

// Len returns the number of sessions currently held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
