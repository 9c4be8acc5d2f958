package contextstore

import (
	"context"
	"sync"

	"github.com/yanqian/slacksum-agent/internal/domain/agent"
)

// MemoryStore keeps conversation context in process memory. Keys are never evicted.
type MemoryStore struct {
	mu      sync.RWMutex
	limit   int
	entries map[string][]agent.ContextEntry
}

// NewMemoryStore constructs a store that keeps the last limit entries per conversation.
func NewMemoryStore(limit int) *MemoryStore {
	return &MemoryStore{
		limit:   limit,
		entries: make(map[string][]agent.ContextEntry),
	}
}

// Get implements agent.ContextStore.
func (s *MemoryStore) Get(_ context.Context, key agent.ConversationKey) ([]agent.ContextEntry, error) {
	id := key.String()
	s.mu.RLock()
	list, ok := s.entries[id]
	out := make([]agent.ContextEntry, len(list))
	copy(out, list)
	s.mu.RUnlock()

	if !ok {
		s.mu.Lock()
		if _, exists := s.entries[id]; !exists {
			s.entries[id] = []agent.ContextEntry{}
		}
		s.mu.Unlock()
	}
	return out, nil
}

// Append implements agent.ContextStore.
func (s *MemoryStore) Append(_ context.Context, key agent.ConversationKey, entry agent.ContextEntry) error {
	id := key.String()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = lastN(append(s.entries[id], entry), s.limit)
	return nil
}

// Trim implements agent.ContextStore.
func (s *MemoryStore) Trim(_ context.Context, key agent.ConversationKey, limit int) error {
	id := key.String()
	s.mu.Lock()
	defer s.mu.Unlock()
	if list, ok := s.entries[id]; ok {
		s.entries[id] = lastN(list, limit)
	}
	return nil
}

// Len reports how many conversations are held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// lastN returns the most recent limit entries in a fresh slice so trimmed heads can be collected.
func lastN(list []agent.ContextEntry, limit int) []agent.ContextEntry {
	if limit <= 0 || len(list) <= limit {
		return list
	}
	out := make([]agent.ContextEntry, limit)
	copy(out, list[len(list)-limit:])
	return out
}

var _ agent.ContextStore = (*MemoryStore)(nil)
