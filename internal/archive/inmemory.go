package archive

import (
	"context"
	"sync"

	"github.com/antoniostano/adpulse/internal/trace"
)

// InMemoryStore is a simple in-process archive for local/dev use.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]trace.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]trace.Event)}
}

func (s *InMemoryStore) RecordEvent(_ context.Context, ev trace.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.ConversationID] = append(s.events[ev.ConversationID], ev)
	return nil
}

func (s *InMemoryStore) EventCount(_ context.Context, conversationID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events[conversationID]), nil
}

func (s *InMemoryStore) Close() error { return nil }
