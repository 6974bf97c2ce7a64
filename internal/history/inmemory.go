package history

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore keeps histories in process memory. Suitable for tests and
// single-node deployments.
type InMemoryStore struct {
	mu       sync.RWMutex
	messages map[string][]Message
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{messages: map[string][]Message{}}
}

func (s *InMemoryStore) Append(ctx context.Context, workspaceID string, msg Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[workspaceID] = append(s.messages[workspaceID], msg)
	return nil
}

func (s *InMemoryStore) Recent(ctx context.Context, workspaceID string, n int) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[workspaceID]
	if n > 0 && len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *InMemoryStore) All(ctx context.Context, workspaceID string) ([]Message, error) {
	return s.Recent(ctx, workspaceID, 0)
}

func (s *InMemoryStore) Clear(ctx context.Context, workspaceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, workspaceID)
	return nil
}
