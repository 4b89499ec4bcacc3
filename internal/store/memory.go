package store

import (
	"context"
	"sync"
)

// MemoryUnreadStore is an in-process UnreadCounter used in development mode
// and tests. Unknown users count zero.
type MemoryUnreadStore struct {
	mu     sync.RWMutex
	counts map[string]int
}

// NewMemoryUnreadStore returns an empty in-memory store.
func NewMemoryUnreadStore() *MemoryUnreadStore {
	return &MemoryUnreadStore{counts: make(map[string]int)}
}

// CountUnread returns the stored count for a user.
func (s *MemoryUnreadStore) CountUnread(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[userID], nil
}

// Set replaces the count for a user.
func (s *MemoryUnreadStore) Set(userID string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[userID] = count
}

// Increment bumps the count for a user by one.
func (s *MemoryUnreadStore) Increment(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[userID]++
}
