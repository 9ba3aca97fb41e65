package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a thread-safe in-process dedup store with TTL.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]time.Time // key -> expiry
}

// NewMemoryStore creates an in-memory dedup store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]time.Time),
	}
}

// Seen reports whether the key was marked and has not expired.
func (s *MemoryStore) Seen(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	expiry, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// Mark records the key for ttl.
func (s *MemoryStore) Mark(ctx context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	s.items[key] = time.Now().Add(ttl)
	s.mu.Unlock()
	return nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close releases the store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.items = make(map[string]time.Time)
	s.mu.Unlock()
	return nil
}
