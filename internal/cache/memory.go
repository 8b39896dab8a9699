// SPDX-License-Identifier: AGPL-3.0-only
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/tarun-khatri/competitor-metrics/internal/model"
)

// MemoryStore is a mutex-guarded map store. It backs single-instance
// deployments without Redis and doubles as the test fake.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Get(_ context.Context, key string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return Entry{}, ErrMiss
	}
	return entry, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, data *model.SocialMediaData, expiration time.Duration) (Entry, error) {
	entry := Entry{
		Key:        key,
		Data:       data,
		Timestamp:  time.Now(),
		Expiration: expiration,
	}

	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()

	return entry, nil
}

// Len reports the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
