package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps values in a map. Useful for tests and throwaway sessions.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
	used   int64
	quota  int64
	closed bool
}

func NewMemoryStore(quotaBytes int64) *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte), quota: quotaBytes}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	old := int64(len(s.values[key]))
	if err := checkQuota(s.quota, s.used, old, int64(len(value))); err != nil {
		return err
	}
	s.values[key] = append([]byte(nil), value...)
	s.used += int64(len(value)) - old
	return nil
}

func (s *MemoryStore) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
