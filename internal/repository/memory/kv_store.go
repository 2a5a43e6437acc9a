package memory

import (
	"context"
	"sync"

	"github.com/Rrens/qorix-chat/internal/domain"
)

// KVStore keeps values in process memory; contents are lost on exit
type KVStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewKVStore() *KVStore {
	return &KVStore{
		values: make(map[string]string),
	}
}

func (s *KVStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (s *KVStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

func (s *KVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

func (s *KVStore) Ping(context.Context) error { return nil }

func (s *KVStore) Close() error { return nil }
