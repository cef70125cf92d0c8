package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-process ObjectStore used in tests and local
// experimentation. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[CanonicalKey(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	out := make([]byte, len(data))
	copy(out, data)

	return out, nil
}

func (s *MemoryStore) Put(_ context.Context, path string, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[CanonicalKey(path)] = stored

	return nil
}

func (s *MemoryStore) Exists(_ context.Context, path string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.objects[CanonicalKey(path)]

	return ok, nil
}

func (s *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	keyPrefix := CanonicalKey(prefix)
	if keyPrefix != "" {
		keyPrefix = strings.TrimRight(keyPrefix, "/") + "/"
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var paths []string
	for key := range s.objects {
		if !strings.HasPrefix(key, keyPrefix) {
			continue
		}

		// One level only.
		if strings.Contains(key[len(keyPrefix):], "/") {
			continue
		}

		paths = append(paths, key)
	}

	sort.Strings(paths)

	return paths, nil
}

func (s *MemoryStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := CanonicalKey(path)
	if _, ok := s.objects[key]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	delete(s.objects, key)

	return nil
}

// Len reports the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.objects)
}
