package repo

import (
	"sync"

	"github.com/picn-go/icnfwd/defn"
)

// MemoryStore is a non-persistent Store, adapted from the teacher's
// trie-based MemoryStore. A flat map suffices here since this store is
// not on any hot loop and names are already hashable via String().
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (s *MemoryStore) Get(name defn.Name) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[name.String()], nil
}

func (s *MemoryStore) Put(name defn.Name, wire []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[name.String()] = wire
	return nil
}

func (s *MemoryStore) Remove(name defn.Name) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, name.String())
	return nil
}

func (s *MemoryStore) Iter(f func(name defn.Name, wire []byte)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k, wire := range s.entries {
		f(defn.NameFromString(k), wire)
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }
