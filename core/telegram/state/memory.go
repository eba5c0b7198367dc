package state

import (
	"sync"
)

// Store is a keyed value store with per-key serialization.
type Store[K comparable, V any] interface {
	// Get returns the value stored for key and whether it exists.
	Get(key K) (V, bool)
	// Set replaces the value stored for key.
	Set(key K, value V)
	// Delete removes key. Deleting a missing key is a no-op.
	Delete(key K)
	// Lock blocks until the caller owns key and returns the release func.
	// Different keys never block each other.
	Lock(key K) (unlock func())
	// Len reports how many keys hold a value.
	Len() int
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// MemoryStore is the in-process Store implementation.
type MemoryStore[K comparable, V any] struct {
	mu     sync.RWMutex
	values map[K]V

	locksMu sync.Mutex
	locks   map[K]*keyLock
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore[K comparable, V any]() *MemoryStore[K, V] {
	return &MemoryStore[K, V]{
		values: make(map[K]V),
		locks:  make(map[K]*keyLock),
	}
}

// Get returns the value for key, or the zero value and false.
func (s *MemoryStore[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key, overwriting any previous value.
func (s *MemoryStore[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Delete removes key from the store.
func (s *MemoryStore[K, V]) Delete(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Len returns the number of stored values.
func (s *MemoryStore[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Lock acquires the per-key mutex. The mutex entry is dropped once no caller
// holds or waits for it, so idle chats do not accumulate locks.
func (s *MemoryStore[K, V]) Lock(key K) func() {
	s.locksMu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &keyLock{}
		s.locks[key] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			s.locksMu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(s.locks, key)
			}
			s.locksMu.Unlock()
		})
	}
}
