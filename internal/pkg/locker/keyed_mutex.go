// Package locker provides a mutex keyed by string identity. The order
// coordination handlers take the lock for an order's ID so that two concurrent
// mutations of the same order are serialized while mutations of different
// orders proceed in parallel.
package locker

import "sync"

// KeyedMutex serializes critical sections per key. Entries are reference
// counted and removed when the last holder unlocks, so the map does not grow
// with the number of distinct keys ever seen.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex creates an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[string]*keyLock),
	}
}

// Lock acquires the mutex for key, blocking while another goroutine holds it.
func (m *KeyedMutex) Lock(key string) {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &keyLock{}
		m.locks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
}

// Unlock releases the mutex for key. Unlocking a key that is not held panics,
// matching sync.Mutex semantics.
func (m *KeyedMutex) Unlock(key string) {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		m.mu.Unlock()
		panic("locker: unlock of unlocked key " + key)
	}
	l.refs--
	if l.refs == 0 {
		delete(m.locks, key)
	}
	m.mu.Unlock()

	l.mu.Unlock()
}

// Len reports the number of keys with live holders or waiters.
func (m *KeyedMutex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
