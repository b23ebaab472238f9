// Package utils holds small helpers shared by this module's containers.
package utils

import (
	"sync"
)

// OptionalRWMutex guards an intrusive container that may or may not be shared between
// goroutines. The zero value never locks, which suits a container confined to one
// goroutine; setting UseMutex before first use makes every method lock the embedded
// sync.RWMutex.
//
// UseMutex must not change while the container is in use, or a lock taken with it set
// would be released with it cleared.
type OptionalRWMutex struct {
	Mutex    sync.RWMutex
	UseMutex bool
}

// Lock takes the write lock, if locking is enabled.
func (m *OptionalRWMutex) Lock() {
	if m.UseMutex {
		m.Mutex.Lock()
	}
}

// Unlock releases the write lock, if locking is enabled.
func (m *OptionalRWMutex) Unlock() {
	if m.UseMutex {
		m.Mutex.Unlock()
	}
}

// RLock takes a read lock, if locking is enabled.
func (m *OptionalRWMutex) RLock() {
	if m.UseMutex {
		m.Mutex.RLock()
	}
}

// RUnlock releases a read lock, if locking is enabled.
func (m *OptionalRWMutex) RUnlock() {
	if m.UseMutex {
		m.Mutex.RUnlock()
	}
}

// Locking reports whether the mutex actually locks.
func (m *OptionalRWMutex) Locking() bool {
	return m.UseMutex
}
