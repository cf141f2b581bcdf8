package artifacts

import (
	"sync"
)

// identityLocks serializes save/load per artifact identity. Locks are
// in-process only; cross-process coordination is not assumed by this layer.
type identityLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newIdentityLocks() *identityLocks {
	return &identityLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for one identity and returns the unlock func.
func (l *identityLocks) lock(id Identity) func() {
	key := id.String()

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
