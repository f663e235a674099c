package adapter

import "sync"

// SharedPool is the single cell owning the active pool. At most one pool is
// active; Swap closes the previous pool before publishing the new one, and
// Close happens exactly once per pool. Readers take the lock only across a
// single pool call.
type SharedPool struct {
	mu   sync.RWMutex
	pool Pool
}

// NewSharedPool returns an empty cell.
func NewSharedPool() *SharedPool {
	return &SharedPool{}
}

// Get returns the active pool, or nil when disconnected.
func (s *SharedPool) Get() Pool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pool
}

// Swap installs p, closing the previous pool first. p may be nil to
// disconnect.
func (s *SharedPool) Swap(p Pool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool != nil {
		s.pool.Close()
	}
	s.pool = p
}

// Close closes and clears the active pool, if any.
func (s *SharedPool) Close() {
	s.Swap(nil)
}
