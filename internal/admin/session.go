package admin

import (
	"sync"
	"time"
)

// sessionStore tracks pending broadcast sessions keyed by admin ID.
type sessionStore struct {
	mu      sync.Mutex
	pending map[int64]time.Time
	ttl     time.Duration
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		pending: make(map[int64]time.Time),
		ttl:     ttl,
	}
}

func (s *sessionStore) begin(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[id] = time.Now()
}

// take removes the session and reports whether it was still live.
func (s *sessionStore) take(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	started, ok := s.pending[id]
	if !ok {
		return false
	}
	delete(s.pending, id)

	return time.Since(started) < s.ttl
}
