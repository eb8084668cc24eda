package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	userID  uint64
	expires time.Time
}

// MemoryStore keeps sessions in process memory.  It is used when Redis is
// unavailable and in tests; sessions do not survive a restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, sid string, userID uint64, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sid] = memoryEntry{userID: userID, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Load(_ context.Context, sid string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[sid]
	if !ok {
		return 0, ErrNotFound
	}
	if !s.now().Before(e.expires) {
		delete(s.entries, sid)
		return 0, ErrNotFound
	}
	return e.userID, nil
}

func (s *MemoryStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sid)
	return nil
}
