package management

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests and local development.
type MemoryStore struct {
	mu         sync.Mutex
	loginCount int64
	sessions   map[string]time.Time
	term       Term
	now        func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: map[string]time.Time{},
		now:      time.Now,
	}
}

func (s *MemoryStore) IncrementLoginCount(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginCount++
	return s.loginCount, nil
}

func (s *MemoryStore) LoginCount(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginCount, nil
}

func (s *MemoryStore) SaveSession(_ context.Context, sessionID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = s.now().Add(ttl)
	return nil
}

func (s *MemoryStore) SessionExists(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.sessions[sessionID]
	if !ok {
		return false, nil
	}
	if s.now().After(expiry) {
		delete(s.sessions, sessionID)
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) Term(context.Context) (Term, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term, nil
}

func (s *MemoryStore) SetTerm(_ context.Context, term Term) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.term = term
	return nil
}
