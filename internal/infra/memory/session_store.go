package memory

import (
	"context"
	"sync"

	"syntax-quiz/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.SessionState
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.SessionState),
	}
}

func (s *SessionStore) Save(_ context.Context, sessionID string, state domain.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = state
	return nil
}

func (s *SessionStore) Load(_ context.Context, sessionID string) (domain.SessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	return state, nil
}

func (s *SessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Len reports how many sessions are stored.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
