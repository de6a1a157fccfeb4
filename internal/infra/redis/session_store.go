package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"syntax-quiz/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// SessionStore is a Redis implementation of app.SessionRepository.
// Each session is one JSON document at quiz:session:{id}; every save refreshes the TTL,
// so abandoned sessions expire on their own.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *SessionStore) Save(ctx context.Context, sessionID string, state domain.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Load(ctx context.Context, sessionID string) (domain.SessionState, error) {
	// Concurrent readers of one session share a single GET.
	result, err, _ := s.sf.Do(sessionID, func() (interface{}, error) {
		raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.SessionState{}, domain.ErrSessionNotFound
		}
		if err != nil {
			return domain.SessionState{}, fmt.Errorf("load session: %w", err)
		}
		var state domain.SessionState
		if err := json.Unmarshal(raw, &state); err != nil {
			return domain.SessionState{}, fmt.Errorf("unmarshal session: %w", err)
		}
		return state, nil
	})
	if err != nil {
		return domain.SessionState{}, err
	}
	return result.(domain.SessionState), nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) key(sessionID string) string {
	return "quiz:session:" + sessionID
}
