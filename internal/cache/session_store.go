package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionPrefix = "session:"

// Session is the server-side record behind an issued session token.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStore keeps sessions in Redis so they can be revoked before the token expires.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) key(id string) string {
	return sessionPrefix + id
}

// Create stores a session under id for ttl.
func (s *SessionStore) Create(ctx context.Context, id string, session Session, ttl time.Duration) error {
	if s.client == nil {
		return ErrCacheNotAvailable
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session marshal error: %w", err)
	}

	if err := s.client.Set(ctx, s.key(id), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Get returns the session or ErrCacheNotFound when it expired or was deleted.
func (s *SessionStore) Get(ctx context.Context, id string) (*Session, error) {
	if s.client == nil {
		return nil, ErrCacheNotAvailable
	}

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheNotFound
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("session unmarshal error: %w", err)
	}
	return &session, nil
}

// Delete removes a session; deleting a missing session is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if s.client == nil {
		return nil
	}
	return s.client.Del(ctx, s.key(id)).Err()
}
