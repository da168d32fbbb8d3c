package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultSessionTTL = 24 * time.Hour
	SessionCookie     = "session_id"

	sessionPrefix = "session:"
)

// SessionStore keeps server-side sessions in Redis, one key per session
// holding the user id, expiring after ttl.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionStore uses DefaultSessionTTL when ttl is not positive.
func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{rdb: rdb, ttl: ttl}
}

// TTL is how long a new session stays valid.
func (s *SessionStore) TTL() time.Duration { return s.ttl }

// Create opens a session for userID and returns its id.
func (s *SessionStore) Create(ctx context.Context, userID string) (string, error) {
	sid := uuid.NewString()
	ok, err := s.rdb.SetNX(ctx, sessionPrefix+sid, userID, s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("create session: id %s already in use", sid)
	}
	return sid, nil
}

// Get resolves a session id to its user id. Unknown, expired and empty ids
// yield "" with no error.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", nil
	}
	userID, err := s.rdb.Get(ctx, sessionPrefix+sessionID).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("get session: %w", err)
	}
	return userID, nil
}

// Delete ends a session. Deleting an unknown session is not an error.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.rdb.Del(ctx, sessionPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
