package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lumispa/booking-system/internal/core/domain"
)

// sessionKey is the fixed single-slot key for the persisted session record.
const sessionKey = "session:record"

// SessionStore persists the session record in Redis. One slot, no TTL: the
// record lives until sign-out or a failed profile resolution clears it.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Load reads the record, returning (nil, nil) when the slot is empty.
func (s *SessionStore) Load(ctx context.Context) (*domain.PersistedSession, error) {
	raw, err := s.client.Get(ctx, sessionKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("session load: %w", err)
	}

	var rec domain.PersistedSession
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	return &rec, nil
}

// Save writes the record, replacing any previous one.
func (s *SessionStore) Save(ctx context.Context, rec domain.PersistedSession) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

// Clear empties the slot. Deleting a missing key is a no-op in Redis, which
// gives sign-out its idempotence for free.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, sessionKey).Err(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}
