package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

var ErrNotFound = errors.New("session not found")

// Store keeps sessions in Redis keyed by a random id. Deleting the key logs
// the user out everywhere immediately; expiry is enforced by the key TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

func key(id string) string {
	return keyPrefix + id
}

func (s *Store) Create(ctx context.Context, userID int64) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}

	sid := id.String()
	if err := s.client.Set(ctx, key(sid), strconv.FormatInt(userID, 10), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return sid, nil
}

func (s *Store) UserID(ctx context.Context, sessionID string) (int64, error) {
	val, err := s.client.Get(ctx, key(sessionID)).Result()
	if err == redis.Nil {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load session: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session value: %w", err)
	}

	return userID, nil
}

func (s *Store) Destroy(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, key(sessionID)).Err()
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}
