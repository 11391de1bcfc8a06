package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "sess:"

// SessionStorage adapts a Redis client to fiber's session Storage interface
// so sessions survive server restarts and are shared across instances.
type SessionStorage struct {
	rdb *redis.Client
}

// NewSessionStorage returns a Redis-backed session store, or nil when the
// Redis client is unavailable (fiber then falls back to in-memory storage).
func NewSessionStorage(rdb *redis.Client) *SessionStorage {
	if rdb == nil {
		return nil
	}
	return &SessionStorage{rdb: rdb}
}

// Get retrieves the session payload for the given key. A missing key returns
// (nil, nil) as the fiber Storage contract requires.
func (s *SessionStorage) Get(key string) ([]byte, error) {
	val, err := s.rdb.Get(context.Background(), sessionKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

// Set stores the session payload under the given key with an expiry.
func (s *SessionStorage) Set(key string, val []byte, exp time.Duration) error {
	return s.rdb.Set(context.Background(), sessionKeyPrefix+key, val, exp).Err()
}

// Delete removes the session payload for the given key.
func (s *SessionStorage) Delete(key string) error {
	return s.rdb.Del(context.Background(), sessionKeyPrefix+key).Err()
}

// Reset removes all session payloads.
func (s *SessionStorage) Reset() error {
	ctx := context.Background()
	iter := s.rdb.Scan(ctx, 0, sessionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close is a no-op; the Redis client lifetime is managed by the server.
func (s *SessionStorage) Close() error {
	return nil
}
