package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const sessionTokenKeyPrefix = "session_token:"

// SessionCache keeps the currently active token per user in Redis so the
// auth gate does not hit the session table on every request. It is a
// write-through cache: login and logout update it alongside the database,
// and a miss always falls back to the persisted record.
type SessionCache struct {
	Client *redis.Client
}

func NewSessionCache(client *redis.Client) *SessionCache {
	return &SessionCache{Client: client}
}

func (c *SessionCache) key(userID string) string {
	return sessionTokenKeyPrefix + userID
}

// Get returns the cached active token for a user, or "" on a miss.
func (c *SessionCache) Get(ctx context.Context, userID string) (string, error) {
	token, err := c.Client.Get(ctx, c.key(userID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session token from redis: %w", err)
	}
	return token, nil
}

func (c *SessionCache) Set(ctx context.Context, userID, token string, ttl time.Duration) error {
	if err := c.Client.Set(ctx, c.key(userID), token, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session token in redis: %w", err)
	}
	return nil
}

func (c *SessionCache) Delete(ctx context.Context, userID string) error {
	if err := c.Client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session token from redis: %w", err)
	}
	return nil
}
