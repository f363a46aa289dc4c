package redis

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-booking/internal/logger"
)

const lockKeyPrefix = "event_booking_lock:"

// Redis holds a short-TTL lock per event so booking attempts against the
// same event are serialized across service instances. Correctness does not
// depend on the lock: the conditional seat update in the database is the
// final guard even if a lock expires mid-operation.
type Redis struct {
	Client *redis.Client
	Logger *logger.Logger
}

func NewRedis(client *redis.Client, log *logger.Logger) *Redis {
	return &Redis{Client: client, Logger: log}
}

// lockTTL reads the lock duration from BOOKING_LOCK_TTL_SECONDS, default 10s.
func (r *Redis) lockTTL() time.Duration {
	ttlStr := os.Getenv("BOOKING_LOCK_TTL_SECONDS")
	if ttlStr == "" {
		return 10 * time.Second
	}
	ttlSec, err := strconv.Atoi(ttlStr)
	if err != nil || ttlSec <= 0 {
		r.Logger.Warn("REDIS", fmt.Sprintf("Invalid BOOKING_LOCK_TTL_SECONDS value %q, using default 10s", ttlStr))
		return 10 * time.Second
	}
	return time.Duration(ttlSec) * time.Second
}

// LockEvent tries to take the per-event lock once. ref identifies the
// holder so only the owner can release it.
func (r *Redis) LockEvent(eventID, ref string) (bool, error) {
	key := lockKeyPrefix + eventID
	return r.Client.SetNX(context.Background(), key, ref, r.lockTTL()).Result()
}

// UnlockEvent releases the lock if ref still holds it. A lock that expired
// and was re-taken by someone else is left alone.
func (r *Redis) UnlockEvent(eventID, ref string) error {
	ctx := context.Background()
	key := lockKeyPrefix + eventID

	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if val == ref {
		_, err := r.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
