// internal/lifecycle/cooldown_redis.go
package lifecycle

import (
	"context"
	"time"

	gwerrors "application-gateway/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

const cooldownKeyPrefix = "cooldown:"

// RedisLedger is a CooldownLedger backed by Redis. Expiry is delegated to
// the key TTL; the stored value carries the absolute deadline so the
// remaining duration can be reported without a second round trip.
type RedisLedger struct {
	client *redis.Client
}

func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

func (l *RedisLedger) IsBlocked(ctx context.Context, identity string, now time.Time) (bool, time.Duration, error) {
	val, err := l.client.Get(ctx, cooldownKeyPrefix+identity).Result()
	if err == redis.Nil {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, gwerrors.NewStorageError("cooldown.get", err)
	}

	blockedUntil, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		// Unreadable entry, drop it rather than blocking forever.
		_ = l.client.Del(ctx, cooldownKeyPrefix+identity).Err()
		return false, 0, nil
	}

	if !blockedUntil.After(now) {
		if err := l.client.Del(ctx, cooldownKeyPrefix+identity).Err(); err != nil {
			return false, 0, gwerrors.NewStorageError("cooldown.evict", err)
		}
		return false, 0, nil
	}

	return true, blockedUntil.Sub(now), nil
}

func (l *RedisLedger) Block(ctx context.Context, identity string, now time.Time, duration time.Duration) error {
	blockedUntil := now.Add(duration)
	err := l.client.Set(ctx, cooldownKeyPrefix+identity, blockedUntil.Format(time.RFC3339Nano), duration).Err()
	if err != nil {
		return gwerrors.NewStorageError("cooldown.block", err)
	}
	return nil
}
