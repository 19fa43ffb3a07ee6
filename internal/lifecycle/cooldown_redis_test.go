// internal/lifecycle/cooldown_redis_test.go
package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRedisLedger(t *testing.T) (*RedisLedger, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisLedger(client), mr
}

func TestRedisLedger_BlockAndQuery(t *testing.T) {
	ctx := context.Background()
	ledger, _ := createTestRedisLedger(t)
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	blocked, _, err := ledger.IsBlocked(ctx, "u1", now)
	require.NoError(t, err)
	assert.False(t, blocked)

	require.NoError(t, ledger.Block(ctx, "u1", now, 30*24*time.Hour))

	blocked, remaining, err := ledger.IsBlocked(ctx, "u1", now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, blocked)
	assert.Equal(t, 30*24*time.Hour-time.Hour, remaining)
}

func TestRedisLedger_EvictsPastDeadline(t *testing.T) {
	ctx := context.Background()
	ledger, mr := createTestRedisLedger(t)
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, ledger.Block(ctx, "u1", now, time.Hour))

	// The key may still exist when the stored deadline has passed; the
	// read must treat it as expired and delete it.
	blocked, _, err := ledger.IsBlocked(ctx, "u1", now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, blocked)
	assert.False(t, mr.Exists(cooldownKeyPrefix+"u1"))
}

func TestRedisLedger_DropsUnreadableEntry(t *testing.T) {
	ctx := context.Background()
	ledger, mr := createTestRedisLedger(t)

	require.NoError(t, mr.Set(cooldownKeyPrefix+"u1", "not-a-timestamp"))

	blocked, _, err := ledger.IsBlocked(ctx, "u1", time.Now())
	require.NoError(t, err)
	assert.False(t, blocked)
	assert.False(t, mr.Exists(cooldownKeyPrefix+"u1"))
}
