// internal/lifecycle/cooldown_test.go
package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedger_BlockAndExpiry(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	blocked, _, err := ledger.IsBlocked(ctx, "u1", now)
	require.NoError(t, err)
	assert.False(t, blocked)

	require.NoError(t, ledger.Block(ctx, "u1", now, 30*24*time.Hour))

	blocked, remaining, err := ledger.IsBlocked(ctx, "u1", now.Add(time.Millisecond))
	require.NoError(t, err)
	assert.True(t, blocked)
	assert.Equal(t, 30*24*time.Hour-time.Millisecond, remaining)

	// Exactly at the deadline the entry is expired and lazily evicted.
	blocked, _, err = ledger.IsBlocked(ctx, "u1", now.Add(30*24*time.Hour))
	require.NoError(t, err)
	assert.False(t, blocked)

	blocked, _, err = ledger.IsBlocked(ctx, "u1", now.Add(30*24*time.Hour))
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestMemoryLedger_BlockResetsDeadline(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, ledger.Block(ctx, "u1", now, time.Hour))
	require.NoError(t, ledger.Block(ctx, "u1", now.Add(30*time.Minute), time.Hour))

	blocked, remaining, err := ledger.IsBlocked(ctx, "u1", now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.True(t, blocked)
	assert.Equal(t, time.Hour, remaining)
}

func TestMemoryLedger_IdentitiesAreIndependent(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()
	now := time.Now()

	require.NoError(t, ledger.Block(ctx, "u1", now, time.Hour))

	blocked, _, err := ledger.IsBlocked(ctx, "u2", now)
	require.NoError(t, err)
	assert.False(t, blocked)
}
