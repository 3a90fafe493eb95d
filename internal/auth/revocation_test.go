package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func setupRedisList(t *testing.T) (*RedisRevocationList, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRevocationList(client), mr
}

func TestRedisRevocationList(t *testing.T) {
	list, _ := setupRedisList(t)
	ctx := context.Background()

	revoked, err := list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, list.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))

	revoked, err = list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	// Revoking twice is a no-op.
	require.NoError(t, list.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
}

func TestRedisRevocationList_ExpiresAtNaturalExpiry(t *testing.T) {
	list, mr := setupRedisList(t)
	ctx := context.Background()

	require.NoError(t, list.Revoke(ctx, "jti-2", time.Now().Add(time.Minute)))

	mr.FastForward(2 * time.Minute)

	revoked, err := list.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestRedisRevocationList_PastExpiryIsNoop(t *testing.T) {
	list, _ := setupRedisList(t)
	ctx := context.Background()

	require.NoError(t, list.Revoke(ctx, "jti-3", time.Now().Add(-time.Minute)))

	revoked, err := list.IsRevoked(ctx, "jti-3")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestMemoryRevocationList(t *testing.T) {
	t.Parallel()

	list := NewMemoryRevocationList()
	ctx := context.Background()

	revoked, err := list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, list.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))

	revoked, err = list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestMemoryRevocationList_Sweep(t *testing.T) {
	t.Parallel()

	list := NewMemoryRevocationList()
	ctx := context.Background()

	require.NoError(t, list.Revoke(ctx, "live", time.Now().Add(time.Hour)))
	list.mu.Lock()
	list.entries["stale"] = time.Now().Add(-time.Minute)
	list.mu.Unlock()

	list.Sweep()

	list.mu.RLock()
	defer list.mu.RUnlock()
	require.Contains(t, list.entries, "live")
	require.NotContains(t, list.entries, "stale")
}
