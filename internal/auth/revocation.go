package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

// RevocationList records token IDs that must be rejected before their
// natural expiry. Logout and refresh revoke the presented token; the
// middleware consults the list after signature validation.
type RevocationList interface {
	// Revoke marks jti as revoked until its natural expiry at `until`.
	Revoke(ctx context.Context, jti string, until time.Time) error
	// IsRevoked reports whether jti has been revoked. Revoking an
	// already-revoked token is a no-op, so both calls are idempotent.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

const revokedKeyPrefix = "revoked:"

// RedisRevocationList stores revoked token IDs in Redis, letting key
// TTLs expire entries at the token's natural expiry.
type RedisRevocationList struct {
	client *redis.Client
}

// NewRedisRevocationList creates a revocation list backed by the given
// Redis client.
func NewRedisRevocationList(client *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{client: client}
}

func (l *RedisRevocationList) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		// Already past natural expiry; validation rejects it anyway.
		return nil
	}
	return l.client.Set(ctx, revokedKeyPrefix+jti, 1, ttl).Err()
}

func (l *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := l.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryRevocationList is the single-process fallback used when no
// Redis address is configured. Entries are swept on a cron schedule
// once their tokens have expired naturally.
type MemoryRevocationList struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	cron    *cron.Cron
}

// NewMemoryRevocationList creates an empty in-memory revocation list.
func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{entries: make(map[string]time.Time)}
}

func (l *MemoryRevocationList) Revoke(_ context.Context, jti string, until time.Time) error {
	if time.Now().After(until) {
		return nil
	}
	l.mu.Lock()
	l.entries[jti] = until
	l.mu.Unlock()
	return nil
}

func (l *MemoryRevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	l.mu.RLock()
	until, ok := l.entries[jti]
	l.mu.RUnlock()
	return ok && time.Now().Before(until), nil
}

// Sweep removes entries whose tokens have passed natural expiry.
func (l *MemoryRevocationList) Sweep() {
	now := time.Now()
	l.mu.Lock()
	for jti, until := range l.entries {
		if now.After(until) {
			delete(l.entries, jti)
		}
	}
	l.mu.Unlock()
}

// StartSweeper runs Sweep on the given cron spec (e.g. "@every 10m")
// until Stop is called.
func (l *MemoryRevocationList) StartSweeper(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, l.Sweep); err != nil {
		return err
	}
	c.Start()
	l.cron = c
	return nil
}

// Stop halts the background sweeper.
func (l *MemoryRevocationList) Stop() {
	if l.cron != nil {
		l.cron.Stop()
	}
}
