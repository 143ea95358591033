package utils

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist remembers revoked token ids until they would have expired.
type TokenBlacklist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryBlacklist keeps revoked ids in process memory.
type MemoryBlacklist struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
	now    func() time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{
		tokens: make(map[string]time.Time),
		now:    time.Now,
	}
}

func (b *MemoryBlacklist) Revoke(_ context.Context, tokenID string, until time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens[tokenID] = until
	b.pruneLocked()
	return nil
}

func (b *MemoryBlacklist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	expiry, exists := b.tokens[tokenID]
	return exists && b.now().Before(expiry), nil
}

// pruneLocked drops entries past their expiry; callers hold the write lock.
func (b *MemoryBlacklist) pruneLocked() {
	now := b.now()
	for id, expiry := range b.tokens {
		if !now.Before(expiry) {
			delete(b.tokens, id)
		}
	}
}

// RedisBlacklist stores revoked ids as expiring marker keys.
type RedisBlacklist struct {
	Client *redis.Client
	Prefix string
}

func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{Client: client, Prefix: "revoked:"}
}

func (b *RedisBlacklist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return b.Client.Set(ctx, b.Prefix+tokenID, "1", ttl).Err()
}

func (b *RedisBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := b.Client.Exists(ctx, b.Prefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
