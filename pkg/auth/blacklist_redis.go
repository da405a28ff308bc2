package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lucidpath/wellness-api/internal/database"
	"github.com/lucidpath/wellness-api/internal/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisTokenBlacklist stores revoked tokens in redis with a small local
// cache in front of it.
type RedisTokenBlacklist struct {
	redis      *redis.Client
	localCache map[string]time.Time
	mutex      sync.RWMutex
	ctx        context.Context
}

var (
	redisBlacklist     *RedisTokenBlacklist
	redisBlacklistOnce sync.Once
)

const (
	blacklistKeyPrefix     = "jwt:blacklist:"
	localCacheSyncInterval = 5 * time.Minute
	maxLocalCacheSize      = 10000
)

// GetRedisTokenBlacklist returns the redis-backed blacklist singleton.
func GetRedisTokenBlacklist() *RedisTokenBlacklist {
	redisBlacklistOnce.Do(func() {
		redisBlacklist = &RedisTokenBlacklist{
			redis:      database.GetRedis(),
			localCache: make(map[string]time.Time),
			ctx:        context.Background(),
		}
		go redisBlacklist.syncLocalCache()
	})
	return redisBlacklist
}

// AddToBlacklist marks a token as revoked until expireAt.
func (b *RedisTokenBlacklist) AddToBlacklist(token string, expireAt time.Time) error {
	duration := time.Until(expireAt)
	if duration <= 0 {
		return nil // already expired
	}

	key := blacklistKeyPrefix + token
	if err := b.redis.Set(b.ctx, key, "1", duration).Err(); err != nil {
		logger.Error("add token to redis blacklist failed", zap.Error(err))
		return fmt.Errorf("blacklist token: %w", err)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	if len(b.localCache) >= maxLocalCacheSize {
		b.cleanupLocalCacheUnsafe()
	}
	b.localCache[token] = expireAt

	return nil
}

// IsBlacklisted reports whether a token has been revoked. The local cache is
// consulted first; on redis failure only the local cache is trusted.
func (b *RedisTokenBlacklist) IsBlacklisted(token string) bool {
	b.mutex.RLock()
	expireAt, exists := b.localCache[token]
	b.mutex.RUnlock()

	if exists {
		if time.Now().After(expireAt) {
			b.mutex.Lock()
			delete(b.localCache, token)
			b.mutex.Unlock()
		} else {
			return true
		}
	}

	key := blacklistKeyPrefix + token
	result, err := b.redis.Exists(b.ctx, key).Result()
	if err != nil {
		logger.Error("check redis blacklist failed", zap.Error(err))
		return false
	}

	if result > 0 {
		ttl := b.redis.TTL(b.ctx, key).Val()
		if ttl > 0 {
			expireAt := time.Now().Add(ttl)
			b.mutex.Lock()
			b.localCache[token] = expireAt
			b.mutex.Unlock()
		}
		return true
	}

	return false
}

func (b *RedisTokenBlacklist) syncLocalCache() {
	ticker := time.NewTicker(localCacheSyncInterval)
	defer ticker.Stop()

	for range ticker.C {
		b.mutex.Lock()
		b.cleanupLocalCacheUnsafe()
		b.mutex.Unlock()
	}
}

func (b *RedisTokenBlacklist) cleanupLocalCacheUnsafe() {
	now := time.Now()
	for token, expireAt := range b.localCache {
		if now.After(expireAt) {
			delete(b.localCache, token)
		}
	}
}
