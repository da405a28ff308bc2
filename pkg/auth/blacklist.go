package auth

import (
	"sync"
	"time"
)

// TokenBlacklist is the in-memory blacklist implementation.
type TokenBlacklist struct {
	tokens map[string]time.Time // token -> expiry
	mutex  sync.RWMutex
}

var (
	blacklist     *TokenBlacklist
	blacklistOnce sync.Once
)

// GetTokenBlacklist returns the in-memory blacklist singleton.
func GetTokenBlacklist() *TokenBlacklist {
	blacklistOnce.Do(func() {
		blacklist = &TokenBlacklist{
			tokens: make(map[string]time.Time),
		}
		go blacklist.cleanupTask()
	})
	return blacklist
}

// AddToBlacklist marks a token as revoked until expireAt.
func (b *TokenBlacklist) AddToBlacklist(token string, expireAt time.Time) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.tokens[token] = expireAt
	return nil
}

// IsBlacklisted reports whether a token has been revoked.
func (b *TokenBlacklist) IsBlacklisted(token string) bool {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	_, exists := b.tokens[token]
	return exists
}

func (b *TokenBlacklist) cleanupTask() {
	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		b.cleanup()
	}
}

func (b *TokenBlacklist) cleanup() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	now := time.Now()
	for token, expireAt := range b.tokens {
		if now.After(expireAt) {
			delete(b.tokens, token)
		}
	}
}
