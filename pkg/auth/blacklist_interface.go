package auth

import "time"

// BlacklistInterface tracks revoked tokens until they expire.
type BlacklistInterface interface {
	// AddToBlacklist marks a token as revoked until expireAt.
	AddToBlacklist(token string, expireAt time.Time) error

	// IsBlacklisted reports whether a token has been revoked.
	IsBlacklisted(token string) bool
}

// BlacklistType selects the blacklist backend.
type BlacklistType string

const (
	// MemoryBlacklist keeps revoked tokens in process memory.
	MemoryBlacklist BlacklistType = "memory"
	// RedisBlacklist keeps revoked tokens in redis with a local cache.
	RedisBlacklist BlacklistType = "redis"
)

// GetBlacklist returns the blacklist implementation for the given type.
func GetBlacklist(blacklistType BlacklistType) BlacklistInterface {
	switch blacklistType {
	case RedisBlacklist:
		return GetRedisTokenBlacklist()
	case MemoryBlacklist:
		fallthrough
	default:
		return GetTokenBlacklist()
	}
}
