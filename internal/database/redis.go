package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/lucidpath/wellness-api/internal/config"
	"github.com/lucidpath/wellness-api/internal/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	// Redis is the shared client instance.
	Redis    *redis.Client
	redisOne sync.Once
)

// InitRedis opens the redis connection and verifies it with a ping.
func InitRedis() (*redis.Client, error) {
	cfg := config.GlobalConfig.Redis

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr()))
	return client, nil
}

// GetRedis returns the shared redis client, initializing it on first use.
func GetRedis() *redis.Client {
	var err error
	redisOne.Do(func() {
		Redis, err = InitRedis()
		if err != nil {
			panic(fmt.Sprintf("redis init failed: %v", err))
		}
	})
	return Redis
}
