package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/lucidpath/wellness-api/internal/logger"
	"github.com/redis/go-redis/v9"
)

// ViewCounter batches thread view counts in redis and deduplicates repeat
// views from the same IP inside a time window. All operations are best
// effort: a nil client or redis failure never blocks a request.
type ViewCounter struct {
	redis       *redis.Client
	dedupWindow time.Duration
}

const (
	viewCountKeyPrefix = "forum:thread:views:"
	viewDedupKeyPrefix = "forum:thread:viewed:"
)

// NewViewCounter builds a view counter. client may be nil, in which case
// every call is a no-op.
func NewViewCounter(client *redis.Client, dedupWindow time.Duration) *ViewCounter {
	return &ViewCounter{redis: client, dedupWindow: dedupWindow}
}

// RecordView counts one view of a thread from the given IP. Repeat views
// inside the dedup window are ignored. Returns true when the view counted.
func (v *ViewCounter) RecordView(ctx context.Context, threadID uint, ip string) bool {
	if v.redis == nil {
		return false
	}

	dedupKey := fmt.Sprintf("%s%d:%s", viewDedupKeyPrefix, threadID, ip)
	ok, err := v.redis.SetNX(ctx, dedupKey, "1", v.dedupWindow).Result()
	if err != nil {
		logger.Warnf("view dedup check failed: %v", err)
		return false
	}
	if !ok {
		return false
	}

	countKey := fmt.Sprintf("%s%d", viewCountKeyPrefix, threadID)
	if err := v.redis.Incr(ctx, countKey).Err(); err != nil {
		logger.Warnf("view count increment failed: %v", err)
		return false
	}
	return true
}

// PendingViews drains the buffered view counts for all threads, returning
// threadID -> delta. Drained keys are deleted in the same pipeline.
func (v *ViewCounter) PendingViews(ctx context.Context) (map[uint]int64, error) {
	if v.redis == nil {
		return nil, nil
	}

	keys, err := v.redis.Keys(ctx, viewCountKeyPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("list view count keys: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	pipe := v.redis.TxPipeline()
	gets := make([]*redis.StringCmd, len(keys))
	for i, key := range keys {
		gets[i] = pipe.Get(ctx, key)
		pipe.Del(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("drain view counts: %w", err)
	}

	result := make(map[uint]int64, len(keys))
	for i, key := range keys {
		var threadID uint
		if _, err := fmt.Sscanf(key, viewCountKeyPrefix+"%d", &threadID); err != nil {
			continue
		}
		delta, err := gets[i].Int64()
		if err != nil || delta <= 0 {
			continue
		}
		result[threadID] = delta
	}
	return result, nil
}
