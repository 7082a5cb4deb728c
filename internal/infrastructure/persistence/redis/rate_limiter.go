package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RateLimiter 基于 Redis ZSET 的滑动窗口限流器。
// 键由调用方构建（HTTP 中间件按 客户端IP+路径 组键）。
type RateLimiter struct {
	client *Client
}

func NewRateLimiter(client *Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// Allow 判断窗口内是否还允许一次请求。
// 先清理窗口外成员并读取存量计数，未超限时才写入本次请求并顺延过期时间。
func (l *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	ctx, span := tracer.Start(ctx, "redis.RateLimitAllow",
		trace.WithAttributes(
			attribute.String("key", key),
			attribute.Int("limit", limit),
		))
	defer span.End()

	now := time.Now()
	used, err := l.pruneAndCount(ctx, key, now, window)
	if err != nil {
		span.RecordError(err)
		return false, err
	}

	allowed := used < int64(limit)
	span.SetAttributes(
		attribute.Int64("used", used),
		attribute.Bool("allowed", allowed),
	)
	if !allowed {
		return false, nil
	}
	l.admit(ctx, key, now, window)
	return true, nil
}

// pruneAndCount 在同一个 pipeline 里丢弃窗口外成员并返回存量计数
func (l *RateLimiter) pruneAndCount(ctx context.Context, key string, now time.Time, window time.Duration) (int64, error) {
	cutoff := strconv.FormatInt(now.Add(-window).UnixMilli(), 10)

	pipe := l.client.rdb.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", cutoff)
	count := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return count.Val(), nil
}

// admit 记录本次请求；键保留两个窗口长度，便于临近窗口的清理复用
func (l *RateLimiter) admit(ctx context.Context, key string, now time.Time, window time.Duration) {
	ms := now.UnixMilli()
	l.client.rdb.ZAdd(ctx, key, redis.Z{
		Score:  float64(ms),
		Member: strconv.FormatInt(ms, 10),
	})
	l.client.rdb.Expire(ctx, key, window*2)
}
