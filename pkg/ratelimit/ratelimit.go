// Package ratelimit 提供限流抽象：进程内令牌桶（x/time/rate）与基于 Redis 的分布式 GCRA（redis_rate）
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// RateLimiter defines the interface for rate limiting
type RateLimiter interface {
	// Allow checks if the request is allowed for the given key and limit
	Allow(ctx context.Context, key string, limit Limit) (*Result, error)
}

// Limit defines the rate limit rule
type Limit struct {
	Rate   int
	Period time.Duration
	Burst  int
}

// PerSecond 将每秒请求数（可为小数）换算为 Limit
func PerSecond(rps float64, burst int) Limit {
	if burst < 1 {
		burst = 1
	}
	if rps <= 0 {
		return Limit{}
	}
	rate := int(math.Ceil(rps))
	return Limit{
		Rate:   rate,
		Period: time.Duration(float64(rate) / rps * float64(time.Second)),
		Burst:  burst,
	}
}

// IsZero 是否表示不限流
func (l Limit) IsZero() bool {
	return l.Rate <= 0 || l.Period <= 0
}

// Result represents the result of a rate limit check
type Result struct {
	Allowed    bool
	Remaining  int
	ResetAfter time.Duration
	RetryAfter time.Duration
}

// RedisRateLimiter implements RateLimiter using Redis, shared by every process using the same key
type RedisRateLimiter struct {
	limiter *redis_rate.Limiter
}

// NewRedisRateLimiter creates a new RedisRateLimiter
func NewRedisRateLimiter(rdb *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{
		limiter: redis_rate.NewLimiter(rdb),
	}
}

// Allow checks if the request is allowed
func (r *RedisRateLimiter) Allow(ctx context.Context, key string, limit Limit) (*Result, error) {
	res, err := r.limiter.Allow(ctx, key, redis_rate.Limit{
		Rate:   limit.Rate,
		Period: limit.Period,
		Burst:  limit.Burst,
	})
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	return &Result{
		Allowed:    res.Allowed > 0,
		Remaining:  res.Remaining,
		ResetAfter: res.ResetAfter,
		RetryAfter: res.RetryAfter,
	}, nil
}

// Waiter 在固定 key 与规则上阻塞等待配额
type Waiter struct {
	limiter RateLimiter
	key     string
	limit   Limit
}

// NewWaiter 创建 Waiter，limit 为零值时 Wait 立即返回
func NewWaiter(limiter RateLimiter, key string, limit Limit) *Waiter {
	return &Waiter{limiter: limiter, key: key, limit: limit}
}

// Wait 阻塞直到获得配额或 ctx 结束
func (w *Waiter) Wait(ctx context.Context) error {
	if w == nil || w.limiter == nil || w.limit.IsZero() {
		return nil
	}
	for {
		res, err := w.limiter.Allow(ctx, w.key, w.limit)
		if err != nil {
			return err
		}
		if res.Allowed {
			return nil
		}
		delay := res.RetryAfter
		if delay <= 0 {
			delay = time.Millisecond
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
