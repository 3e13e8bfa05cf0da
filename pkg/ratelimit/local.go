package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LocalRateLimiter 进程内限流，每个 key 一个令牌桶
type LocalRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewLocalRateLimiter 创建进程内限流器
func NewLocalRateLimiter() *LocalRateLimiter {
	return &LocalRateLimiter{limiters: make(map[string]*rate.Limiter)}
}

func (l *LocalRateLimiter) get(key string, limit Limit) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	every := rate.Every(limit.Period / time.Duration(limit.Rate))
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(every, limit.Burst)
		l.limiters[key] = lim
		return lim
	}
	// 规则变化时原地调整
	if lim.Limit() != every {
		lim.SetLimit(every)
	}
	if lim.Burst() != limit.Burst {
		lim.SetBurst(limit.Burst)
	}
	return lim
}

// Allow checks if the request is allowed
func (l *LocalRateLimiter) Allow(ctx context.Context, key string, limit Limit) (*Result, error) {
	if limit.IsZero() {
		return &Result{Allowed: true, Remaining: limit.Burst}, nil
	}
	lim := l.get(key, limit)

	now := time.Now()
	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return &Result{Allowed: false, RetryAfter: limit.Period}, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return &Result{
			Allowed:    false,
			RetryAfter: delay,
			ResetAfter: delay,
		}, nil
	}

	remaining := int(lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return &Result{Allowed: true, Remaining: remaining}, nil
}
