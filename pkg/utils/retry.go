// Package utils 提供带 context 的重试与退避工具
package utils

import (
	"context"
	"fmt"
	"time"
)

// Sleeper 可被 context 中断的等待函数，便于测试替换
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext 等待 d 或直到 ctx 结束
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Backoff 计算第 attempt 次（从 1 开始）失败后的等待时间
type Backoff func(base time.Duration, attempt int) time.Duration

// LinearBackoff 线性退避：base * attempt
func LinearBackoff(base time.Duration, attempt int) time.Duration {
	return base * time.Duration(attempt)
}

// RetryPolicy 重试策略
type RetryPolicy struct {
	// 最大尝试次数（包含首次）
	Attempts int
	// 基础等待时间
	Delay time.Duration
	// 退避函数，默认线性
	Backoff Backoff
	// 等待函数，默认 SleepContext
	Sleep Sleeper
	// 每次重试前回调
	OnRetry func(attempt int, err error, wait time.Duration)
}

// RetryError 重试失败：要么次数耗尽，要么在退避等待时被中断
type RetryError struct {
	Attempts int
	// 最后一次调用的错误
	Last error
	// 中断原因，非 nil 表示退避期间 ctx 结束
	Interrupted error
}

func (e *RetryError) Error() string {
	if e.Interrupted != nil {
		return fmt.Sprintf("interrupted after %d attempts: %v (last error: %v)", e.Attempts, e.Interrupted, e.Last)
	}
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Last)
}

// Unwrap 同时暴露最后一次错误与中断原因
func (e *RetryError) Unwrap() []error {
	if e.Interrupted != nil {
		return []error{e.Last, e.Interrupted}
	}
	return []error{e.Last}
}

// Retry 按策略执行 fn，成功返回 nil，失败返回 *RetryError
func Retry(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) error) error {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := policy.Backoff
	if backoff == nil {
		backoff = LinearBackoff
	}
	sleep := policy.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}

		wait := backoff(policy.Delay, attempt)
		if policy.OnRetry != nil {
			policy.OnRetry(attempt, err, wait)
		}
		if serr := sleep(ctx, wait); serr != nil {
			return &RetryError{Attempts: attempt, Last: lastErr, Interrupted: serr}
		}
	}
	return &RetryError{Attempts: attempts, Last: lastErr}
}
