// Package async 提供基于 goroutine 的 Future，任务中的 panic 被捕获并作为错误返回
package async

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/panics"
)

// Future 一次异步计算的结果
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Go 在独立 goroutine 中执行 fn
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		var pc panics.Catcher
		pc.Try(func() {
			f.value, f.err = fn(ctx)
		})
		if r := pc.Recovered(); r != nil {
			var zero T
			f.value, f.err = zero, fmt.Errorf("async task panicked: %w", r.AsError())
		}
	}()
	return f
}

// Resolved 返回已完成的 Future
func Resolved[T any](value T, err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), value: value, err: err}
	close(f.done)
	return f
}

// Done 任务完成时关闭
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await 等待结果；ctx 先结束时返回 ctx.Err()，任务本身继续运行至完成
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
