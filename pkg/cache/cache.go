// Package cache 提供 JSON 缓存抽象，内置进程内（go-cache，带容量上限）与 Redis 两种实现
package cache

import (
	"context"
	"time"
)

// Cache JSON 缓存接口，实现必须自行保证并发安全
type Cache interface {
	// GetJSON 读取并反序列化，未命中时返回 false
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	// SetJSON 序列化并写入，expiration 为 0 时使用实现的默认过期时间
	SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error
	// Delete 删除缓存
	Delete(ctx context.Context, keys ...string) error
	// Close 释放资源
	Close() error
}
