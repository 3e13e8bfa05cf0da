package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/wyfcoding/fxorderbook/pkg/logger"
)

// MemoryCache 进程内缓存，写后过期，条目数超过上限时淘汰最早过期的条目
type MemoryCache struct {
	mu         sync.Mutex
	store      *gocache.Cache
	maxEntries int
	expiration time.Duration
}

// NewMemoryCache 创建进程内缓存
func NewMemoryCache(maxEntries int, expiration time.Duration) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	if expiration <= 0 {
		expiration = 5 * time.Minute
	}
	return &MemoryCache{
		store:      gocache.New(expiration, 2*expiration),
		maxEntries: maxEntries,
		expiration: expiration,
	}
}

// GetJSON 获取 JSON 格式的缓存值
func (mc *MemoryCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	mc.mu.Lock()
	raw, ok := mc.store.Get(key)
	mc.mu.Unlock()
	if !ok {
		return false, nil
	}
	data, ok := raw.([]byte)
	if !ok {
		return false, fmt.Errorf("cache entry %q has unexpected type %T", key, raw)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode cache entry %q: %w", key, err)
	}
	return true, nil
}

// SetJSON 设置 JSON 格式的缓存值
func (mc *MemoryCache) SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if expiration <= 0 {
		expiration = mc.expiration
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if _, exists := mc.store.Get(key); !exists && mc.store.ItemCount() >= mc.maxEntries {
		mc.store.DeleteExpired()
		if mc.store.ItemCount() >= mc.maxEntries {
			mc.evictOldest(ctx)
		}
	}
	mc.store.Set(key, data, expiration)
	return nil
}

// evictOldest 淘汰最早过期的条目，调用方持有锁
func (mc *MemoryCache) evictOldest(ctx context.Context) {
	var (
		victim string
		oldest int64
	)
	for k, item := range mc.store.Items() {
		if victim == "" || item.Expiration < oldest {
			victim, oldest = k, item.Expiration
		}
	}
	if victim != "" {
		mc.store.Delete(victim)
		logger.Debug(ctx, "Cache entry evicted", "key", victim)
	}
}

// Delete 删除缓存
func (mc *MemoryCache) Delete(ctx context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, k := range keys {
		mc.store.Delete(k)
	}
	return nil
}

// Len 当前条目数（可能包含尚未清理的过期条目）
func (mc *MemoryCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.store.ItemCount()
}

// Close 清空缓存
func (mc *MemoryCache) Close() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.store.Flush()
	return nil
}
