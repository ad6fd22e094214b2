package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/patrickmn/go-cache"
)

// Cache 注入式 TTL 缓存，持有方显式传递，不走全局变量
// 缓存只是延迟/配额优化：过期或淘汰最多导致多打一次上游，不影响正确性
type Cache struct {
	store *cache.Cache
}

// NewCache 创建缓存，defaultTTL 为默认过期时间
func NewCache(defaultTTL time.Duration) *Cache {
	return &Cache{
		store: cache.New(defaultTTL, 2*defaultTTL),
	}
}

// Get 获取缓存值
func (c *Cache) Get(key string) (interface{}, bool) {
	return c.store.Get(key)
}

// Set 设置缓存值
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.store.Set(key, value, ttl)
}

// Delete 删除缓存
func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}

// Clear 清空所有缓存
func (c *Cache) Clear() {
	c.store.Flush()
}

// ttlItem 包装实际的数据，增加过期时间
type ttlItem[T any] struct {
	Value     T
	ExpiredAt time.Time
}

// TTLCache 带容量上限的 LRU 缓存封装（条目带有效期）
type TTLCache[T any] struct {
	storage *lru.Cache[string, ttlItem[T]]
	ttl     time.Duration
}

// NewTTLCache 初始化，size 是最大缓存条数（如 1000），ttl 是数据有效期
func NewTTLCache[T any](size int, ttl time.Duration) *TTLCache[T] {
	// lru.New 是线程安全的
	c, _ := lru.New[string, ttlItem[T]](size)
	return &TTLCache[T]{
		storage: c,
		ttl:     ttl,
	}
}

// Set 写入（LRU 中 Add 会自动处理更新）
func (c *TTLCache[T]) Set(key string, value T) {
	item := ttlItem[T]{
		Value:     value,
		ExpiredAt: time.Now().Add(c.ttl),
	}
	c.storage.Add(key, item)
}

// Get 读取（带过期检查）
func (c *TTLCache[T]) Get(key string) (T, bool) {
	var zero T
	item, ok := c.storage.Get(key)
	if !ok {
		return zero, false
	}

	// 检查是否过期
	if time.Now().After(item.ExpiredAt) {
		c.storage.Remove(key)
		return zero, false
	}

	return item.Value, true
}

// Delete 删除
func (c *TTLCache[T]) Delete(key string) {
	c.storage.Remove(key)
}

// Clear 清空
func (c *TTLCache[T]) Clear() {
	c.storage.Purge()
}

// Len 当前条数
func (c *TTLCache[T]) Len() int {
	return c.storage.Len()
}
