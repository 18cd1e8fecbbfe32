package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comparo/backend/internal/domain/catalog"
	"github.com/comparo/backend/internal/infrastructure/config"
)

// RedisCatalogCache Redis 目录缓存
// 不设置过期时间：过期判断由 IsStale 完成，旧数据在拉取失败时仍可回退使用
type RedisCatalogCache struct {
	client *redis.Client
	key    string
}

var _ catalog.Cache = (*RedisCatalogCache)(nil)

// NewRedisCatalogCache 创建 Redis 缓存
func NewRedisCatalogCache(client *redis.Client, key string) *RedisCatalogCache {
	return &RedisCatalogCache{client: client, key: key}
}

// NewRedisClient 根据配置创建 Redis 客户端
func NewRedisClient(cfg *config.CacheConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 10 * time.Second,
	})
}

// Load 读取缓存，键不存在时返回 nil
func (c *RedisCatalogCache) Load(ctx context.Context) (*catalog.CachedCatalog, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog cache: %w", err)
	}
	var cached catalog.CachedCatalog
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("failed to decode catalog cache: %w", err)
	}
	return &cached, nil
}

// Store 写入缓存
func (c *RedisCatalogCache) Store(ctx context.Context, cached *catalog.CachedCatalog) error {
	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to encode catalog cache: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write catalog cache: %w", err)
	}
	return nil
}
