// Package cache 提供手机目录缓存的存储实现（进程内、Redis）
package cache

import (
	"context"
	"sync"

	"github.com/comparo/backend/internal/domain/catalog"
)

// MemoryCatalogCache 进程内目录缓存
type MemoryCatalogCache struct {
	mu     sync.RWMutex
	cached *catalog.CachedCatalog
}

var _ catalog.Cache = (*MemoryCatalogCache)(nil)

// NewMemoryCatalogCache 创建进程内缓存
func NewMemoryCatalogCache() *MemoryCatalogCache {
	return &MemoryCatalogCache{}
}

// Load 返回缓存副本，无缓存时返回 nil
func (c *MemoryCatalogCache) Load(_ context.Context) (*catalog.CachedCatalog, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cached == nil {
		return nil, nil
	}
	cp := &catalog.CachedCatalog{
		Data:      append([]catalog.Phone(nil), c.cached.Data...),
		FetchedAt: c.cached.FetchedAt,
	}
	return cp, nil
}

// Store 替换缓存
func (c *MemoryCatalogCache) Store(_ context.Context, cached *catalog.CachedCatalog) error {
	cp := &catalog.CachedCatalog{
		Data:      append([]catalog.Phone(nil), cached.Data...),
		FetchedAt: cached.FetchedAt,
	}
	c.mu.Lock()
	c.cached = cp
	c.mu.Unlock()
	return nil
}
