// Package catalog 定义手机目录及其缓存
package catalog

import (
	"context"
	"time"
)

// Phone 比价目录中的一款手机
type Phone struct {
	ID         string `json:"id"`
	Brand      string `json:"brand"`
	Model      string `json:"model"`
	PriceCents int64  `json:"priceCents"`
	StorageGB  int    `json:"storageGb"`
	Is5G       bool   `json:"is5g"`
	ImageURL   string `json:"imageUrl,omitempty"`
}

// CachedCatalog 带获取时间的目录缓存
type CachedCatalog struct {
	Data      []Phone   `json:"data"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// IsStale 缓存是否过期，零值 FetchedAt 视为过期
func (c *CachedCatalog) IsStale(now time.Time, ttl time.Duration) bool {
	if c == nil || c.FetchedAt.IsZero() {
		return true
	}
	return now.Sub(c.FetchedAt) >= ttl
}

// Fetcher 目录数据源
type Fetcher interface {
	FetchPhones(ctx context.Context) ([]Phone, error)
}

// Cache 目录缓存存储，Load 在无缓存时返回 nil, nil
type Cache interface {
	Load(ctx context.Context) (*CachedCatalog, error)
	Store(ctx context.Context, c *CachedCatalog) error
}
