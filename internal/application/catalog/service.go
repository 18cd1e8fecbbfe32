// Package catalog 提供带缓存的手机目录
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	domain "github.com/comparo/backend/internal/domain/catalog"
	"github.com/comparo/backend/internal/infrastructure/config"
	"github.com/comparo/backend/internal/infrastructure/log"
)

// DefaultTTL 缓存有效期
const DefaultTTL = 10 * time.Minute

// ErrCatalogUnavailable 数据源失败且没有任何缓存
var ErrCatalogUnavailable = errors.New("phone catalog unavailable")

// Result 目录查询结果
type Result struct {
	Phones    []domain.Phone `json:"phones"`
	FetchedAt time.Time      `json:"fetchedAt"`
	// Stale 数据源失败时返回的过期缓存
	Stale bool `json:"stale"`
}

// Service 目录服务：缓存有效时直接返回，过期时刷新，刷新失败退回过期缓存
type Service struct {
	fetcher domain.Fetcher
	cache   domain.Cache
	ttl     time.Duration
	now     func() time.Time

	// refresh 串行化刷新，避免并发请求同时打到数据源
	refresh sync.Mutex
	logger  *slog.Logger
}

// NewService 创建目录服务
func NewService(fetcher domain.Fetcher, cache domain.Cache, cfg *config.CatalogConfig) *Service {
	s := &Service{
		fetcher: fetcher,
		cache:   cache,
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  log.NewModuleLogger("catalog", "service"),
	}
	if cfg != nil && cfg.TTL > 0 {
		s.ttl = cfg.TTL
	}
	return s
}

// Phones 返回手机目录
func (s *Service) Phones(ctx context.Context) (*Result, error) {
	cached := s.load(ctx)
	if !cached.IsStale(s.now(), s.ttl) {
		return &Result{Phones: cached.Data, FetchedAt: cached.FetchedAt}, nil
	}

	s.refresh.Lock()
	defer s.refresh.Unlock()

	// 等锁期间可能已被其他请求刷新
	cached = s.load(ctx)
	if !cached.IsStale(s.now(), s.ttl) {
		return &Result{Phones: cached.Data, FetchedAt: cached.FetchedAt}, nil
	}

	phones, err := s.fetcher.FetchPhones(ctx)
	if err != nil {
		if cached != nil {
			s.logger.Warn("Catalog fetch failed, serving stale cache",
				"error", err,
				"fetched_at", cached.FetchedAt,
			)
			return &Result{Phones: cached.Data, FetchedAt: cached.FetchedAt, Stale: true}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	fresh := &domain.CachedCatalog{Data: phones, FetchedAt: s.now()}
	if err := s.cache.Store(ctx, fresh); err != nil {
		s.logger.Warn("Failed to store catalog cache", "error", err)
	}
	s.logger.Debug("Catalog refreshed", "phones", len(phones))
	return &Result{Phones: phones, FetchedAt: fresh.FetchedAt}, nil
}

// load 读取缓存，读失败按无缓存处理
func (s *Service) load(ctx context.Context) *domain.CachedCatalog {
	cached, err := s.cache.Load(ctx)
	if err != nil {
		s.logger.Warn("Failed to load catalog cache", "error", err)
		return nil
	}
	return cached
}
