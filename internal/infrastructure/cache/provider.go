package cache

import (
	"github.com/comparo/backend/internal/domain/catalog"
	"github.com/comparo/backend/internal/infrastructure/config"
	"github.com/comparo/backend/internal/infrastructure/log"
)

// ProvideCatalogCache 根据配置选择缓存后端
func ProvideCatalogCache(cfg *config.CacheConfig) (catalog.Cache, func()) {
	logger := log.NewModuleLogger("cache", "provider")
	if cfg.Backend == "redis" {
		client := NewRedisClient(cfg)
		logger.Info("Catalog cache backend selected", "backend", "redis", "addr", cfg.RedisAddr)
		return NewRedisCatalogCache(client, cfg.Key), func() {
			if err := client.Close(); err != nil {
				logger.Warn("Failed to close redis client", "error", err)
			}
		}
	}
	logger.Info("Catalog cache backend selected", "backend", "memory")
	return NewMemoryCatalogCache(), func() {}
}
