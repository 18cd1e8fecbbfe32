package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comparo/backend/internal/domain/catalog"
	"github.com/comparo/backend/internal/infrastructure/config"
)

func TestMemoryCatalogCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCatalogCache()

	got, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	now := time.Now()
	phones := []catalog.Phone{{ID: "p1", Brand: "Samsung", Model: "Galaxy S24"}}
	require.NoError(t, c.Store(ctx, &catalog.CachedCatalog{Data: phones, FetchedAt: now}))

	// 修改调用方切片不影响缓存
	phones[0].Brand = "changed"

	got, err = c.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "Samsung", got.Data[0].Brand)
	assert.True(t, got.FetchedAt.Equal(now))
}

func TestProvideCatalogCache_Memory(t *testing.T) {
	c, cleanup := ProvideCatalogCache(&config.CacheConfig{Backend: "memory"})
	defer cleanup()
	_, ok := c.(*MemoryCatalogCache)
	assert.True(t, ok)
}
