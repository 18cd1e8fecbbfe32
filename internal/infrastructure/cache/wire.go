package cache

import "github.com/google/wire"

// ProviderSet 目录缓存 ProviderSet
var ProviderSet = wire.NewSet(ProvideCatalogCache)
