package catalog

import "github.com/google/wire"

// ProviderSet 目录数据源 ProviderSet
var ProviderSet = wire.NewSet(ProvideFetcher)
