package catalog

import "github.com/google/wire"

// ProviderSet 目录服务 ProviderSet
var ProviderSet = wire.NewSet(
	NewService,
)
