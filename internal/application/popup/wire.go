package popup

import "github.com/google/wire"

// ProviderSet 弹窗服务 ProviderSet
var ProviderSet = wire.NewSet(
	NewService,
)
