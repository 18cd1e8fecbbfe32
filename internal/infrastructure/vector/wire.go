package vector

import "github.com/google/wire"

// ProviderSet 文档向量存储 ProviderSet
var ProviderSet = wire.NewSet(NewDocumentStore)
