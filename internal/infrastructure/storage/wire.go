package storage

import "github.com/google/wire"

// ProviderSet Storage 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideDB,            // 提供数据库连接
	NewChatLogRepository, // 会话日志仓储
	NewPopupRepository,   // 弹窗展示记录仓储
)
