//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"github.com/comparo/backend/internal/application"
	"github.com/comparo/backend/internal/infrastructure"
	"github.com/comparo/backend/internal/interfaces"
)

// InitializeAll 初始化所有服务（HTTP + MCP）
func InitializeAll() (*App, func(), error) {
	wire.Build(
		ProvideConfig,
		infrastructure.ProviderSet, // 基础设施层
		application.ProviderSet,    // 应用层
		interfaces.ProviderSet,     // 接口层
		NewApp,
	)
	return nil, nil, nil
}
