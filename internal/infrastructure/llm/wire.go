package llm

import (
	"github.com/google/wire"

	"github.com/comparo/backend/internal/infrastructure/config"
)

// ProviderSet 对话补全客户端 ProviderSet
var ProviderSet = wire.NewSet(ProvideClient)

// ProvideClient 按 OpenAI 配置创建客户端
func ProvideClient(cfg *config.OpenAIConfig) *Client {
	return NewClient(cfg.BaseURL, cfg.APIKey, cfg.ChatModel, cfg.Timeout)
}
