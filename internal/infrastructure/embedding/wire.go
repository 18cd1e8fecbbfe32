package embedding

import (
	"github.com/google/wire"

	"github.com/comparo/backend/internal/domain/knowledge"
	"github.com/comparo/backend/internal/infrastructure/config"
)

// ProviderSet 向量化客户端 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideClient,
	wire.Bind(new(knowledge.Embedder), new(*Client)),
)

// ProvideClient 按 OpenAI 配置创建客户端
func ProvideClient(cfg *config.OpenAIConfig) *Client {
	opts := []Option{}
	if cfg.Timeout > 0 {
		opts = append(opts, WithTimeout(cfg.Timeout))
	}
	return NewClient(cfg.BaseURL, cfg.APIKey, cfg.EmbeddingModel, opts...)
}
