package wire

import (
	"fmt"

	"github.com/comparo/backend/internal/infrastructure/config"
	"github.com/comparo/backend/internal/infrastructure/secrets"
)

// ProvideConfig 加载配置，环境中没有 OpenAI Key 时从加密存储补齐
func ProvideConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.EnsureDataDir(); err != nil {
		return nil, err
	}
	if err := secrets.FillOpenAIKey(cfg, config.GetDataDir()); err != nil {
		return nil, fmt.Errorf("failed to read stored secrets: %w", err)
	}
	return cfg, nil
}
