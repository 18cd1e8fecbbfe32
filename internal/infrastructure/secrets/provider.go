package secrets

import (
	"fmt"

	"github.com/comparo/backend/internal/infrastructure/config"
)

// FillOpenAIKey 环境和配置文件都没有提供 Key 时，从加密存储读取
func FillOpenAIKey(cfg *config.Config, dir string) error {
	if cfg.OpenAI.APIKey != "" {
		return nil
	}
	store, err := NewStore(dir)
	if err != nil {
		return fmt.Errorf("failed to open secret store: %w", err)
	}
	key, err := store.Get(OpenAIKeyName)
	if err != nil {
		return fmt.Errorf("failed to read OpenAI key: %w", err)
	}
	cfg.OpenAI.APIKey = key
	return nil
}
