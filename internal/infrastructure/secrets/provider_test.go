package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comparo/backend/internal/infrastructure/config"
)

func TestFillOpenAIKey(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(OpenAIKeyName, "sk-stored"))

	t.Run("fills missing key", func(t *testing.T) {
		cfg := config.NewConfig()
		require.NoError(t, FillOpenAIKey(cfg, dir))
		assert.Equal(t, "sk-stored", cfg.OpenAI.APIKey)
	})

	t.Run("keeps configured key", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.OpenAI.APIKey = "sk-env"
		require.NoError(t, FillOpenAIKey(cfg, dir))
		assert.Equal(t, "sk-env", cfg.OpenAI.APIKey)
	})

	t.Run("empty store", func(t *testing.T) {
		cfg := config.NewConfig()
		require.NoError(t, FillOpenAIKey(cfg, t.TempDir()))
		assert.Empty(t, cfg.OpenAI.APIKey)
	})
}
