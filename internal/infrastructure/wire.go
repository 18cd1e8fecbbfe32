package infrastructure

import (
	"github.com/google/wire"

	"github.com/comparo/backend/internal/infrastructure/cache"
	"github.com/comparo/backend/internal/infrastructure/catalog"
	"github.com/comparo/backend/internal/infrastructure/config"
	"github.com/comparo/backend/internal/infrastructure/embedding"
	"github.com/comparo/backend/internal/infrastructure/extract"
	"github.com/comparo/backend/internal/infrastructure/llm"
	"github.com/comparo/backend/internal/infrastructure/storage"
	"github.com/comparo/backend/internal/infrastructure/vector"
	"github.com/comparo/backend/internal/infrastructure/watcher"
	"github.com/comparo/backend/internal/infrastructure/websocket"
)

// ProviderSet Infrastructure 层总 ProviderSet
var ProviderSet = wire.NewSet(
	config.ProviderSet,
	storage.ProviderSet,
	vector.ProviderSet,
	embedding.ProviderSet,
	llm.ProviderSet,
	extract.ProviderSet,
	cache.ProviderSet,
	catalog.ProviderSet,
	watcher.ProviderSet,
	websocket.ProviderSet,
)
