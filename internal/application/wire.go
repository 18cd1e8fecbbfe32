package application

import (
	"github.com/google/wire"

	"github.com/comparo/backend/internal/application/catalog"
	"github.com/comparo/backend/internal/application/chat"
	"github.com/comparo/backend/internal/application/popup"
	"github.com/comparo/backend/internal/application/rag"
	"github.com/comparo/backend/internal/application/status"
)

// ProviderSet Application 层总 ProviderSet
var ProviderSet = wire.NewSet(
	rag.ProviderSet,
	chat.ProviderSet,
	status.ProviderSet,
	catalog.ProviderSet,
	popup.ProviderSet,
)
