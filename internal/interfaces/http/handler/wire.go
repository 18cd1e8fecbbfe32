package handler

import "github.com/google/wire"

// ProviderSet Handler ProviderSet
var ProviderSet = wire.NewSet(
	NewDocumentHandler,
	NewSearchHandler,
	NewChatHandler,
	NewWebSocketHandler,
	NewStatusHandler,
	NewCatalogHandler,
	NewPopupHandler,
)
