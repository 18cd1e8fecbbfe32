package chat

import (
	"github.com/google/wire"

	"github.com/comparo/backend/internal/application/rag"
)

// ProviderSet 对话应用服务 ProviderSet
var ProviderSet = wire.NewSet(
	NewGateway,
	NewFallbackResponder,
	NewSessionManager,
	NewCompletionService,
	wire.Bind(new(ContextRetriever), new(*rag.Retriever)),
	wire.Bind(new(Completer), new(*Gateway)),
	wire.Bind(new(HealthProber), new(*Gateway)),
)
