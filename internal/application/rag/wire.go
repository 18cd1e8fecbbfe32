package rag

import "github.com/google/wire"

// ProviderSet RAG 应用层 ProviderSet
var ProviderSet = wire.NewSet(
	NewIngestionService,
	NewDocumentService,
	NewRetriever,
	NewPromptAssembler,
	NewSourceService,
	NewInboxIngestor,
)
