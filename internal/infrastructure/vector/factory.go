// Package vector 提供知识库文档的向量存储实现（qdrant、pgvector、chromem 内存）
package vector

import (
	"context"
	"fmt"

	"github.com/comparo/backend/internal/domain/knowledge"
	"github.com/comparo/backend/internal/infrastructure/config"
	"github.com/comparo/backend/internal/infrastructure/log"
)

// NewDocumentStore 根据配置选择存储后端
func NewDocumentStore(cfg *config.VectorConfig) (knowledge.DocumentStore, func(), error) {
	ctx := context.Background()
	logger := log.NewModuleLogger("vector", "factory")

	var (
		store knowledge.DocumentStore
		err   error
	)
	switch cfg.Backend {
	case "qdrant":
		store, err = NewQdrantStore(ctx, cfg.QdrantHost, cfg.QdrantPort, cfg.Collection, cfg.Dimension)
	case "postgres":
		store, err = NewPgvectorStore(ctx, cfg.PostgresDSN, cfg.Dimension)
	case "memory", "":
		store, err = NewMemoryStore(cfg.Collection, cfg.Dimension)
	default:
		err = fmt.Errorf("unsupported vector backend: %s", cfg.Backend)
	}
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Document store ready", "backend", store.Backend(), "dimension", cfg.Dimension)
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close document store", "error", err)
		}
	}
	return store, cleanup, nil
}
