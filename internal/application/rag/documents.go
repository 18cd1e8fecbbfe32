package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/comparo/backend/internal/domain/knowledge"
	"github.com/comparo/backend/internal/infrastructure/log"
)

// DocumentService 知识库文档管理（列表、删除），不提供修改
type DocumentService struct {
	store  knowledge.DocumentStore
	logger *slog.Logger
}

// NewDocumentService 创建文档管理服务
func NewDocumentService(store knowledge.DocumentStore) *DocumentService {
	return &DocumentService{
		store:  store,
		logger: log.NewModuleLogger("rag", "documents"),
	}
}

// List 按创建时间倒序返回全部文档
func (s *DocumentService) List(ctx context.Context) ([]*knowledge.Document, error) {
	docs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	for _, d := range docs {
		d.Embedding = nil
	}
	return docs, nil
}

// Delete 按 ID 删除，不存在时返回 knowledge.ErrDocumentNotFound
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Warn("Failed to delete document", "id", id, "error", err)
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	s.logger.Info("Document deleted", "id", id)
	return nil
}

// Backend 存储后端名称
func (s *DocumentService) Backend() string {
	return s.store.Backend()
}
