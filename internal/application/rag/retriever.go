package rag

import (
	"context"
	"errors"
	"log/slog"

	"github.com/comparo/backend/internal/domain/knowledge"
	"github.com/comparo/backend/internal/infrastructure/config"
	"github.com/comparo/backend/internal/infrastructure/log"
)

// 检索默认参数
const (
	DefaultRetrieveLimit  = 5
	DefaultMatchThreshold = float32(0.5)
)

// Retriever 基于向量相似度的文档检索
type Retriever struct {
	embedder  knowledge.Embedder
	store     knowledge.DocumentStore
	limit     int
	threshold float32
	logger    *slog.Logger
}

// NewRetriever 创建检索器，必须与入库使用同一个 Embedder
func NewRetriever(embedder knowledge.Embedder, store knowledge.DocumentStore, cfg *config.RAGConfig) *Retriever {
	r := &Retriever{
		embedder:  embedder,
		store:     store,
		limit:     DefaultRetrieveLimit,
		threshold: DefaultMatchThreshold,
		logger:    log.NewModuleLogger("rag", "retriever"),
	}
	if cfg != nil {
		if cfg.RetrieveLimit > 0 {
			r.limit = cfg.RetrieveLimit
		}
		if cfg.MatchThreshold != nil {
			r.threshold = *cfg.MatchThreshold
		}
	}
	return r
}

// RetrieveDefault 使用配置的数量和阈值检索
func (r *Retriever) RetrieveDefault(ctx context.Context, query string) []*knowledge.ScoredDocument {
	return r.Retrieve(ctx, query, r.limit, r.threshold)
}

// Retrieve 检索与 query 最相近的文档，相似度降序
// 任何错误只记录日志并返回空结果，调用方把“检索失败”与“没有相关文档”同等对待
func (r *Retriever) Retrieve(ctx context.Context, query string, limit int, threshold float32) (docs []*knowledge.ScoredDocument) {
	if limit <= 0 {
		limit = DefaultRetrieveLimit
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Retrieval panicked", "panic", rec)
			docs = []*knowledge.ScoredDocument{}
		}
	}()

	vector, err := r.embedQuery(ctx, query)
	if err != nil {
		r.logger.Warn("Failed to embed query, continuing without context", "error", err)
		return []*knowledge.ScoredDocument{}
	}

	found, err := r.store.Search(ctx, vector, threshold, limit)
	if err != nil {
		r.logger.Warn("Similarity search failed, continuing without context", "error", err)
		return []*knowledge.ScoredDocument{}
	}
	if len(found) > limit {
		found = found[:limit]
	}

	r.logger.Debug("Documents retrieved", "count", len(found), "threshold", threshold)
	return found
}

func (r *Retriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := r.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, errors.New("empty query embedding")
	}
	return vectors[0], nil
}

// SearchByEmbedding 直接使用向量检索（相似度检索接口），错误原样返回
func (r *Retriever) SearchByEmbedding(ctx context.Context, embedding []float32, threshold float32, limit int) ([]*knowledge.ScoredDocument, error) {
	if limit <= 0 {
		limit = DefaultRetrieveLimit
	}
	return r.store.Search(ctx, embedding, threshold, limit)
}
