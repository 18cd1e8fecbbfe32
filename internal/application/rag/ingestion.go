package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/comparo/backend/internal/domain/knowledge"
	"github.com/comparo/backend/internal/infrastructure/config"
	"github.com/comparo/backend/internal/infrastructure/log"
)

// DefaultIngestBatchSize 每批并发处理的文档数
const DefaultIngestBatchSize = 5

// IngestionService 文档向量化入库
type IngestionService struct {
	embedder     knowledge.Embedder
	store        knowledge.DocumentStore
	batchSize    int
	chunkMax     int
	chunkOverlap int
	now          func() time.Time
	logger       *slog.Logger
}

// NewIngestionService 创建入库服务
func NewIngestionService(embedder knowledge.Embedder, store knowledge.DocumentStore, cfg *config.RAGConfig) *IngestionService {
	s := &IngestionService{
		embedder:     embedder,
		store:        store,
		batchSize:    DefaultIngestBatchSize,
		chunkMax:     DefaultMaxChunkLength,
		chunkOverlap: DefaultChunkOverlap,
		now:          time.Now,
		logger:       log.NewModuleLogger("rag", "ingestion"),
	}
	if cfg != nil {
		if cfg.IngestBatchSize > 0 {
			s.batchSize = cfg.IngestBatchSize
		}
		if cfg.ChunkMaxLength > 0 {
			s.chunkMax = cfg.ChunkMaxLength
		}
		if cfg.ChunkOverlap >= 0 {
			s.chunkOverlap = cfg.ChunkOverlap
		}
	}
	return s
}

// Ingest 分批入库
// 批内并发、批间串行；单个文档失败只记录在结果里，不影响其他文档；结果顺序与输入一致
func (s *IngestionService) Ingest(ctx context.Context, items []knowledge.IngestItem) *knowledge.IngestReport {
	results := make([]*knowledge.IngestResult, len(items))

	for start := 0; start < len(items); start += s.batchSize {
		end := start + s.batchSize
		if end > len(items) {
			end = len(items)
		}

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				results[i] = s.ingestOne(ctx, items[i])
				return nil
			})
		}
		_ = g.Wait()
	}

	report := &knowledge.IngestReport{Results: results}
	for _, r := range results {
		if r.Success {
			report.Inserted++
		} else {
			report.Failed++
		}
	}
	report.Success = report.Failed == 0 && len(items) > 0

	s.logger.Info("Ingestion finished",
		"documents", len(items),
		"inserted", report.Inserted,
		"failed", report.Failed,
	)
	return report
}

// ingestOne 向量化并写入单个文档
func (s *IngestionService) ingestOne(ctx context.Context, item knowledge.IngestItem) (result *knowledge.IngestResult) {
	metadata := item.Metadata.Clone()
	result = &knowledge.IngestResult{Metadata: metadata}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Document ingestion panicked", "panic", r, "title", metadata.String(knowledge.MetaTitle))
			result.Success = false
			result.ID = ""
			result.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	id, err := s.embedAndInsert(ctx, item.Content, metadata)
	if err != nil {
		s.logger.Warn("Document ingestion failed",
			"title", metadata.String(knowledge.MetaTitle),
			"chunk_index", metadata[knowledge.MetaChunkIndex],
			"error", err,
		)
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.ID = id
	return result
}

func (s *IngestionService) embedAndInsert(ctx context.Context, content string, metadata knowledge.Metadata) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", knowledge.ErrEmptyContent
	}

	vectors, err := s.embedder.EmbedTexts(ctx, []string{content})
	if err != nil {
		return "", fmt.Errorf("failed to embed document: %w", err)
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return "", errors.New("embedding service returned no vector")
	}

	id, err := s.store.Insert(ctx, content, metadata, vectors[0])
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}
	return id, nil
}

// IngestSource 切分源文档后入库，所有片段共享标题、来源和分类
func (s *IngestionService) IngestSource(ctx context.Context, src knowledge.SourceDocument) *knowledge.IngestReport {
	chunks := Chunk(src.Content, s.chunkMax, s.chunkOverlap)
	dateAdded := s.now().UTC().Format("2006-01-02")

	items := make([]knowledge.IngestItem, len(chunks))
	for i, c := range chunks {
		md := src.Extra.Clone()
		md[knowledge.MetaTitle] = src.Title
		md[knowledge.MetaSource] = src.Source
		md[knowledge.MetaCategory] = src.Category
		md[knowledge.MetaDateAdded] = dateAdded
		md[knowledge.MetaChunkIndex] = i
		md[knowledge.MetaChunkCount] = len(chunks)
		items[i] = knowledge.IngestItem{Content: c, Metadata: md}
	}

	s.logger.Info("Ingesting source document",
		"title", src.Title,
		"source", src.Source,
		"chunks", len(chunks),
	)
	return s.Ingest(ctx, items)
}
