package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/comparo/backend/internal/domain/knowledge"
	"github.com/comparo/backend/internal/infrastructure/extract"
	"github.com/comparo/backend/internal/infrastructure/log"
)

// UploadMeta 上传时可选的元数据，空字段由提取结果或默认值补齐
type UploadMeta struct {
	Title    string
	Source   string
	Category string
	Extra    knowledge.Metadata
}

// SourceService 文件入库：提取文本 → 切分 → 向量化入库
type SourceService struct {
	extractor *extract.Extractor
	ingestion *IngestionService
	logger    *slog.Logger
}

// NewSourceService 创建文件入库服务
func NewSourceService(extractor *extract.Extractor, ingestion *IngestionService) *SourceService {
	return &SourceService{
		extractor: extractor,
		ingestion: ingestion,
		logger:    log.NewModuleLogger("rag", "sources"),
	}
}

// IngestFile 提取文件文本并入库；提取失败返回错误，入库结果在报告中逐片段给出
func (s *SourceService) IngestFile(ctx context.Context, filename string, data []byte, meta UploadMeta) (*knowledge.IngestReport, error) {
	res, err := s.extractor.Extract(filename, data)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", filename, err)
	}

	title := meta.Title
	if title == "" {
		title = res.Title
	}
	source := meta.Source
	if source == "" {
		source = filename
	}

	extra := meta.Extra.Clone()
	extra["format"] = res.Format

	s.logger.Info("Ingesting file",
		"file", filename,
		"format", res.Format,
		"title", title,
		"text_length", len(res.Text),
	)

	return s.ingestion.IngestSource(ctx, knowledge.SourceDocument{
		Title:    title,
		Source:   source,
		Category: meta.Category,
		Content:  res.Text,
		Extra:    extra,
	}), nil
}
