package rag

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/comparo/backend/internal/domain/events"
	"github.com/comparo/backend/internal/infrastructure/config"
	"github.com/comparo/backend/internal/infrastructure/log"
)

// 处理后文件移动到的子目录
const (
	InboxProcessedDir = "processed"
	InboxFailedDir    = "failed"
)

// InboxIngestor 订阅收件箱文件事件，入库后把文件移到 processed/ 或 failed/，同一文件只入库一次
type InboxIngestor struct {
	sources     *SourceService
	bus         events.Subscriber
	cfg         *config.KnowledgeConfig
	unsubscribe func()
	logger      *slog.Logger
}

// NewInboxIngestor 创建收件箱入库器
func NewInboxIngestor(sources *SourceService, bus events.EventBus, cfg *config.KnowledgeConfig) *InboxIngestor {
	return &InboxIngestor{
		sources: sources,
		bus:     bus,
		cfg:     cfg,
		logger:  log.NewModuleLogger("rag", "inbox"),
	}
}

// Start 开始订阅文件事件
func (i *InboxIngestor) Start() {
	i.unsubscribe = i.bus.Subscribe(events.KnowledgeFileDetected, events.HandlerFunc(i.handle))
}

// Stop 取消订阅
func (i *InboxIngestor) Stop() {
	if i.unsubscribe != nil {
		i.unsubscribe()
		i.unsubscribe = nil
	}
}

func (i *InboxIngestor) handle(event events.Event) error {
	fe, ok := event.(*events.KnowledgeFileEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}
	return i.IngestPath(context.Background(), fe.FilePath)
}

// IngestPath 入库单个收件箱文件
func (i *InboxIngestor) IngestPath(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		// 文件已被处理或删除
		return nil
	}
	if i.cfg.MaxUploadBytes > 0 && info.Size() > i.cfg.MaxUploadBytes {
		i.logger.Warn("Inbox file too large", "path", path, "size", info.Size(), "limit", i.cfg.MaxUploadBytes)
		return i.move(path, InboxFailedDir)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read inbox file: %w", err)
	}

	start := time.Now()
	report, err := i.sources.IngestFile(ctx, filepath.Base(path), data, UploadMeta{
		Source: i.sourceName(path),
	})
	if err != nil {
		i.logger.Warn("Inbox file could not be extracted", "path", path, "error", err)
		return i.move(path, InboxFailedDir)
	}

	i.logger.Info("Inbox file ingested",
		"path", path,
		"inserted", report.Inserted,
		"failed", report.Failed,
		"duration", time.Since(start),
	)
	if report.Failed > 0 && report.Inserted == 0 {
		return i.move(path, InboxFailedDir)
	}
	return i.move(path, InboxProcessedDir)
}

func (i *InboxIngestor) sourceName(path string) string {
	prefix := i.cfg.DefaultSource
	if prefix == "" {
		prefix = "inbox"
	}
	return prefix + ":" + filepath.Base(path)
}

// move 把文件移到收件箱下的子目录，同名文件追加时间戳
func (i *InboxIngestor) move(path, sub string) error {
	dir := filepath.Join(filepath.Dir(path), sub)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", sub, err)
	}
	target := filepath.Join(dir, filepath.Base(path))
	if _, err := os.Stat(target); err == nil {
		ext := filepath.Ext(target)
		target = fmt.Sprintf("%s.%d%s", target[:len(target)-len(ext)], time.Now().UnixNano(), ext)
	}
	if err := os.Rename(path, target); err != nil {
		return fmt.Errorf("failed to move inbox file: %w", err)
	}
	return nil
}
