package vector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	"github.com/comparo/backend/internal/domain/knowledge"
)

// MemoryStore 基于 chromem-go 的进程内文档存储（开发与测试用）
// chromem 只保存字符串元数据，完整文档另存一份索引用于列表和还原
type MemoryStore struct {
	col       *chromem.Collection
	dimension int

	mu    sync.RWMutex
	index map[string]*knowledge.Document
}

var _ knowledge.DocumentStore = (*MemoryStore)(nil)

// errNoEmbeddingFunc 文档必须自带向量
var errNoEmbeddingFunc = errors.New("memory store requires precomputed embeddings")

// NewMemoryStore 创建内存存储
func NewMemoryStore(collection string, dimension int) (*MemoryStore, error) {
	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(collection, nil, func(context.Context, string) ([]float32, error) {
		return nil, errNoEmbeddingFunc
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	return &MemoryStore{
		col:       col,
		dimension: dimension,
		index:     make(map[string]*knowledge.Document),
	}, nil
}

// Backend 实现 DocumentStore
func (s *MemoryStore) Backend() string { return "memory" }

// Insert 写入文档
func (s *MemoryStore) Insert(ctx context.Context, content string, metadata knowledge.Metadata, embedding []float32) (string, error) {
	if len(embedding) != s.dimension {
		return "", fmt.Errorf("%w: got %d, want %d", knowledge.ErrDimensionMismatch, len(embedding), s.dimension)
	}

	doc := &knowledge.Document{
		ID:        uuid.New().String(),
		Content:   content,
		Metadata:  metadata.Clone(),
		CreatedAt: time.Now().UTC(),
	}

	err := s.col.AddDocument(ctx, chromem.Document{
		ID:        doc.ID,
		Content:   content,
		Embedding: append([]float32(nil), embedding...),
		Metadata: map[string]string{
			knowledge.MetaTitle:    metadata.String(knowledge.MetaTitle),
			knowledge.MetaSource:   metadata.Source(),
			knowledge.MetaCategory: metadata.Category(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to add document: %w", err)
	}

	s.mu.Lock()
	s.index[doc.ID] = doc
	s.mu.Unlock()
	return doc.ID, nil
}

// List 按 created_at 倒序返回
func (s *MemoryStore) List(_ context.Context) ([]*knowledge.Document, error) {
	s.mu.RLock()
	docs := make([]*knowledge.Document, 0, len(s.index))
	for _, d := range s.index {
		cp := *d
		docs = append(docs, &cp)
	}
	s.mu.RUnlock()

	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID > docs[j].ID
		}
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

// Delete 删除文档
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; !ok {
		return knowledge.ErrDocumentNotFound
	}
	if err := s.col.Delete(ctx, nil, nil, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	delete(s.index, id)
	return nil
}

// Search 相似度检索（余弦）
func (s *MemoryStore) Search(ctx context.Context, embedding []float32, threshold float32, limit int) ([]*knowledge.ScoredDocument, error) {
	if len(embedding) != s.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", knowledge.ErrDimensionMismatch, len(embedding), s.dimension)
	}

	// chromem 要求 nResults 不超过集合大小
	n := min(limit, s.col.Count())
	if n <= 0 {
		return []*knowledge.ScoredDocument{}, nil
	}

	hits, err := s.col.QueryEmbedding(ctx, embedding, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*knowledge.ScoredDocument, 0, len(hits))
	for _, hit := range hits {
		// 零向量查询的相似度为 NaN，比较结果为 false，自然被过滤
		if !(hit.Similarity >= threshold) {
			continue
		}
		doc, ok := s.index[hit.ID]
		if !ok {
			continue
		}
		results = append(results, &knowledge.ScoredDocument{Document: *doc, Similarity: hit.Similarity})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	return results, nil
}

// ProbeTable 内存集合始终可读
func (s *MemoryStore) ProbeTable(_ context.Context) error {
	_ = s.col.Count()
	return nil
}

// Close 无需释放
func (s *MemoryStore) Close() error { return nil }
