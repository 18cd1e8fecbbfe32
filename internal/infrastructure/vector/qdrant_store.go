package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/comparo/backend/internal/domain/knowledge"
	"github.com/comparo/backend/internal/infrastructure/log"
)

// payload 字段
const (
	payloadContent   = "content"
	payloadMetadata  = "metadata_json"
	payloadCreatedAt = "created_at"
	payloadTitle     = "title"
	payloadSource    = "source"
	payloadCategory  = "category"
)

// List 单次滚动读取的最大数量
const scrollPageSize = 256

// QdrantStore 基于 Qdrant 的文档存储
type QdrantStore struct {
	client     *qdrant.Client
	collection string
	dimension  int
	logger     *slog.Logger
}

var _ knowledge.DocumentStore = (*QdrantStore)(nil)

// NewQdrantStore 连接 Qdrant 并确保集合存在
func NewQdrantStore(ctx context.Context, host string, port int, collection string, dimension int) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	s := &QdrantStore{
		client:     client,
		collection: collection,
		dimension:  dimension,
		logger:     log.NewModuleLogger("vector", "qdrant"),
	}
	if err := s.ensureCollection(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return s, nil
}

// ensureCollection 集合不存在时按余弦距离创建
func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	existing, err := s.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	for _, name := range existing {
		if name == s.collection {
			return nil
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", s.collection, err)
	}
	s.logger.Info("Created qdrant collection", "collection", s.collection, "dimension", s.dimension)
	return nil
}

// Backend 实现 DocumentStore
func (s *QdrantStore) Backend() string { return "qdrant" }

// Insert 写入文档，ID 为新的 UUID
func (s *QdrantStore) Insert(ctx context.Context, content string, metadata knowledge.Metadata, embedding []float32) (string, error) {
	if len(embedding) != s.dimension {
		return "", fmt.Errorf("%w: got %d, want %d", knowledge.ErrDimensionMismatch, len(embedding), s.dimension)
	}

	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}

	id := uuid.New().String()
	wait := true
	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(id),
				Vectors: qdrant.NewVectors(embedding...),
				Payload: qdrant.NewValueMap(map[string]any{
					payloadContent:   content,
					payloadMetadata:  string(metaJSON),
					payloadCreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
					payloadTitle:     metadata.String(knowledge.MetaTitle),
					payloadSource:    metadata.Source(),
					payloadCategory:  metadata.Category(),
				}),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upsert point: %w", err)
	}
	return id, nil
}

// List 滚动读取全部文档，按 created_at 倒序
func (s *QdrantStore) List(ctx context.Context) ([]*knowledge.Document, error) {
	var (
		docs   []*knowledge.Document
		offset *qdrant.PointId
	)
	limit := uint32(scrollPageSize)

	for {
		points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Limit:          &limit,
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scroll points: %w", err)
		}

		// offset 本身会再次出现在下一页的开头
		start := 0
		if offset != nil && len(points) > 0 && points[0].GetId().GetUuid() == offset.GetUuid() {
			start = 1
		}
		for _, p := range points[start:] {
			docs = append(docs, payloadToDocument(p.GetId().GetUuid(), p.GetPayload()))
		}
		if len(points) < scrollPageSize {
			break
		}
		offset = points[len(points)-1].GetId()
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

// Delete 删除文档，不存在时返回 ErrDocumentNotFound
func (s *QdrantStore) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return knowledge.ErrDocumentNotFound
	}

	ids := []*qdrant.PointId{qdrant.NewID(id)}
	found, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.collection,
		Ids:            ids,
	})
	if err != nil {
		return fmt.Errorf("failed to get point: %w", err)
	}
	if len(found) == 0 {
		return knowledge.ErrDocumentNotFound
	}

	wait := true
	_, err = s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: ids},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete point: %w", err)
	}
	return nil
}

// Search 相似度检索
func (s *QdrantStore) Search(ctx context.Context, embedding []float32, threshold float32, limit int) ([]*knowledge.ScoredDocument, error) {
	if len(embedding) != s.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", knowledge.ErrDimensionMismatch, len(embedding), s.dimension)
	}
	if limit <= 0 {
		return []*knowledge.ScoredDocument{}, nil
	}

	n := uint64(limit)
	hits, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          &n,
		ScoreThreshold: &threshold,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query qdrant: %w", err)
	}

	results := make([]*knowledge.ScoredDocument, 0, len(hits))
	for _, hit := range hits {
		if hit.GetScore() < threshold {
			continue
		}
		doc := payloadToDocument(hit.GetId().GetUuid(), hit.GetPayload())
		results = append(results, &knowledge.ScoredDocument{Document: *doc, Similarity: hit.GetScore()})
	}
	return results, nil
}

// ProbeTable 对集合做一次 limit 1 读取
func (s *QdrantStore) ProbeTable(ctx context.Context) error {
	limit := uint32(1)
	_, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Limit:          &limit,
	})
	return err
}

// Close 关闭连接
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// payloadToDocument 从 payload 还原文档
func payloadToDocument(id string, payload map[string]*qdrant.Value) *knowledge.Document {
	doc := &knowledge.Document{ID: id, Metadata: knowledge.Metadata{}}
	if v, ok := payload[payloadContent]; ok {
		doc.Content = v.GetStringValue()
	}
	if v, ok := payload[payloadMetadata]; ok {
		_ = json.Unmarshal([]byte(v.GetStringValue()), &doc.Metadata)
		if doc.Metadata == nil {
			doc.Metadata = knowledge.Metadata{}
		}
	}
	if v, ok := payload[payloadCreatedAt]; ok {
		doc.CreatedAt, _ = time.Parse(time.RFC3339Nano, v.GetStringValue())
	}
	return doc
}
