package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comparo/backend/internal/domain/knowledge"
	"github.com/comparo/backend/internal/infrastructure/config"
	"github.com/comparo/backend/internal/infrastructure/vector"
)

func newMemoryStore(t *testing.T) *vector.MemoryStore {
	t.Helper()
	store, err := vector.NewMemoryStore("test", 3)
	require.NoError(t, err)
	return store
}

func TestIngest_BatchIsolation(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)

	embedder := &MockEmbedder{}
	embedder.On("EmbedTexts", mock.Anything, []string{"document 4"}).Return(nil, errors.New("embedding timeout"))
	embedder.On("EmbedTexts", mock.Anything, mock.Anything).Return([][]float32{{1, 0, 0}}, nil)

	items := make([]knowledge.IngestItem, 7)
	for i := range items {
		items[i] = knowledge.IngestItem{
			Content:  fmt.Sprintf("document %d", i+1),
			Metadata: knowledge.Metadata{"title": fmt.Sprintf("Doc %d", i+1)},
		}
	}

	report := NewIngestionService(embedder, store, nil).Ingest(ctx, items)

	assert.False(t, report.Success)
	assert.Equal(t, 6, report.Inserted)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Results, 7)

	failed := report.Results[3]
	assert.False(t, failed.Success)
	assert.Contains(t, failed.Error, "embedding timeout")
	assert.Equal(t, "Doc 4", failed.Metadata.String("title"))

	for i, r := range report.Results {
		if i == 3 {
			continue
		}
		assert.True(t, r.Success, "document %d", i+1)
		assert.NotEmpty(t, r.ID)
		assert.Equal(t, fmt.Sprintf("Doc %d", i+1), r.Metadata.String("title"))
	}

	docs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 6)
}

func TestIngest_StoreFailureAndEmptyContent(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)

	embedder := &MockEmbedder{}
	// 维度不匹配导致存储写入失败
	embedder.On("EmbedTexts", mock.Anything, []string{"wrong dimension"}).Return([][]float32{{1, 0}}, nil)
	embedder.On("EmbedTexts", mock.Anything, mock.Anything).Return([][]float32{{0, 1, 0}}, nil)

	report := NewIngestionService(embedder, store, nil).Ingest(ctx, []knowledge.IngestItem{
		{Content: "ok"},
		{Content: "wrong dimension"},
		{Content: "   "},
	})

	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 2, report.Failed)
	assert.Contains(t, report.Results[1].Error, knowledge.ErrDimensionMismatch.Error())
	assert.Equal(t, knowledge.ErrEmptyContent.Error(), report.Results[2].Error)
	assert.NotNil(t, report.Results[2].Metadata)
	embedder.AssertNumberOfCalls(t, "EmbedTexts", 2)
}

func TestIngest_EmptyInput(t *testing.T) {
	report := NewIngestionService(&MockEmbedder{}, newMemoryStore(t), nil).Ingest(context.Background(), nil)
	assert.False(t, report.Success)
	assert.Equal(t, 0, report.Inserted)
	assert.Empty(t, report.Results)
}

func TestIngest_PanicIsRecordedAsFailure(t *testing.T) {
	embedder := &MockEmbedder{}
	embedder.On("EmbedTexts", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("boom")
	}).Return(nil, nil)

	report := NewIngestionService(embedder, newMemoryStore(t), nil).Ingest(context.Background(), []knowledge.IngestItem{{Content: "x"}})
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Results[0].Error, "boom")
}

func TestIngestSource_SiblingMetadata(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)

	svc := NewIngestionService(keywordEmbedder{}, store, &config.RAGConfig{ChunkMaxLength: 100, ChunkOverlap: 20, IngestBatchSize: 2})
	svc.now = func() time.Time { return time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC) }

	content := strings.Repeat("Le forfait sans engagement est flexible. ", 10)
	report := svc.IngestSource(ctx, knowledge.SourceDocument{
		Title:    "Forfaits",
		Source:   "faq.md",
		Category: "mobile",
		Content:  content,
		Extra:    knowledge.Metadata{"lang": "fr"},
	})
	require.True(t, report.Success)
	require.Greater(t, report.Inserted, 1)

	docs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, report.Inserted)

	seen := map[int]bool{}
	for _, d := range docs {
		assert.Equal(t, "Forfaits", d.Title())
		assert.Equal(t, "faq.md", d.Metadata.Source())
		assert.Equal(t, "mobile", d.Metadata.Category())
		assert.Equal(t, "2024-03-09", d.Metadata.String(knowledge.MetaDateAdded))
		assert.Equal(t, "fr", d.Metadata.String("lang"))
		count, ok := d.Metadata.ChunkCount()
		require.True(t, ok)
		assert.Equal(t, report.Inserted, count)
		idx, ok := d.Metadata.ChunkIndex()
		require.True(t, ok)
		seen[idx] = true
	}
	assert.Len(t, seen, report.Inserted)
}
