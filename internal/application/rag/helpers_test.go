package rag

import (
	"context"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/comparo/backend/internal/domain/knowledge"
)

// MockEmbedder 模拟 Embedder
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

// keywordEmbedder 按关键词生成 3 维向量：forfait / box / téléphone
type keywordEmbedder struct{}

func (keywordEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		t = strings.ToLower(t)
		v := []float32{0.01, 0.01, 0.01}
		if strings.Contains(t, "forfait") {
			v[0] = 1
		}
		if strings.Contains(t, "box") {
			v[1] = 1
		}
		if strings.Contains(t, "téléphone") {
			v[2] = 1
		}
		out[i] = v
	}
	return out, nil
}

var _ knowledge.Embedder = keywordEmbedder{}
