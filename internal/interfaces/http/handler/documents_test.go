package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comparo/backend/internal/domain/knowledge"
	"github.com/comparo/backend/internal/infrastructure/config"
	"github.com/comparo/backend/internal/interfaces/http/response"
)

// setupDocumentRouter 创建测试路由
func setupDocumentRouter(env *testEnv, maxUpload int64) *gin.Engine {
	router := gin.New()
	h := NewDocumentHandler(env.ingestion, env.documents, env.sources, &config.KnowledgeConfig{MaxUploadBytes: maxUpload})
	search := NewSearchHandler(env.retriever)

	api := router.Group("/api/v1")
	{
		api.POST("/documents/ingest", h.Ingest)
		api.POST("/documents/upload", h.Upload)
		api.GET("/documents", h.List)
		api.DELETE("/documents/:id", h.Delete)
		api.POST("/search", search.Search)
	}
	return router
}

func uploadRequest(t *testing.T, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestDocumentHandler_IngestListDelete(t *testing.T) {
	env := newTestEnv(t, http.StatusOK)
	router := setupDocumentRouter(env, 0)

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/documents/ingest", IngestRequest{
		Documents: []knowledge.IngestItem{
			{Content: "Forfait 100 Go à 10 euros", Metadata: knowledge.Metadata{"title": "Forfait 100 Go"}},
			{Content: "Box fibre avec TV", Metadata: knowledge.Metadata{"title": "Box fibre"}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var report knowledge.IngestReport
	require.NoError(t, json.Unmarshal(resp.Data, &report))
	assert.True(t, report.Success)
	assert.Equal(t, 2, report.Inserted)
	require.Len(t, report.Results, 2)

	w, resp = doJSON(t, router, http.MethodGet, "/api/v1/documents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Documents []knowledge.Document `json:"documents"`
		Total     int                  `json:"total"`
		Backend   string               `json:"backend"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &listed))
	assert.Equal(t, 2, listed.Total)
	assert.NotEmpty(t, listed.Backend)

	w, _ = doJSON(t, router, http.MethodDelete, "/api/v1/documents/"+report.Results[0].ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp = doJSON(t, router, http.MethodDelete, "/api/v1/documents/"+report.Results[0].ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, response.CodeDocumentNotFound, resp.Code)
}

func TestDocumentHandler_IngestValidation(t *testing.T) {
	env := newTestEnv(t, http.StatusOK)
	router := setupDocumentRouter(env, 0)

	tests := []struct {
		name string
		body any
	}{
		{name: "缺少 documents", body: map[string]any{}},
		{name: "空列表", body: map[string]any{"documents": []any{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := doJSON(t, router, http.MethodPost, "/api/v1/documents/ingest", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, response.CodeInvalidParams, resp.Code)
		})
	}
}

func TestDocumentHandler_Upload(t *testing.T) {
	env := newTestEnv(t, http.StatusOK)
	router := setupDocumentRouter(env, 1024)

	tests := []struct {
		name     string
		filename string
		content  []byte
		wantHTTP int
		wantCode int
	}{
		{name: "纯文本", filename: "forfaits.txt", content: []byte("Nos forfaits mobiles 5G."), wantHTTP: http.StatusOK},
		{name: "不支持的类型", filename: "photo.exe", content: []byte("MZ"), wantHTTP: http.StatusUnsupportedMediaType, wantCode: response.CodeUnsupportedFile},
		{name: "没有文本", filename: "vide.txt", content: []byte("   \n  "), wantHTTP: http.StatusUnprocessableEntity, wantCode: response.CodeUnsupportedFile},
		{name: "文件过大", filename: "gros.txt", content: bytes.Repeat([]byte("a"), 2048), wantHTTP: http.StatusRequestEntityTooLarge, wantCode: response.CodeUploadTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, uploadRequest(t, tt.filename, tt.content, map[string]string{"category": "mobile"}))
			assert.Equal(t, tt.wantHTTP, w.Code, w.Body.String())

			var resp envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}

	docs, err := env.documents.List(t.Context())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "forfaits", docs[0].Title())
	assert.Equal(t, "forfaits.txt", docs[0].Metadata.Source())
	assert.Equal(t, "mobile", docs[0].Metadata.Category())
}

func TestSearchHandler_Search(t *testing.T) {
	env := newTestEnv(t, http.StatusOK)
	router := setupDocumentRouter(env, 0)

	env.ingestion.Ingest(t.Context(), []knowledge.IngestItem{
		{Content: "Forfait 5G", Metadata: knowledge.Metadata{"title": "5G"}},
		{Content: "Box fibre", Metadata: knowledge.Metadata{"title": "Fibre"}},
	})

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/search", SearchRequest{
		QueryEmbedding: []float32{1, 0},
		MatchCount:     5,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var docs []knowledge.ScoredDocument
	require.NoError(t, json.Unmarshal(resp.Data, &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "Forfait 5G", docs[0].Content)
	assert.Empty(t, docs[0].Embedding)

	w, resp = doJSON(t, router, http.MethodPost, "/api/v1/search", SearchRequest{QueryEmbedding: []float32{1, 0, 0}, MatchCount: 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.CodeStoreFailed, resp.Code)

	w, _ = doJSON(t, router, http.MethodPost, "/api/v1/search", map[string]any{"match_count": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
