package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appCatalog "github.com/comparo/backend/internal/application/catalog"
	appChat "github.com/comparo/backend/internal/application/chat"
	appPopup "github.com/comparo/backend/internal/application/popup"
	"github.com/comparo/backend/internal/application/rag"
	appStatus "github.com/comparo/backend/internal/application/status"
	domainCatalog "github.com/comparo/backend/internal/domain/catalog"
	"github.com/comparo/backend/internal/infrastructure/cache"
	infraCatalog "github.com/comparo/backend/internal/infrastructure/catalog"
	"github.com/comparo/backend/internal/infrastructure/config"
	"github.com/comparo/backend/internal/infrastructure/extract"
	"github.com/comparo/backend/internal/infrastructure/llm"
	"github.com/comparo/backend/internal/infrastructure/storage"
	"github.com/comparo/backend/internal/infrastructure/vector"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// keywordEmbedder 按关键词生成 2 维向量：forfait / box
type keywordEmbedder struct{}

func (keywordEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		t = strings.ToLower(t)
		v := []float32{0.01, 0.01}
		if strings.Contains(t, "forfait") {
			v[0] = 1
		}
		if strings.Contains(t, "box") {
			v[1] = 1
		}
		out[i] = v
	}
	return out, nil
}

// newFakeOpenAI 模拟 OpenAI 兼容接口；status 非 200 时补全失败
func newFakeOpenAI(t *testing.T, status int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "chatcmpl-1",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": "Bonjour, je peux vous aider."},
				"finish_reason": "stop",
			}},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	})
	mux.HandleFunc("/models", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// testEnv 处理器测试依赖（真实服务 + 内存向量库 + 模拟模型）
type testEnv struct {
	store     *vector.MemoryStore
	ingestion *rag.IngestionService
	documents *rag.DocumentService
	sources   *rag.SourceService
	retriever *rag.Retriever
	sessions  *appChat.SessionManager
	chat      *appChat.CompletionService
	checker   *appStatus.Checker
	popups    *appPopup.Service
	catalog   *appCatalog.Service
}

func newTestEnv(t *testing.T, llmStatus int) *testEnv {
	t.Helper()
	store, err := vector.NewMemoryStore("handler-test", 2)
	require.NoError(t, err)

	embedder := keywordEmbedder{}
	ingestion := rag.NewIngestionService(embedder, store, nil)
	retriever := rag.NewRetriever(embedder, store, nil)

	srv := newFakeOpenAI(t, llmStatus)
	gateway := appChat.NewGateway(llm.NewClient(srv.URL, "sk-test", "gpt-test", time.Second), nil)
	sessions := appChat.NewSessionManager(retriever, rag.NewPromptAssembler(nil), gateway, appChat.NewFallbackResponder(), nil, nil,
		&config.ChatConfig{DeliveryDelay: 10 * time.Millisecond, TypingInterval: time.Millisecond})
	t.Cleanup(sessions.Stop)

	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, storage.InitDatabase(db))

	phones := []domainCatalog.Phone{{ID: "p1", Brand: "Fairphone", Model: "5"}}

	return &testEnv{
		store:     store,
		ingestion: ingestion,
		documents: rag.NewDocumentService(store),
		sources:   rag.NewSourceService(extract.NewExtractor(), ingestion),
		retriever: retriever,
		sessions:  sessions,
		chat:      appChat.NewCompletionService(retriever, gateway, gateway, nil),
		checker: appStatus.NewChecker(store, gateway, appStatus.NewContextAuthenticator(),
			&config.VectorConfig{Dimension: 2}, nil),
		popups:  appPopup.NewService(storage.NewPopupRepository(db)),
		catalog: appCatalog.NewService(infraCatalog.NewStaticFetcher(phones), cache.NewMemoryCatalogCache(), nil),
	}
}

// envelope 统一响应
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Detail  string          `json:"detail"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}
