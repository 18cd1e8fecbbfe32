package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appChat "github.com/comparo/backend/internal/application/chat"
	domainChat "github.com/comparo/backend/internal/domain/chat"
	"github.com/comparo/backend/internal/domain/knowledge"
	"github.com/comparo/backend/internal/infrastructure/llm"
	"github.com/comparo/backend/internal/interfaces/http/response"
)

// setupChatRouter 创建测试路由
func setupChatRouter(env *testEnv) *gin.Engine {
	router := gin.New()
	h := NewChatHandler(env.chat, env.sessions)

	chat := router.Group("/api/v1/chat")
	{
		chat.POST("/completions", h.Completions)
		chat.POST("/sessions", h.CreateSession)
		chat.GET("/sessions/:id", h.GetSession)
		chat.DELETE("/sessions/:id", h.CloseSession)
		chat.POST("/sessions/:id/messages", h.SendMessage)
		chat.PUT("/sessions/:id/rag", h.SetRAG)
	}
	return router
}

func TestChatHandler_HealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		llmStatus  int
		wantStatus string
	}{
		{name: "网关可用", llmStatus: http.StatusOK, wantStatus: appChat.HealthOK},
		{name: "网关不可用", llmStatus: http.StatusUnauthorized, wantStatus: appChat.HealthUnreachable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupChatRouter(newTestEnv(t, tt.llmStatus))
			w, resp := doJSON(t, router, http.MethodPost, "/api/v1/chat/completions", map[string]any{"health_check": true})
			require.Equal(t, http.StatusOK, w.Code)

			var health appChat.HealthStatus
			require.NoError(t, json.Unmarshal(resp.Data, &health))
			assert.Equal(t, tt.wantStatus, health.Status)
			assert.True(t, health.OpenAIKeyConfigured)
		})
	}
}

func TestChatHandler_CompletionsWithContext(t *testing.T) {
	env := newTestEnv(t, http.StatusOK)
	router := setupChatRouter(env)
	env.ingestion.Ingest(t.Context(), []knowledge.IngestItem{
		{Content: "Le forfait 5G coûte 15 euros", Metadata: knowledge.Metadata{"title": "5G"}},
	})

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/chat/completions", CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "Tu es un assistant."},
			{Role: llm.RoleUser, Content: "Quel forfait ?"},
		},
		Query:  "Quel forfait ?",
		UseRAG: true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out CompletionResponse
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	assert.Equal(t, "chatcmpl-1", out.ID)
	assert.Equal(t, llm.RoleAssistant, out.Message.Role)
	assert.NotEmpty(t, out.Message.Content)
	assert.True(t, out.UsedContext)
	assert.Equal(t, 1, out.ContextCount)
	require.Len(t, out.ContextDocuments, 1)
	assert.Empty(t, out.ContextDocuments[0].Embedding)
	assert.Equal(t, 15, out.Usage.TotalTokens)
}

func TestChatHandler_CompletionsErrors(t *testing.T) {
	w, resp := doJSON(t, setupChatRouter(newTestEnv(t, http.StatusOK)), http.MethodPost, "/api/v1/chat/completions", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.CodeChatInvalidParams, resp.Code)

	w, resp = doJSON(t, setupChatRouter(newTestEnv(t, http.StatusInternalServerError)), http.MethodPost, "/api/v1/chat/completions", CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "Salut"}},
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, response.CodeCompletionFailed, resp.Code)
}

func TestChatHandler_SessionLifecycle(t *testing.T) {
	env := newTestEnv(t, http.StatusOK)
	router := setupChatRouter(env)

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/chat/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snap domainChat.Snapshot
	require.NoError(t, json.Unmarshal(resp.Data, &snap))
	require.NotEmpty(t, snap.ID)
	assert.True(t, snap.UseRAG)
	base := "/api/v1/chat/sessions/" + snap.ID

	w, resp = doJSON(t, router, http.MethodPost, base+"/messages", SendMessageRequest{Text: "Bonjour"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var sent appChat.SendResult
	require.NoError(t, json.Unmarshal(resp.Data, &sent))
	assert.False(t, sent.Degraded)
	assert.Equal(t, "Bonjour", sent.UserMessage.Text)
	assert.Equal(t, domainChat.SenderBot, sent.Reply.Sender)

	w, resp = doJSON(t, router, http.MethodPut, base+"/rag", map[string]any{"enabled": false})
	require.Equal(t, http.StatusOK, w.Code)
	var notice domainChat.Notice
	require.NoError(t, json.Unmarshal(resp.Data, &notice))
	assert.Equal(t, domainChat.NoticeRAGDisabled, notice.Kind)

	w, resp = doJSON(t, router, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &snap))
	assert.False(t, snap.UseRAG)
	assert.GreaterOrEqual(t, len(snap.Messages), 2)

	w, _ = doJSON(t, router, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp = doJSON(t, router, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, response.CodeSessionNotFound, resp.Code)
}

func TestChatHandler_SendValidation(t *testing.T) {
	env := newTestEnv(t, http.StatusOK)
	router := setupChatRouter(env)
	session := env.sessions.Create(t.Context())

	tests := []struct {
		name     string
		method   string
		path     string
		body     any
		wantHTTP int
		wantCode int
	}{
		{name: "空消息", method: http.MethodPost, path: "/api/v1/chat/sessions/" + session.ID() + "/messages", body: SendMessageRequest{Text: "   "}, wantHTTP: http.StatusBadRequest, wantCode: response.CodeEmptyMessage},
		{name: "会话不存在", method: http.MethodPost, path: "/api/v1/chat/sessions/missing/messages", body: SendMessageRequest{Text: "Salut"}, wantHTTP: http.StatusNotFound, wantCode: response.CodeSessionNotFound},
		{name: "缺少开关", method: http.MethodPut, path: "/api/v1/chat/sessions/" + session.ID() + "/rag", body: map[string]any{}, wantHTTP: http.StatusBadRequest, wantCode: response.CodeChatInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := doJSON(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantHTTP, w.Code)
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}

func TestChatHandler_SendDegradesWhenGatewayFails(t *testing.T) {
	env := newTestEnv(t, http.StatusInternalServerError)
	router := setupChatRouter(env)
	session := env.sessions.Create(t.Context())

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/chat/sessions/"+session.ID()+"/messages", SendMessageRequest{Text: "Je cherche une box internet"})
	require.Equal(t, http.StatusOK, w.Code)

	var sent appChat.SendResult
	require.NoError(t, json.Unmarshal(resp.Data, &sent))
	assert.True(t, sent.Degraded)
	assert.NotEmpty(t, sent.Reply.Text)
	assert.True(t, session.Snapshot().HasBackendFailed)
}
