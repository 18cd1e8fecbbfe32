package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainPopup "github.com/comparo/backend/internal/domain/popup"
	"github.com/comparo/backend/internal/interfaces/http/response"
)

// setupPopupRouter 创建测试路由
func setupPopupRouter(env *testEnv) *gin.Engine {
	router := gin.New()
	h := NewPopupHandler(env.popups)

	popups := router.Group("/api/v1/popups/:visitor")
	{
		popups.DELETE("/session", h.EndSession)
		popups.GET("/:scope", h.Shown)
		popups.POST("/:scope/:kind", h.MarkShown)
	}
	return router
}

func TestPopupHandler_MarkAndEndSession(t *testing.T) {
	router := setupPopupRouter(newTestEnv(t, http.StatusOK))

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/popups/v1/session/newsletter", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var shown domainPopup.ShownMap
	require.NoError(t, json.Unmarshal(resp.Data, &shown))
	assert.True(t, shown[domainPopup.KindNewsletter])

	w, _ = doJSON(t, router, http.MethodPost, "/api/v1/popups/v1/persistent/newsletter", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, router, http.MethodDelete, "/api/v1/popups/v1/session", nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, resp = doJSON(t, router, http.MethodGet, "/api/v1/popups/v1/session", nil)
	shown = nil
	require.NoError(t, json.Unmarshal(resp.Data, &shown))
	assert.False(t, shown[domainPopup.KindNewsletter])

	_, resp = doJSON(t, router, http.MethodGet, "/api/v1/popups/v1/persistent", nil)
	shown = nil
	require.NoError(t, json.Unmarshal(resp.Data, &shown))
	assert.True(t, shown[domainPopup.KindNewsletter])
}

func TestPopupHandler_InvalidParams(t *testing.T) {
	router := setupPopupRouter(newTestEnv(t, http.StatusOK))

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{name: "未知范围", method: http.MethodGet, path: "/api/v1/popups/v1/forever"},
		{name: "未知种类", method: http.MethodPost, path: "/api/v1/popups/v1/session/banner"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := doJSON(t, router, tt.method, tt.path, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, response.CodePopupInvalidParams, resp.Code)
		})
	}
}
