package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appStatus "github.com/comparo/backend/internal/application/status"
	domainStatus "github.com/comparo/backend/internal/domain/status"
	"github.com/comparo/backend/internal/infrastructure/config"
	"github.com/comparo/backend/internal/interfaces/http/middleware"
)

// setupStatusRouter 创建测试路由
func setupStatusRouter(env *testEnv, token string) *gin.Engine {
	router := gin.New()
	h := NewStatusHandler(env.checker)
	router.GET("/api/v1/status", middleware.OptionalAdmin(&config.AdminConfig{Token: token}), h.Check)
	return router
}

func TestStatusHandler_Check(t *testing.T) {
	tests := []struct {
		name          string
		llmStatus     int
		header        string
		wantStatus    domainStatus.SystemStatus
		wantReadiness domainStatus.Readiness
	}{
		{
			name:          "管理员且全部就绪",
			llmStatus:     http.StatusOK,
			header:        "secret",
			wantStatus:    domainStatus.SystemStatus{TableExists: true, FunctionExists: true, EdgeFunctionsReady: true, APIKeyConfigured: true},
			wantReadiness: domainStatus.ReadinessReady,
		},
		{
			name:          "网关不可用",
			llmStatus:     http.StatusUnauthorized,
			header:        "secret",
			wantStatus:    domainStatus.SystemStatus{TableExists: true, FunctionExists: true, APIKeyConfigured: true},
			wantReadiness: domainStatus.ReadinessPartial,
		},
		{
			name:          "未认证",
			llmStatus:     http.StatusOK,
			header:        "wrong",
			wantStatus:    domainStatus.SystemStatus{},
			wantReadiness: domainStatus.ReadinessNotReady,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupStatusRouter(newTestEnv(t, tt.llmStatus), "secret")

			req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
			req.Header.Set(middleware.HeaderAdminToken, tt.header)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			require.Equal(t, http.StatusOK, w.Code)

			var resp envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			var report appStatus.Report
			require.NoError(t, json.Unmarshal(resp.Data, &report))
			assert.Equal(t, tt.wantStatus, report.Status)
			assert.Equal(t, tt.wantReadiness, report.Readiness)
			assert.NotEmpty(t, report.Guidance)
		})
	}
}
