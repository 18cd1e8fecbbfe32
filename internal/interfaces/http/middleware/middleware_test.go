package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comparo/backend/internal/application/status"
	"github.com/comparo/backend/internal/infrastructure/config"
	"github.com/comparo/backend/internal/infrastructure/log"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestEnsureUTF8Body(t *testing.T) {
	tests := []struct {
		name string
		body []byte
		want string
	}{
		{name: "UTF-8 原样保留", body: []byte(`{"text":"café"}`), want: `{"text":"café"}`},
		{name: "Windows-1252 转换", body: []byte("{\"text\":\"caf\xe9 \x80\"}"), want: `{"text":"café €"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(EnsureUTF8Body())
			var got string
			router.POST("/echo", func(c *gin.Context) {
				raw, err := io.ReadAll(c.Request.Body)
				require.NoError(t, err)
				got = string(raw)
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	var fromCtx string
	router.GET("/ping", func(c *gin.Context) {
		fromCtx = log.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(HeaderRequestID)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, fromCtx)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "req-42", fromCtx)
}

func TestAdminAuth(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		header    string
		value     string
		wantCode  int
		wantAdmin bool
	}{
		{name: "令牌头", token: "secret", header: HeaderAdminToken, value: "secret", wantCode: http.StatusOK, wantAdmin: true},
		{name: "Bearer", token: "secret", header: "Authorization", value: "Bearer secret", wantCode: http.StatusOK, wantAdmin: true},
		{name: "令牌错误", token: "secret", header: HeaderAdminToken, value: "nope", wantCode: http.StatusUnauthorized},
		{name: "缺少令牌", token: "secret", wantCode: http.StatusUnauthorized},
		{name: "未配置令牌", token: "", wantCode: http.StatusOK, wantAdmin: true},
	}
	auth := status.NewContextAuthenticator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			var admin bool
			router.GET("/admin", AdminAuth(&config.AdminConfig{Token: tt.token}), func(c *gin.Context) {
				admin = auth.Authenticated(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantAdmin, admin)
		})
	}
}

func TestOptionalAdmin(t *testing.T) {
	auth := status.NewContextAuthenticator()
	router := gin.New()
	var admin bool
	router.GET("/status", OptionalAdmin(&config.AdminConfig{Token: "secret"}), func(c *gin.Context) {
		admin = auth.Authenticated(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, admin)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set(HeaderAdminToken, "secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, admin)
}
