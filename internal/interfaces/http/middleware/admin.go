package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/comparo/backend/internal/application/status"
	"github.com/comparo/backend/internal/infrastructure/config"
	"github.com/comparo/backend/internal/interfaces/http/response"
)

// HeaderAdminToken 管理令牌头，也接受 Authorization: Bearer <token>
const HeaderAdminToken = "X-Admin-Token"

// AdminAuth 校验管理令牌，通过后在上下文中标记管理员
// 配置的令牌为空时不做校验（仅用于本地开发）
func AdminAuth(cfg *config.AdminConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg == nil || cfg.Token == "" {
			c.Request = c.Request.WithContext(status.WithAdmin(c.Request.Context()))
			c.Next()
			return
		}

		token := c.GetHeader(HeaderAdminToken)
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(cfg.Token)) != 1 {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "未授权")
			return
		}

		c.Request = c.Request.WithContext(status.WithAdmin(c.Request.Context()))
		c.Next()
	}
}

// OptionalAdmin 令牌有效时标记管理员，否则以匿名身份继续
func OptionalAdmin(cfg *config.AdminConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(HeaderAdminToken)
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if cfg == nil || cfg.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(cfg.Token)) == 1 {
			c.Request = c.Request.WithContext(status.WithAdmin(c.Request.Context()))
		}
		c.Next()
	}
}
