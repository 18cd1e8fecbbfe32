package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comparo/backend/internal/infrastructure/log"
)

// MessageOK 成功响应的 message
const MessageOK = "success"

// Response 统一响应结构
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse 错误响应，request_id 与响应头 X-Request-ID 一致，便于对照日志
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: MessageOK,
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, message string) {
	ErrorWithDetail(c, httpCode, errCode, message, "")
}

// ErrorWithDetail 带详情的错误响应；5xx 同时记录日志
func ErrorWithDetail(c *gin.Context, httpCode int, errCode int, message, detail string) {
	ctx := c.Request.Context()
	if httpCode >= http.StatusInternalServerError {
		log.FromContext(ctx, log.NewModuleLogger("http", "response")).Error("Request failed",
			"path", c.FullPath(),
			"status", httpCode,
			"code", errCode,
			"detail", detail,
		)
	}
	c.JSON(httpCode, ErrorResponse{
		Code:      errCode,
		Message:   message,
		Detail:    detail,
		RequestID: log.RequestIDFromContext(ctx),
	})
}

// Abort 写入错误响应并中止后续处理，供中间件使用
func Abort(c *gin.Context, httpCode int, errCode int, message string) {
	Error(c, httpCode, errCode, message)
	c.Abort()
}
