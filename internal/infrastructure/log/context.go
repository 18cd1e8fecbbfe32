package log

import (
	"context"
	"log/slog"
)

type ctxKey string

// 上下文键定义
const (
	// RequestContextID HTTP 请求 ID
	RequestContextID ctxKey = "request_id"

	// SessionContextID 对话会话 ID
	SessionContextID ctxKey = "session_id"

	// VisitorContextID 访客 ID
	VisitorContextID ctxKey = "visitor_id"
)

// WithRequestID 在上下文中添加请求 ID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestContextID, requestID)
}

// WithSessionID 在上下文中添加会话 ID
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionContextID, sessionID)
}

// WithVisitorID 在上下文中添加访客 ID
func WithVisitorID(ctx context.Context, visitorID string) context.Context {
	return context.WithValue(ctx, VisitorContextID, visitorID)
}

// RequestIDFromContext 读取请求 ID
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestContextID).(string)
	return id
}

// LogCtxFromContext 从上下文中提取日志字段
func LogCtxFromContext(ctx context.Context) []any {
	var args []any
	for _, key := range []ctxKey{RequestContextID, SessionContextID, VisitorContextID} {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			args = append(args, slog.String(string(key), v))
		}
	}
	return args
}

// FromContext 返回附带上下文字段的 logger
func FromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if args := LogCtxFromContext(ctx); len(args) > 0 {
		return logger.With(args...)
	}
	return logger
}
