package chat

import "errors"

var (
	// ErrSessionNotFound 会话不存在或已过期
	ErrSessionNotFound = errors.New("chat session not found")

	// ErrSendInFlight 上一条消息仍在等待回答
	ErrSendInFlight = errors.New("a message is already awaiting completion")

	// ErrEmptyMessage 消息为空
	ErrEmptyMessage = errors.New("message text is empty")
)
