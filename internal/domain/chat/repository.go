package chat

import "context"

// SessionRecord 持久化的会话记录
type SessionRecord struct {
	ID     string
	Status string
}

// MessageRecord 持久化的消息记录
type MessageRecord struct {
	SessionID string
	IsBot     bool
	Message   string
}

// MessageLog 会话/消息日志（分析用旁路，写失败不影响对话）
type MessageLog interface {
	// CreateSession 创建会话记录 {id, status:'active'}
	CreateSession(ctx context.Context, record *SessionRecord) error

	// AppendMessage 追加消息记录 {session_id, is_bot, message}
	AppendMessage(ctx context.Context, record *MessageRecord) error

	// CountMessages 统计会话的消息数
	CountMessages(ctx context.Context, sessionID string) (int, error)
}
