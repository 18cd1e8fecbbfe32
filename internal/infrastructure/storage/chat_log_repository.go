package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/comparo/backend/internal/domain/chat"
)

// chatLogRepository 会话日志 SQLite 实现
type chatLogRepository struct {
	db *sql.DB
}

// NewChatLogRepository 创建会话日志仓储
func NewChatLogRepository(db *sql.DB) chat.MessageLog {
	return &chatLogRepository{db: db}
}

// CreateSession 写入会话记录，重复 ID 忽略
func (r *chatLogRepository) CreateSession(ctx context.Context, record *chat.SessionRecord) error {
	status := record.Status
	if status == "" {
		status = "active"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO chat_sessions (id, status, created_at) VALUES (?, ?, ?)`,
		record.ID, status, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat session: %w", err)
	}
	return nil
}

// AppendMessage 追加消息记录
func (r *chatLogRepository) AppendMessage(ctx context.Context, record *chat.MessageRecord) error {
	isBot := 0
	if record.IsBot {
		isBot = 1
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_messages (session_id, is_bot, message, created_at) VALUES (?, ?, ?, ?)`,
		record.SessionID, isBot, record.Message, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

// CountMessages 统计会话消息数
func (r *chatLogRepository) CountMessages(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chat_messages WHERE session_id = ?`, sessionID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count chat messages: %w", err)
	}
	return n, nil
}
