package chat

import "time"

// State 会话状态机状态
type State string

const (
	// StateIdle 空闲，可以发送
	StateIdle State = "idle"
	// StateAwaitingCompletion 等待回答
	StateAwaitingCompletion State = "awaiting_completion"
)

// NoticeKind 提示类型
type NoticeKind string

const (
	NoticeRAGEnabled   NoticeKind = "rag_enabled"
	NoticeRAGDisabled  NoticeKind = "rag_disabled"
	NoticeDegradedMode NoticeKind = "degraded_mode"
)

// Notice 非阻塞的用户可见提示
type Notice struct {
	Kind NoticeKind `json:"kind"`
	Text string     `json:"text"`
}

// Snapshot 会话在某一时刻的只读快照
type Snapshot struct {
	ID               string     `json:"id"`
	State            State      `json:"state"`
	UseRAG           bool       `json:"useRAG"`
	HasBackendFailed bool       `json:"hasBackendFailed"`
	RetryCount       int        `json:"retryCount"`
	Typing           bool       `json:"typing"`
	Messages         []*Message `json:"messages"`
	Notices          []Notice   `json:"notices,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	LastActivity     time.Time  `json:"lastActivity"`
}

// UserTexts 返回会话中全部用户消息文本（按时间顺序）
func UserTexts(messages []*Message) []string {
	texts := make([]string, 0, len(messages))
	for _, m := range messages {
		if m.Sender == SenderUser {
			texts = append(texts, m.Text)
		}
	}
	return texts
}
