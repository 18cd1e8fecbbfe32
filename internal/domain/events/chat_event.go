package events

import "time"

// ChatEvent 会话状态转换事件
// Payload 的具体类型取决于 EventType：
// message.appended / status.advanced 为 *chat.Message，
// typing.changed 为 bool，notice.raised 为 chat.Notice，state.changed 为 chat.State
type ChatEvent struct {
	EventType EventType
	SessionID string
	Payload   any
	EventTime time.Time
}

// Type 实现 Event 接口
func (e *ChatEvent) Type() EventType {
	return e.EventType
}

// Timestamp 实现 Event 接口
func (e *ChatEvent) Timestamp() time.Time {
	return e.EventTime
}
