// Package events 定义领域事件类型和接口
// 用于系统内部的事件驱动通信
package events

import "time"

// EventType 事件类型标识
type EventType string

// 会话相关事件类型（对话状态机每次转换后发布）
const (
	// ChatMessageAppended 追加消息
	ChatMessageAppended EventType = "chat.message.appended"
	// ChatStatusAdvanced 用户消息投递状态推进
	ChatStatusAdvanced EventType = "chat.status.advanced"
	// ChatTypingChanged 输入指示器变化
	ChatTypingChanged EventType = "chat.typing.changed"
	// ChatNoticeRaised 提示
	ChatNoticeRaised EventType = "chat.notice.raised"
	// ChatStateChanged 状态机状态变化
	ChatStateChanged EventType = "chat.state.changed"
)

// 知识库相关事件类型
const (
	// KnowledgeFileDetected 收件箱目录中检测到新文件或文件被修改
	KnowledgeFileDetected EventType = "knowledge.file.detected"
)

// ChatEventTypes 全部会话事件类型
var ChatEventTypes = []EventType{
	ChatMessageAppended,
	ChatStatusAdvanced,
	ChatTypingChanged,
	ChatNoticeRaised,
	ChatStateChanged,
}

// Event 领域事件接口
// 所有事件类型都必须实现此接口
type Event interface {
	// Type 返回事件类型
	Type() EventType
	// Timestamp 返回事件发生时间
	Timestamp() time.Time
}
