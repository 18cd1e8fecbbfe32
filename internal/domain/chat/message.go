// Package chat 定义会话、消息和会话状态机的领域模型
package chat

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Sender 消息发送方
type Sender string

const (
	// SenderUser 用户
	SenderUser Sender = "user"
	// SenderBot 机器人
	SenderBot Sender = "bot"
)

// DeliveryStatus 用户消息的投递状态（仅最后一条用户消息有意义）
type DeliveryStatus string

const (
	StatusNone      DeliveryStatus = "none"
	StatusSent      DeliveryStatus = "sent"
	StatusDelivered DeliveryStatus = "delivered"
)

// DocumentReference 回答引用的知识库文档
type DocumentReference struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
}

// Message 会话中的一条消息，追加后不再修改（状态字段除外）
type Message struct {
	ID                 string              `json:"id"`
	Text               string              `json:"text"`
	Sender             Sender              `json:"sender"`
	Timestamp          time.Time           `json:"timestamp"`
	UsedContext        bool                `json:"usedContext,omitempty"`
	DocumentReferences []DocumentReference `json:"documentReferences,omitempty"`
	Status             DeliveryStatus      `json:"status,omitempty"`
}

// IsBot 是否为机器人消息
func (m *Message) IsBot() bool {
	return m.Sender == SenderBot
}

var messageSeq atomic.Uint64

// NewMessageID 生成按时间有序的消息 ID
func NewMessageID(now time.Time) string {
	return fmt.Sprintf("%d-%d", now.UnixNano(), messageSeq.Add(1))
}

// NewUserMessage 创建用户消息，初始状态为 sent
func NewUserMessage(text string, now time.Time) *Message {
	return &Message{
		ID:        NewMessageID(now),
		Text:      text,
		Sender:    SenderUser,
		Timestamp: now,
		Status:    StatusSent,
	}
}

// NewBotMessage 创建机器人消息
func NewBotMessage(text string, usedContext bool, refs []DocumentReference, now time.Time) *Message {
	return &Message{
		ID:                 NewMessageID(now),
		Text:               text,
		Sender:             SenderBot,
		Timestamp:          now,
		UsedContext:        usedContext,
		DocumentReferences: refs,
	}
}
