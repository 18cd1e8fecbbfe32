package websocket

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/comparo/backend/internal/domain/events"
	"github.com/comparo/backend/internal/infrastructure/log"
)

// EventMessage 推送给客户端的事件报文
type EventMessage struct {
	Type      events.EventType `json:"type"`
	SessionID string           `json:"sessionId"`
	Payload   any              `json:"payload,omitempty"`
	Time      time.Time        `json:"time"`
}

// ChatEventPusher 订阅会话事件并推送到对应会话的连接
type ChatEventPusher struct {
	hub         *Hub
	bus         events.Subscriber
	unsubscribe func()
	logger      *slog.Logger
}

// NewChatEventPusher 创建推送器
func NewChatEventPusher(hub *Hub, bus events.EventBus) *ChatEventPusher {
	return &ChatEventPusher{
		hub:    hub,
		bus:    bus,
		logger: log.NewModuleLogger("websocket", "pusher"),
	}
}

// Start 开始订阅
func (p *ChatEventPusher) Start() {
	p.unsubscribe = p.bus.SubscribeMultiple(events.ChatEventTypes, events.HandlerFunc(p.handle))
}

// Stop 取消订阅
func (p *ChatEventPusher) Stop() {
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
}

func (p *ChatEventPusher) handle(event events.Event) error {
	ce, ok := event.(*events.ChatEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}
	if p.hub.ConnectionCount(ce.SessionID) == 0 {
		return nil
	}
	return p.hub.BroadcastToSession(ce.SessionID, &EventMessage{
		Type:      ce.EventType,
		SessionID: ce.SessionID,
		Payload:   ce.Payload,
		Time:      ce.EventTime,
	})
}
