package events

// Handler 事件处理器
// 返回的 error 只记录日志，不重试
type Handler interface {
	HandleEvent(event Event) error
}

// HandlerFunc 函数适配器
type HandlerFunc func(event Event) error

// HandleEvent 实现 Handler 接口
func (f HandlerFunc) HandleEvent(event Event) error {
	return f(event)
}

// Publisher 事件发布端（会话控制器、收件箱监听器）
type Publisher interface {
	// Publish 异步发布，不阻塞调用方；总线关闭后发布的事件被丢弃
	Publish(event Event)
}

// Subscriber 事件订阅端（WebSocket 推送、收件箱入库）
type Subscriber interface {
	// Subscribe 订阅单个类型，返回可重复调用的取消函数
	Subscribe(eventType EventType, handler Handler) (unsubscribe func())
	// SubscribeMultiple 订阅多个类型；同一订阅者收到的事件保持发布顺序
	SubscribeMultiple(eventTypes []EventType, handler Handler) (unsubscribe func())
}

// EventBus 进程内事件总线
type EventBus interface {
	Publisher
	Subscriber
	// Close 停止接收新事件，等待已入队事件处理完
	Close()
}
