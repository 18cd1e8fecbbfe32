// Package watcher 提供知识库收件箱监听和进程内事件分发
package watcher

import (
	"log/slog"
	"sync"

	"github.com/comparo/backend/internal/domain/events"
	"github.com/comparo/backend/internal/infrastructure/log"
)

// subscription 一个订阅者
// 每个订阅者拥有独立队列和分发 goroutine，同一订阅者收到的事件保持发布顺序
type subscription struct {
	id      uint64
	types   []events.EventType
	handler events.Handler

	mu     sync.Mutex
	queue  []events.Event
	signal chan struct{}
	stop   chan struct{}
	once   sync.Once
}

// halt 停止分发循环，可重复调用
func (s *subscription) halt() {
	s.once.Do(func() { close(s.stop) })
}

// eventBusImpl EventBus 的实现
type eventBusImpl struct {
	// subs 按事件类型索引的订阅者
	subs map[events.EventType][]*subscription
	// nextID 订阅 ID 生成
	nextID uint64
	// mu 保护 subs 和 closed
	mu     sync.RWMutex
	logger *slog.Logger
	closed bool
	// wg 等待已入队事件处理完成
	wg sync.WaitGroup
}

// NewEventBus 创建新的事件总线实例
func NewEventBus() events.EventBus {
	return &eventBusImpl{
		subs:   make(map[events.EventType][]*subscription),
		logger: log.NewModuleLogger("watcher", "event_bus"),
	}
}

// Subscribe 订阅特定类型的事件
func (b *eventBusImpl) Subscribe(eventType events.EventType, handler events.Handler) func() {
	return b.SubscribeMultiple([]events.EventType{eventType}, handler)
}

// SubscribeMultiple 订阅多个类型的事件，跨类型的事件也按发布顺序送达
func (b *eventBusImpl) SubscribeMultiple(eventTypes []events.EventType, handler events.Handler) func() {
	b.mu.Lock()
	b.nextID++
	sub := &subscription{
		id:      b.nextID,
		types:   append([]events.EventType(nil), eventTypes...),
		handler: handler,
		signal:  make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
	for _, t := range sub.types {
		b.subs[t] = append(b.subs[t], sub)
	}
	b.mu.Unlock()

	go b.run(sub)

	return func() {
		b.unsubscribe(sub)
	}
}

// unsubscribe 按订阅 ID 移除订阅者
func (b *eventBusImpl) unsubscribe(sub *subscription) {
	b.mu.Lock()
	for _, t := range sub.types {
		list := b.subs[t]
		for i, s := range list {
			if s.id == sub.id {
				b.subs[t] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		if len(b.subs[t]) == 0 {
			delete(b.subs, t)
		}
	}
	b.mu.Unlock()

	sub.halt()
}

// Publish 异步发布事件
func (b *eventBusImpl) Publish(event events.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	subs := b.subs[event.Type()]
	if len(subs) == 0 {
		return
	}

	b.logger.Debug("Publishing event",
		"type", event.Type(),
		"handlers_count", len(subs),
	)

	for _, sub := range subs {
		b.wg.Add(1)
		sub.mu.Lock()
		sub.queue = append(sub.queue, event)
		sub.mu.Unlock()
		select {
		case sub.signal <- struct{}{}:
		default:
		}
	}
}

// run 订阅者的分发循环
func (b *eventBusImpl) run(sub *subscription) {
	for {
		select {
		case <-sub.signal:
			for {
				sub.mu.Lock()
				if len(sub.queue) == 0 {
					sub.mu.Unlock()
					break
				}
				event := sub.queue[0]
				sub.queue = sub.queue[1:]
				sub.mu.Unlock()

				b.dispatch(event, sub.handler)
			}
		case <-sub.stop:
			// 丢弃尚未处理的事件
			sub.mu.Lock()
			pending := len(sub.queue)
			sub.queue = nil
			sub.mu.Unlock()
			for i := 0; i < pending; i++ {
				b.wg.Done()
			}
			return
		}
	}
}

// dispatch 分发事件到单个处理器
func (b *eventBusImpl) dispatch(event events.Event, handler events.Handler) {
	defer b.wg.Done()

	// 捕获 panic，防止单个处理器崩溃影响其他处理器
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Handler panicked",
				"type", event.Type(),
				"panic", r,
			)
		}
	}()

	if err := handler.HandleEvent(event); err != nil {
		b.logger.Error("Handler returned error",
			"type", event.Type(),
			"error", err,
		)
	}
}

// Close 关闭事件总线
// 停止接收新事件，等待已入队事件处理完成后停止所有订阅者
func (b *eventBusImpl) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.wg.Wait()

	b.mu.Lock()
	seen := make(map[uint64]*subscription)
	for _, list := range b.subs {
		for _, s := range list {
			seen[s.id] = s
		}
	}
	b.subs = make(map[events.EventType][]*subscription)
	b.mu.Unlock()

	for _, s := range seen {
		s.halt()
	}

	b.logger.Info("Event bus closed")
}
