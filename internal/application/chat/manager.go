package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/comparo/backend/internal/application/rag"
	domainChat "github.com/comparo/backend/internal/domain/chat"
	"github.com/comparo/backend/internal/domain/events"
	"github.com/comparo/backend/internal/infrastructure/config"
	"github.com/comparo/backend/internal/infrastructure/log"
)

// SessionStatusActive 新会话在日志中的状态
const SessionStatusActive = "active"

// SessionManager 管理内存中的会话控制器
type SessionManager struct {
	deps       *controllerDeps
	ttl        time.Duration
	interval   time.Duration
	messageLog domainChat.MessageLog

	mu       sync.RWMutex
	sessions map[string]*Controller

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	logger   *slog.Logger
}

// NewSessionManager 创建会话管理器
func NewSessionManager(
	retriever ContextRetriever,
	assembler *rag.PromptAssembler,
	gateway Completer,
	fallback *FallbackResponder,
	messageLog domainChat.MessageLog,
	bus events.EventBus,
	cfg *config.ChatConfig,
) *SessionManager {
	deps := &controllerDeps{
		retriever:      retriever,
		assembler:      assembler,
		gateway:        gateway,
		fallback:       fallback,
		messageLog:     messageLog,
		bus:            bus,
		now:            time.Now,
		deliveryDelay:  time.Second,
		typingInterval: 500 * time.Millisecond,
	}
	m := &SessionManager{
		deps:       deps,
		ttl:        2 * time.Hour,
		interval:   5 * time.Minute,
		messageLog: messageLog,
		sessions:   make(map[string]*Controller),
		stopCh:     make(chan struct{}),
		logger:     log.NewModuleLogger("chat", "session_manager"),
	}
	if cfg != nil {
		if cfg.DeliveryDelay > 0 {
			deps.deliveryDelay = cfg.DeliveryDelay
		}
		if cfg.TypingInterval > 0 {
			deps.typingInterval = cfg.TypingInterval
		}
		if cfg.SessionTTL > 0 {
			m.ttl = cfg.SessionTTL
		}
		if cfg.JanitorInterval > 0 {
			m.interval = cfg.JanitorInterval
		}
	}
	return m
}

// Create 创建会话；日志写入失败只记录日志，不影响会话可用
func (m *SessionManager) Create(ctx context.Context) *Controller {
	id := uuid.New().String()
	c := newController(id, m.deps)

	m.mu.Lock()
	m.sessions[id] = c
	m.mu.Unlock()

	if m.messageLog != nil {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
			defer cancel()
			if err := m.messageLog.CreateSession(logCtx, &domainChat.SessionRecord{ID: id, Status: SessionStatusActive}); err != nil {
				m.logger.Warn("Failed to persist chat session", "session_id", id, "error", err)
			}
		}()
	}

	m.logger.Debug("Chat session created", "session_id", id)
	return c
}

// Get 获取会话
func (m *SessionManager) Get(id string) (*Controller, error) {
	m.mu.RLock()
	c, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, domainChat.ErrSessionNotFound
	}
	return c, nil
}

// Close 关闭并移除会话
func (m *SessionManager) Close(id string) error {
	m.mu.Lock()
	c, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return domainChat.ErrSessionNotFound
	}
	c.Close()
	return nil
}

// Count 当前会话数
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Evict 移除空闲超过 TTL 的会话，等待回答中的会话不移除
func (m *SessionManager) Evict(now time.Time) int {
	var expired []*Controller

	m.mu.Lock()
	for id, c := range m.sessions {
		last, idle := c.idleSince()
		if idle && now.Sub(last) >= m.ttl {
			expired = append(expired, c)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, c := range expired {
		c.Close()
	}
	if len(expired) > 0 {
		m.logger.Info("Evicted idle chat sessions", "count", len(expired))
	}
	return len(expired)
}

// Start 启动清理协程
func (m *SessionManager) Start() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stopCh:
				return
			case <-ticker.C:
				m.Evict(m.deps.now())
			}
		}
	}()
}

// Stop 停止清理协程并关闭全部会话
func (m *SessionManager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
	m.wg.Wait()

	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Controller)
	m.mu.Unlock()

	for _, c := range sessions {
		c.Close()
	}
}
