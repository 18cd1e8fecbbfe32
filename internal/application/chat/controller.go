package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/comparo/backend/internal/application/rag"
	domainChat "github.com/comparo/backend/internal/domain/chat"
	"github.com/comparo/backend/internal/domain/events"
	"github.com/comparo/backend/internal/domain/knowledge"
	"github.com/comparo/backend/internal/infrastructure/log"
	"github.com/comparo/backend/internal/infrastructure/throttle"
)

// 提示文案
const (
	NoticeTextRAGEnabled  = "La recherche dans la base de connaissances est activée pour vos prochaines questions."
	NoticeTextRAGDisabled = "La recherche dans la base de connaissances est désactivée pour vos prochaines questions."
	NoticeTextDegraded    = "L'assistant fonctionne en mode limité : les réponses proviennent d'une aide simplifiée."
)

// persistTimeout 单次日志写入超时
const persistTimeout = 5 * time.Second

// ContextRetriever 检索端口
type ContextRetriever interface {
	RetrieveDefault(ctx context.Context, query string) []*knowledge.ScoredDocument
}

// Transition 一次状态转换，Payload 类型与 events.ChatEvent 相同
type Transition struct {
	Type      events.EventType
	SessionID string
	Payload   any
	At        time.Time
}

// Observer 状态转换观察者，在控制器内部锁内同步调用，不能阻塞也不能回调控制器
type Observer func(Transition)

// SendResult 一次发送的结果
type SendResult struct {
	UserMessage *domainChat.Message `json:"userMessage"`
	Reply       *domainChat.Message `json:"reply"`
	Degraded    bool                `json:"degraded"`
}

// controllerDeps 控制器依赖，由 SessionManager 注入
type controllerDeps struct {
	retriever  ContextRetriever
	assembler  *rag.PromptAssembler
	gateway    Completer
	fallback   *FallbackResponder
	messageLog domainChat.MessageLog
	bus        events.Publisher
	now        func() time.Time

	deliveryDelay  time.Duration
	typingInterval time.Duration
}

// Controller 单个会话的状态机：idle → awaiting_completion → idle
type Controller struct {
	id   string
	deps *controllerDeps

	mu               sync.Mutex
	state            domainChat.State
	useRAG           bool
	hasBackendFailed bool
	retryCount       int
	messages         []*domainChat.Message
	notices          []domainChat.Notice
	createdAt        time.Time
	lastActivity     time.Time
	timers           []*time.Timer
	closed           bool

	obsMu     sync.RWMutex
	observers []Observer

	typing      *throttle.Indicator
	accumulator *ContextAccumulator
	background  sync.WaitGroup
	logger      *slog.Logger
}

func newController(id string, deps *controllerDeps) *Controller {
	now := deps.now()
	c := &Controller{
		id:           id,
		deps:         deps,
		state:        domainChat.StateIdle,
		useRAG:       true,
		createdAt:    now,
		lastActivity: now,
		accumulator:  NewContextAccumulator(),
		logger:       log.NewModuleLogger("chat", "controller").With("session_id", id),
	}
	c.typing = throttle.NewIndicator(deps.typingInterval, func(v bool) {
		c.notify(events.ChatTypingChanged, v)
	})
	c.observers = append(c.observers, c.accumulator.Observe)
	return c
}

// ID 会话 ID
func (c *Controller) ID() string {
	return c.id
}

// OnTransition 注册状态转换观察者
func (c *Controller) OnTransition(obs Observer) {
	c.obsMu.Lock()
	c.observers = append(c.observers, obs)
	c.obsMu.Unlock()
}

// notify 通知观察者并发布到事件总线
func (c *Controller) notify(eventType events.EventType, payload any) {
	t := Transition{Type: eventType, SessionID: c.id, Payload: payload, At: c.deps.now()}

	c.obsMu.RLock()
	for _, obs := range c.observers {
		obs(t)
	}
	c.obsMu.RUnlock()

	if c.deps.bus != nil {
		c.deps.bus.Publish(&events.ChatEvent{
			EventType: eventType,
			SessionID: c.id,
			Payload:   payload,
			EventTime: t.At,
		})
	}
}

// Send 发送一条用户消息并等待回答
// 同一会话同时只允许一个发送，进行中时返回 ErrSendInFlight
func (c *Controller) Send(ctx context.Context, text string) (*SendResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domainChat.ErrEmptyMessage
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, domainChat.ErrSessionNotFound
	}
	if c.state == domainChat.StateAwaitingCompletion {
		c.mu.Unlock()
		return nil, domainChat.ErrSendInFlight
	}

	now := c.deps.now()
	userMsg := domainChat.NewUserMessage(text, now)
	prior := append([]*domainChat.Message(nil), c.messages...)
	c.clearPreviousStatus()
	c.messages = append(c.messages, userMsg)
	c.lastActivity = now
	useRAG := c.useRAG
	degraded := c.hasBackendFailed
	c.state = domainChat.StateAwaitingCompletion

	userCopy := *userMsg
	c.notify(events.ChatMessageAppended, &userCopy)
	c.notify(events.ChatStateChanged, c.state)
	c.scheduleDelivered(userMsg.ID)
	c.mu.Unlock()

	c.persist(&domainChat.MessageRecord{SessionID: c.id, IsBot: false, Message: text})
	c.typing.Set(true)

	replyText, usedContext, refs, backendErr := c.answer(ctx, text, prior, useRAG, degraded)

	// 调用方取消不算后端故障
	if backendErr != nil && ctx.Err() != nil {
		return nil, c.abandon(ctx.Err())
	}

	c.mu.Lock()
	if backendErr != nil {
		c.hasBackendFailed = true
		c.retryCount++
		c.logger.Warn("Completion failed, switching to fallback responder",
			"error", backendErr,
			"retry_count", c.retryCount,
		)
		notice := domainChat.Notice{Kind: domainChat.NoticeDegradedMode, Text: NoticeTextDegraded}
		c.notices = append(c.notices, notice)
		c.notify(events.ChatNoticeRaised, notice)
	}

	reply := domainChat.NewBotMessage(replyText, usedContext, refs, c.deps.now())
	c.messages = append(c.messages, reply)
	c.lastActivity = reply.Timestamp
	c.state = domainChat.StateIdle

	replyCopy := *reply
	c.notify(events.ChatMessageAppended, &replyCopy)
	c.notify(events.ChatStateChanged, c.state)
	result := &SendResult{
		UserMessage: c.copyMessage(userMsg),
		Reply:       &replyCopy,
		Degraded:    c.hasBackendFailed,
	}
	c.mu.Unlock()

	c.typing.Set(false)
	c.persist(&domainChat.MessageRecord{SessionID: c.id, IsBot: true, Message: replyText})

	return result, nil
}

// abandon 调用方中途取消：回到 idle，不追加回答，不进入降级模式
func (c *Controller) abandon(err error) error {
	c.mu.Lock()
	c.state = domainChat.StateIdle
	c.lastActivity = c.deps.now()
	c.notify(events.ChatStateChanged, c.state)
	c.mu.Unlock()

	c.typing.Set(false)
	c.logger.Info("Send abandoned by caller", "error", err)
	return err
}

// clearPreviousStatus 只有最后一条用户消息带投递状态，调用方持有 c.mu
func (c *Controller) clearPreviousStatus() {
	for i := len(c.messages) - 1; i >= 0; i-- {
		m := c.messages[i]
		if m.IsBot() {
			continue
		}
		if m.Status != domainChat.StatusNone {
			m.Status = domainChat.StatusNone
			c.notify(events.ChatStatusAdvanced, c.copyMessage(m))
		}
		return
	}
}

// answer 产生回答；后端失败时返回规则回答和非 nil 的 backendErr
func (c *Controller) answer(ctx context.Context, text string, prior []*domainChat.Message, useRAG, degraded bool) (reply string, usedContext bool, refs []domainChat.DocumentReference, backendErr error) {
	if degraded {
		return c.deps.fallback.Respond(text, c.accumulator.UserTexts()), false, nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			backendErr = fmt.Errorf("completion panicked: %v", r)
			reply = c.deps.fallback.Respond(text, c.accumulator.UserTexts())
			usedContext = false
			refs = nil
		}
	}()

	var docs []*knowledge.ScoredDocument
	if useRAG && c.deps.retriever != nil {
		docs = c.deps.retriever.RetrieveDefault(ctx, text)
	}

	messages := c.deps.assembler.Assemble(rag.PromptInput{
		PriorTurns:       prior,
		NewUserText:      text,
		ContextDocuments: docs,
		AntiRepetition:   rag.HistoryFingerprint(prior) != "",
	})

	res, err := c.deps.gateway.Complete(ctx, &CompletionRequest{
		Messages:         messages,
		ContextDocuments: docs,
	})
	if err != nil {
		return c.deps.fallback.Respond(text, c.accumulator.UserTexts()), false, nil, err
	}
	return res.Text, res.UsedContext, rag.References(docs), nil
}

// scheduleDelivered 延迟把用户消息状态推进到 delivered，调用方持有 c.mu
func (c *Controller) scheduleDelivered(messageID string) {
	timer := time.AfterFunc(c.deps.deliveryDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return
		}
		for _, m := range c.messages {
			if m.ID == messageID && m.Status == domainChat.StatusSent {
				m.Status = domainChat.StatusDelivered
				c.notify(events.ChatStatusAdvanced, c.copyMessage(m))
				return
			}
		}
	})
	c.timers = append(c.timers, timer)
}

// persist 异步写入会话日志，失败只记录日志
func (c *Controller) persist(record *domainChat.MessageRecord) {
	if c.deps.messageLog == nil {
		return
	}
	c.background.Add(1)
	go func() {
		defer c.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := c.deps.messageLog.AppendMessage(ctx, record); err != nil {
			c.logger.Warn("Failed to persist chat message", "is_bot", record.IsBot, "error", err)
		}
	}()
}

// SetUseRAG 切换检索开关，从下一次发送开始生效
func (c *Controller) SetUseRAG(enabled bool) domainChat.Notice {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.useRAG = enabled
	c.lastActivity = c.deps.now()
	notice := domainChat.Notice{Kind: domainChat.NoticeRAGDisabled, Text: NoticeTextRAGDisabled}
	if enabled {
		notice = domainChat.Notice{Kind: domainChat.NoticeRAGEnabled, Text: NoticeTextRAGEnabled}
	}
	c.notices = append(c.notices, notice)
	c.notify(events.ChatNoticeRaised, notice)
	return notice
}

// Snapshot 返回会话快照（消息为副本）
func (c *Controller) Snapshot() *domainChat.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgs := make([]*domainChat.Message, len(c.messages))
	for i, m := range c.messages {
		msgs[i] = c.copyMessage(m)
	}
	return &domainChat.Snapshot{
		ID:               c.id,
		State:            c.state,
		UseRAG:           c.useRAG,
		HasBackendFailed: c.hasBackendFailed,
		RetryCount:       c.retryCount,
		Typing:           c.typing.Value(),
		Messages:         msgs,
		Notices:          append([]domainChat.Notice(nil), c.notices...),
		CreatedAt:        c.createdAt,
		LastActivity:     c.lastActivity,
	}
}

func (c *Controller) copyMessage(m *domainChat.Message) *domainChat.Message {
	cp := *m
	if m.DocumentReferences != nil {
		cp.DocumentReferences = append([]domainChat.DocumentReference(nil), m.DocumentReferences...)
	}
	return &cp
}

// idleSince 空闲会话的最后活动时间，等待回答中的会话返回 false
func (c *Controller) idleSince() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivity, c.state == domainChat.StateIdle
}

// Close 停止定时器并等待日志写入完成
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for _, t := range c.timers {
		t.Stop()
	}
	c.timers = nil
	c.mu.Unlock()

	c.typing.Stop()
	c.background.Wait()
}

// ContextAccumulator 观察者：按时间顺序累积用户消息文本，供重复提问检测使用
type ContextAccumulator struct {
	mu    sync.Mutex
	texts []string
}

// NewContextAccumulator 创建累积器
func NewContextAccumulator() *ContextAccumulator {
	return &ContextAccumulator{}
}

// Observe 实现 Observer
func (a *ContextAccumulator) Observe(t Transition) {
	if t.Type != events.ChatMessageAppended {
		return
	}
	m, ok := t.Payload.(*domainChat.Message)
	if !ok || m.IsBot() {
		return
	}
	a.mu.Lock()
	a.texts = append(a.texts, m.Text)
	a.mu.Unlock()
}

// UserTexts 全部用户消息文本
func (a *ContextAccumulator) UserTexts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.texts...)
}
