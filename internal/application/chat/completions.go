package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/comparo/backend/internal/application/rag"
	domainChat "github.com/comparo/backend/internal/domain/chat"
	"github.com/comparo/backend/internal/domain/knowledge"
	"github.com/comparo/backend/internal/infrastructure/llm"
	"github.com/comparo/backend/internal/infrastructure/log"
)

// CompletionCall 无状态补全调用的输入
type CompletionCall struct {
	Messages           []llm.Message
	Model              string
	Temperature        *float64
	MaxTokens          int
	SessionID          string
	Query              string
	UseRAG             bool
	HistoryFingerprint string
}

// CompletionOutput 无状态补全调用的输出
type CompletionOutput struct {
	Result           *CompletionResult
	ContextDocuments []*knowledge.ScoredDocument
}

// CompletionService 无状态补全：可选检索、上下文注入和会话日志
type CompletionService struct {
	retriever  ContextRetriever
	gateway    Completer
	prober     HealthProber
	messageLog domainChat.MessageLog
	logger     *slog.Logger
}

// NewCompletionService 创建补全服务
func NewCompletionService(retriever ContextRetriever, gateway Completer, prober HealthProber, messageLog domainChat.MessageLog) *CompletionService {
	return &CompletionService{
		retriever:  retriever,
		gateway:    gateway,
		prober:     prober,
		messageLog: messageLog,
		logger:     log.NewModuleLogger("chat", "completions"),
	}
}

// HealthCheck 网关健康检查，不执行补全
func (s *CompletionService) HealthCheck(ctx context.Context) HealthStatus {
	return s.prober.HealthCheck(ctx)
}

// Complete 执行一次补全
// UseRAG 且 Query 非空时检索，上下文作为 system 消息插在第一条 system 消息之后；
// HistoryFingerprint 非空时追加换一种说法的指令
func (s *CompletionService) Complete(ctx context.Context, call *CompletionCall) (*CompletionOutput, error) {
	var docs []*knowledge.ScoredDocument
	if call.UseRAG && call.Query != "" && s.retriever != nil {
		docs = s.retriever.RetrieveDefault(ctx, call.Query)
	}

	messages := InjectContext(call.Messages, docs, call.HistoryFingerprint != "")

	result, err := s.gateway.Complete(ctx, &CompletionRequest{
		Messages:         messages,
		Model:            call.Model,
		Temperature:      call.Temperature,
		MaxTokens:        call.MaxTokens,
		ContextDocuments: docs,
	})
	if err != nil {
		return nil, err
	}

	if call.SessionID != "" {
		s.logTurn(ctx, call.SessionID, lastUserText(call.Messages), result.Text)
	}

	return &CompletionOutput{Result: result, ContextDocuments: docs}, nil
}

// InjectContext 返回注入检索上下文和防重复指令后的消息副本
func InjectContext(messages []llm.Message, docs []*knowledge.ScoredDocument, antiRepetition bool) []llm.Message {
	var extra []llm.Message
	if len(docs) > 0 {
		extra = append(extra, llm.Message{Role: llm.RoleSystem, Content: rag.FormatContext(docs)})
	}
	if antiRepetition {
		extra = append(extra, llm.Message{Role: llm.RoleSystem, Content: rag.AntiRepetitionDirective})
	}
	if len(extra) == 0 {
		return append([]llm.Message(nil), messages...)
	}

	at := 0
	for i, m := range messages {
		if m.Role == llm.RoleSystem {
			at = i + 1
			break
		}
	}

	out := make([]llm.Message, 0, len(messages)+len(extra))
	out = append(out, messages[:at]...)
	out = append(out, extra...)
	out = append(out, messages[at:]...)
	return out
}

func lastUserText(messages []llm.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

// logTurn 写入会话日志，失败只记录日志
func (s *CompletionService) logTurn(ctx context.Context, sessionID, userText, botText string) {
	if s.messageLog == nil {
		return
	}
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	records := []*domainChat.MessageRecord{
		{SessionID: sessionID, IsBot: false, Message: userText},
		{SessionID: sessionID, IsBot: true, Message: botText},
	}
	for _, r := range records {
		if r.Message == "" {
			continue
		}
		if err := s.messageLog.AppendMessage(logCtx, r); err != nil {
			s.logger.Warn("Failed to log completion turn", "session_id", sessionID, "error", err)
			return
		}
	}
}
