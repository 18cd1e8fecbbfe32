// Package chat 实现对话：补全网关、规则回答、会话控制器和会话管理
package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/comparo/backend/internal/domain/knowledge"
	"github.com/comparo/backend/internal/infrastructure/config"
	"github.com/comparo/backend/internal/infrastructure/llm"
	"github.com/comparo/backend/internal/infrastructure/log"
	"github.com/comparo/backend/internal/infrastructure/tokens"
)

// 健康检查状态
const (
	HealthOK          = "ok"
	HealthUnreachable = "unreachable"
)

// CompletionRequest 补全请求
type CompletionRequest struct {
	Messages         []llm.Message
	Model            string
	Temperature      *float64
	MaxTokens        int
	ContextDocuments []*knowledge.ScoredDocument
}

// CompletionResult 补全结果
// UsedContext 表示本次调用注入了检索上下文，与模型是否真正引用无关
type CompletionResult struct {
	ID           string
	Text         string
	UsedContext  bool
	ContextCount int
	Usage        llm.Usage
}

// HealthStatus 网关健康检查结果
type HealthStatus struct {
	Status              string `json:"status"`
	OpenAIKeyConfigured bool   `json:"openai_key_configured"`
	Error               string `json:"error,omitempty"`
}

// Completer 补全网关端口
type Completer interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error)
}

// HealthProber 网关健康检查端口
type HealthProber interface {
	HealthCheck(ctx context.Context) HealthStatus
}

// Gateway 基于 OpenAI 兼容接口的补全网关，不重试，错误原样返回给调用方
type Gateway struct {
	client      *llm.Client
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

var (
	_ Completer    = (*Gateway)(nil)
	_ HealthProber = (*Gateway)(nil)
)

// NewGateway 创建补全网关
func NewGateway(client *llm.Client, cfg *config.OpenAIConfig) *Gateway {
	g := &Gateway{
		client:      client,
		temperature: 0.7,
		maxTokens:   500,
		logger:      log.NewModuleLogger("chat", "gateway"),
	}
	if cfg != nil {
		g.temperature = cfg.Temperature
		if cfg.MaxTokens > 0 {
			g.maxTokens = cfg.MaxTokens
		}
	}
	return g
}

// Complete 调用模型
func (g *Gateway) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error) {
	temperature := g.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := g.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	resp, err := g.client.Chat(ctx, &llm.ChatRequest{
		Messages:    req.Messages,
		Model:       req.Model,
		Temperature: &temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	usage := resp.Usage
	if usage.TotalTokens == 0 {
		usage = g.estimateUsage(req.Messages, resp.Content())
	}

	return &CompletionResult{
		ID:           resp.ID,
		Text:         resp.Content(),
		UsedContext:  len(req.ContextDocuments) > 0,
		ContextCount: len(req.ContextDocuments),
		Usage:        usage,
	}, nil
}

// estimateUsage 上游未返回用量时用 tiktoken 估算
func (g *Gateway) estimateUsage(messages []llm.Message, answer string) llm.Usage {
	est, err := tokens.GetEstimator()
	if err != nil {
		g.logger.Debug("Token estimator unavailable", "error", err)
		return llm.Usage{}
	}
	prompt := est.CountMessages(messages)
	completion := est.CountTokens(answer)
	return llm.Usage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}
}

// HealthCheck 未配置 Key 时不访问上游
func (g *Gateway) HealthCheck(ctx context.Context) HealthStatus {
	if !g.client.HasAPIKey() {
		return HealthStatus{Status: HealthOK, OpenAIKeyConfigured: false}
	}
	if err := g.client.Ping(ctx); err != nil {
		g.logger.Warn("Completion gateway health check failed", "error", err)
		return HealthStatus{Status: HealthUnreachable, OpenAIKeyConfigured: true, Error: err.Error()}
	}
	return HealthStatus{Status: HealthOK, OpenAIKeyConfigured: true}
}

// Model 默认模型
func (g *Gateway) Model() string {
	return g.client.Model()
}
