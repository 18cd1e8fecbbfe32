package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	appChat "github.com/comparo/backend/internal/application/chat"
	domainChat "github.com/comparo/backend/internal/domain/chat"
	"github.com/comparo/backend/internal/domain/knowledge"
	"github.com/comparo/backend/internal/infrastructure/llm"
	"github.com/comparo/backend/internal/infrastructure/log"
	"github.com/comparo/backend/internal/interfaces/http/response"
)

// ChatHandler 对话处理器：无状态补全与有状态会话
type ChatHandler struct {
	completions *appChat.CompletionService
	sessions    *appChat.SessionManager
}

// NewChatHandler 创建对话处理器
func NewChatHandler(completions *appChat.CompletionService, sessions *appChat.SessionManager) *ChatHandler {
	return &ChatHandler{completions: completions, sessions: sessions}
}

// CompletionRequest 补全请求
type CompletionRequest struct {
	Messages           []llm.Message `json:"messages"`
	Model              string        `json:"model"`
	Temperature        *float64      `json:"temperature"`
	MaxTokens          int           `json:"max_tokens"`
	SessionID          string        `json:"session_id"`
	Query              string        `json:"query"`
	UseRAG             bool          `json:"use_rag"`
	HistoryFingerprint string        `json:"history_fingerprint"`
	HealthCheck        bool          `json:"health_check"`
}

// CompletionMessage 回答消息
type CompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionResponse 补全响应
type CompletionResponse struct {
	ID               string                      `json:"id"`
	Message          CompletionMessage           `json:"message"`
	Usage            llm.Usage                   `json:"usage"`
	UsedContext      bool                        `json:"used_context"`
	ContextCount     int                         `json:"context_count"`
	ContextDocuments []*knowledge.ScoredDocument `json:"context_documents,omitempty"`
}

// Completions 补全
// @Summary 对话补全
// @Description health_check=true 时只返回网关健康状态；use_rag 且提供 query 时检索并注入上下文
// @Tags 对话
// @Accept json
// @Produce json
// @Param body body CompletionRequest true "补全参数"
// @Success 200 {object} response.Response{data=CompletionResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /chat/completions [post]
func (h *ChatHandler) Completions(c *gin.Context) {
	var req CompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, response.CodeChatInvalidParams, "参数错误", err.Error())
		return
	}

	ctx := c.Request.Context()
	if req.HealthCheck {
		response.Success(c, h.completions.HealthCheck(ctx))
		return
	}
	if len(req.Messages) == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeChatInvalidParams, "messages 不能为空")
		return
	}
	if req.SessionID != "" {
		ctx = log.WithSessionID(ctx, req.SessionID)
	}

	out, err := h.completions.Complete(ctx, &appChat.CompletionCall{
		Messages:           req.Messages,
		Model:              req.Model,
		Temperature:        req.Temperature,
		MaxTokens:          req.MaxTokens,
		SessionID:          req.SessionID,
		Query:              req.Query,
		UseRAG:             req.UseRAG,
		HistoryFingerprint: req.HistoryFingerprint,
	})
	if err != nil {
		response.ErrorWithDetail(c, http.StatusBadGateway, response.CodeCompletionFailed, "补全失败", err.Error())
		return
	}

	for _, d := range out.ContextDocuments {
		d.Embedding = nil
	}
	response.Success(c, &CompletionResponse{
		ID:               out.Result.ID,
		Message:          CompletionMessage{Role: llm.RoleAssistant, Content: out.Result.Text},
		Usage:            out.Result.Usage,
		UsedContext:      out.Result.UsedContext,
		ContextCount:     out.Result.ContextCount,
		ContextDocuments: out.ContextDocuments,
	})
}

// CreateSession 创建会话
// @Summary 创建对话会话
// @Tags 对话
// @Produce json
// @Success 200 {object} response.Response{data=chat.Snapshot}
// @Router /chat/sessions [post]
func (h *ChatHandler) CreateSession(c *gin.Context) {
	session := h.sessions.Create(c.Request.Context())
	response.Success(c, session.Snapshot())
}

// GetSession 会话快照
// @Summary 获取会话快照
// @Tags 对话
// @Produce json
// @Param id path string true "会话 ID"
// @Success 200 {object} response.Response{data=chat.Snapshot}
// @Failure 404 {object} response.ErrorResponse
// @Router /chat/sessions/{id} [get]
func (h *ChatHandler) GetSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	response.Success(c, session.Snapshot())
}

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// SendMessage 发送消息
// @Summary 发送消息并等待回答
// @Description 同一会话同时只允许一个发送
// @Tags 对话
// @Accept json
// @Produce json
// @Param id path string true "会话 ID"
// @Param body body SendMessageRequest true "消息"
// @Success 200 {object} response.Response{data=chat.SendResult}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 408 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /chat/sessions/{id}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		response.Error(c, http.StatusBadRequest, response.CodeEmptyMessage, "消息不能为空")
		return
	}

	ctx := log.WithSessionID(c.Request.Context(), session.ID())
	result, err := session.Send(ctx, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, domainChat.ErrSendInFlight):
			response.Error(c, http.StatusConflict, response.CodeSendInFlight, "上一条消息仍在处理中")
		case errors.Is(err, domainChat.ErrEmptyMessage):
			response.Error(c, http.StatusBadRequest, response.CodeEmptyMessage, "消息不能为空")
		case errors.Is(err, domainChat.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "会话不存在")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			response.Error(c, http.StatusRequestTimeout, response.CodeSendCanceled, "请求已取消")
		default:
			response.ErrorWithDetail(c, http.StatusInternalServerError, response.CodeCompletionFailed, "发送失败", err.Error())
		}
		return
	}
	response.Success(c, result)
}

// SetRAGRequest 检索开关请求
type SetRAGRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SetRAG 切换检索
// @Summary 切换会话的知识库检索
// @Tags 对话
// @Accept json
// @Produce json
// @Param id path string true "会话 ID"
// @Param body body SetRAGRequest true "开关"
// @Success 200 {object} response.Response{data=chat.Notice}
// @Failure 404 {object} response.ErrorResponse
// @Router /chat/sessions/{id}/rag [put]
func (h *ChatHandler) SetRAG(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req SetRAGRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, response.CodeChatInvalidParams, "参数错误", err.Error())
		return
	}
	response.Success(c, session.SetUseRAG(*req.Enabled))
}

// CloseSession 关闭会话
// @Summary 关闭会话
// @Tags 对话
// @Produce json
// @Param id path string true "会话 ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /chat/sessions/{id} [delete]
func (h *ChatHandler) CloseSession(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id")); err != nil {
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "会话不存在")
		return
	}
	response.Success(c, nil)
}

func (h *ChatHandler) session(c *gin.Context) (*appChat.Controller, bool) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "会话不存在")
		return nil, false
	}
	return session, true
}
