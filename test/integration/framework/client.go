//go:build integration
// +build integration

// APIClient 基于 resty 封装的 HTTP 客户端，直接复用业务结构体
package framework

import (
	"bytes"
	"fmt"
	"time"

	appCatalog "github.com/comparo/backend/internal/application/catalog"
	appChat "github.com/comparo/backend/internal/application/chat"
	appStatus "github.com/comparo/backend/internal/application/status"
	domainChat "github.com/comparo/backend/internal/domain/chat"
	"github.com/comparo/backend/internal/domain/knowledge"
	"github.com/comparo/backend/internal/domain/popup"
	"github.com/go-resty/resty/v2"
)

// APIClient 测试用 HTTP 客户端
type APIClient struct {
	client  *resty.Client
	baseURL string
}

// NewAPIClient 创建测试用 HTTP 客户端，token 为空时不带管理令牌
func NewAPIClient(baseURL, token string) *APIClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")
	if token != "" {
		client.SetHeader("X-Admin-Token", token)
	}

	return &APIClient{
		client:  client,
		baseURL: baseURL,
	}
}

// --- 通用响应结构 ---

// APIResponse 通用 API 响应（复用 response.Response 的 JSON 结构）
type APIResponse[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Data    T      `json:"data,omitempty"`
}

// --- 各接口 Data 结构（与 handler 返回的 gin.H 对应） ---

// DocumentListData GET /documents 响应 data
type DocumentListData struct {
	Documents []*knowledge.Document `json:"documents"`
	Total     int                   `json:"total"`
	Backend   string                `json:"backend"`
}

// DeleteData DELETE /documents/:id 响应 data
type DeleteData struct {
	ID string `json:"id"`
}

// CompletionData POST /chat/completions 响应 data
type CompletionData struct {
	ID      string `json:"id"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	UsedContext  bool `json:"used_context"`
	ContextCount int  `json:"context_count"`
}

// HealthData 补全网关健康检查 data
type HealthData = appChat.HealthStatus

// do 执行请求并统一处理成功/错误响应的 JSON 解析
// resty 的 SetResult 仅在 2xx 时解析，SetError 在 4xx/5xx 时解析
// 由于两者的 code/message 字段一致，用同类型接收即可
func do[T any](r *resty.Request, result *APIResponse[T]) *resty.Request {
	return r.SetResult(result).SetError(result)
}

// send 发送请求并返回解析结果和 HTTP 状态码
func send[T any](r *resty.Request, method, path string) (*APIResponse[T], int, error) {
	var result APIResponse[T]
	resp, err := do(r, &result).Execute(method, path)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return &result, resp.StatusCode(), nil
}

// --- 健康检查 ---

// HealthCheck 健康检查
func (c *APIClient) HealthCheck() error {
	resp, err := c.client.R().Get("/health")
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("health check failed: status %d", resp.StatusCode())
	}
	return nil
}

// --- 知识库 ---

// Ingest 批量入库
func (c *APIClient) Ingest(items []knowledge.IngestItem) (*APIResponse[knowledge.IngestReport], int, error) {
	return send[knowledge.IngestReport](c.client.R().SetBody(map[string]any{"documents": items}), resty.MethodPost, "/api/v1/documents/ingest")
}

// Upload 上传文件入库
func (c *APIClient) Upload(name string, content []byte, fields map[string]string) (*APIResponse[knowledge.IngestReport], int, error) {
	r := c.client.R().
		SetFileReader("file", name, bytes.NewReader(content)).
		SetFormData(fields)
	return send[knowledge.IngestReport](r, resty.MethodPost, "/api/v1/documents/upload")
}

// ListDocuments 列出文档
func (c *APIClient) ListDocuments() (*APIResponse[DocumentListData], int, error) {
	return send[DocumentListData](c.client.R(), resty.MethodGet, "/api/v1/documents")
}

// DeleteDocument 删除文档
func (c *APIClient) DeleteDocument(id string) (*APIResponse[DeleteData], int, error) {
	return send[DeleteData](c.client.R().SetPathParam("id", id), resty.MethodDelete, "/api/v1/documents/{id}")
}

// Search 向量检索
func (c *APIClient) Search(embedding []float32, count int) (*APIResponse[[]*knowledge.ScoredDocument], int, error) {
	body := map[string]any{"query_embedding": embedding, "match_count": count}
	return send[[]*knowledge.ScoredDocument](c.client.R().SetBody(body), resty.MethodPost, "/api/v1/search")
}

// --- 补全 ---

// Complete 带检索的一次性补全
func (c *APIClient) Complete(query string, useRAG bool) (*APIResponse[CompletionData], int, error) {
	body := map[string]any{
		"messages": []map[string]string{
			{"role": "system", "content": "Tu es un conseiller."},
			{"role": "user", "content": query},
		},
		"query":   query,
		"use_rag": useRAG,
	}
	return send[CompletionData](c.client.R().SetBody(body), resty.MethodPost, "/api/v1/chat/completions")
}

// GatewayHealth 补全网关健康检查
func (c *APIClient) GatewayHealth() (*APIResponse[HealthData], int, error) {
	return send[HealthData](c.client.R().SetBody(map[string]bool{"health_check": true}), resty.MethodPost, "/api/v1/chat/completions")
}

// --- 会话 ---

// CreateSession 创建会话
func (c *APIClient) CreateSession() (*APIResponse[domainChat.Snapshot], int, error) {
	return send[domainChat.Snapshot](c.client.R(), resty.MethodPost, "/api/v1/chat/sessions")
}

// GetSession 查询会话
func (c *APIClient) GetSession(id string) (*APIResponse[domainChat.Snapshot], int, error) {
	return send[domainChat.Snapshot](c.client.R().SetPathParam("id", id), resty.MethodGet, "/api/v1/chat/sessions/{id}")
}

// SendMessage 发送消息
func (c *APIClient) SendMessage(id, text string) (*APIResponse[appChat.SendResult], int, error) {
	r := c.client.R().SetPathParam("id", id).SetBody(map[string]string{"text": text})
	return send[appChat.SendResult](r, resty.MethodPost, "/api/v1/chat/sessions/{id}/messages")
}

// CloseSession 关闭会话
func (c *APIClient) CloseSession(id string) (*APIResponse[any], int, error) {
	return send[any](c.client.R().SetPathParam("id", id), resty.MethodDelete, "/api/v1/chat/sessions/{id}")
}

// --- 状态、目录、弹窗 ---

// Status 系统状态
func (c *APIClient) Status() (*APIResponse[appStatus.Report], int, error) {
	return send[appStatus.Report](c.client.R(), resty.MethodGet, "/api/v1/status")
}

// Phones 手机目录
func (c *APIClient) Phones() (*APIResponse[appCatalog.Result], int, error) {
	return send[appCatalog.Result](c.client.R(), resty.MethodGet, "/api/v1/catalog/phones")
}

// Popups 查询弹窗展示记录
func (c *APIClient) Popups(visitor string, scope popup.Scope) (*APIResponse[popup.ShownMap], int, error) {
	r := c.client.R().SetPathParams(map[string]string{"visitor": visitor, "scope": string(scope)})
	return send[popup.ShownMap](r, resty.MethodGet, "/api/v1/popups/{visitor}/{scope}")
}

// MarkPopup 标记弹窗已展示
func (c *APIClient) MarkPopup(visitor string, scope popup.Scope, kind popup.Kind) (*APIResponse[popup.ShownMap], int, error) {
	r := c.client.R().SetPathParams(map[string]string{"visitor": visitor, "scope": string(scope), "kind": string(kind)})
	return send[popup.ShownMap](r, resty.MethodPost, "/api/v1/popups/{visitor}/{scope}/{kind}")
}

// EndVisit 结束访客会话，清除会话范围记录
func (c *APIClient) EndVisit(visitor string) (*APIResponse[any], int, error) {
	return send[any](c.client.R().SetPathParam("visitor", visitor), resty.MethodDelete, "/api/v1/popups/{visitor}/session")
}
